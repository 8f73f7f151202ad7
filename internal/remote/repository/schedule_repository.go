package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sadopc/weekly/internal/remote"
	"github.com/sadopc/weekly/internal/schedule"
)

// ScheduleRepository handles owner-scoped CRUD for remote schedules.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) List(ctx context.Context, ownerID string) ([]remote.Meta, error) {
	var rows []scheduleRow
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	metas := make([]remote.Meta, len(rows))
	for i, row := range rows {
		metas[i] = row.record().Meta()
	}
	return metas, nil
}

func (r *ScheduleRepository) Get(ctx context.Context, ownerID, id string) (remote.Record, error) {
	row, err := r.owned(r.db.WithContext(ctx), ownerID, id)
	if err != nil {
		return remote.Record{}, err
	}
	return row.record(), nil
}

// GetPublic looks a shared schedule up by token. The owner is stripped.
func (r *ScheduleRepository) GetPublic(ctx context.Context, token string) (remote.Record, error) {
	if token == "" {
		return remote.Record{}, remote.ErrNotFound
	}
	var row scheduleRow
	err := r.db.WithContext(ctx).Where("share_token = ? AND is_public = ?", token, true).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return remote.Record{}, remote.ErrNotFound
	}
	if err != nil {
		return remote.Record{}, fmt.Errorf("find shared schedule: %w", err)
	}
	rec := row.record()
	rec.OwnerID = ""
	return rec, nil
}

// Create stores an empty private schedule with default settings.
func (r *ScheduleRepository) Create(ctx context.Context, ownerID, name string) (string, error) {
	if err := schedule.ValidateName(name); err != nil {
		return "", err
	}
	row := scheduleRow{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(name),
		Tasks:    []schedule.Task{},
		Settings: schedule.DefaultSettings(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("create schedule: %w", err)
	}
	return row.ID, nil
}

// Update applies a partial patch; fields absent from p are untouched.
func (r *ScheduleRepository) Update(ctx context.Context, ownerID, id string, p remote.Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.owned(tx, ownerID, id)
		if err != nil {
			return err
		}
		rec := p.Apply(row.record())
		row.Name = rec.Name
		row.Tasks = rec.Tasks
		row.Settings = rec.Settings
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
		return nil
	})
}

// Delete removes a schedule. Deleting an absent schedule succeeds.
func (r *ScheduleRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := r.owned(tx, ownerID, id)
		if errors.Is(err, remote.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("owner_id = ? AND id = ?", ownerID, id).Delete(&scheduleRow{}).Error; err != nil {
			return fmt.Errorf("delete schedule: %w", err)
		}
		return nil
	})
}

// TogglePublic flips sharing. Enabling mints a fresh token; disabling clears it.
func (r *ScheduleRepository) TogglePublic(ctx context.Context, ownerID, id string) (string, error) {
	var token string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.owned(tx, ownerID, id)
		if err != nil {
			return err
		}
		if row.IsPublic {
			row.IsPublic = false
			row.ShareToken = nil
		} else {
			token = uuid.NewString()
			row.IsPublic = true
			row.ShareToken = &token
		}
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("toggle sharing: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *ScheduleRepository) owned(tx *gorm.DB, ownerID, id string) (scheduleRow, error) {
	var row scheduleRow
	err := tx.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, remote.ErrNotFound
	}
	if err != nil {
		return row, fmt.Errorf("find schedule: %w", err)
	}
	if row.OwnerID != ownerID {
		return row, remote.ErrForbidden
	}
	return row, nil
}

// Session binds the repository to one owner so it can serve as a Backend.
func (r *ScheduleRepository) Session(ownerID string) remote.Backend {
	return session{repo: r, owner: ownerID}
}

type session struct {
	repo  *ScheduleRepository
	owner string
}

func (s session) List(ctx context.Context) ([]remote.Meta, error) {
	if s.owner == "" {
		return nil, remote.ErrUnauthenticated
	}
	return s.repo.List(ctx, s.owner)
}

func (s session) Get(ctx context.Context, id string) (remote.Record, error) {
	if s.owner == "" {
		return remote.Record{}, remote.ErrUnauthenticated
	}
	return s.repo.Get(ctx, s.owner, id)
}

func (s session) GetPublic(ctx context.Context, token string) (remote.Record, error) {
	return s.repo.GetPublic(ctx, token)
}

func (s session) Create(ctx context.Context, name string) (string, error) {
	if s.owner == "" {
		return "", remote.ErrUnauthenticated
	}
	return s.repo.Create(ctx, s.owner, name)
}

func (s session) Update(ctx context.Context, id string, p remote.Patch) error {
	if s.owner == "" {
		return remote.ErrUnauthenticated
	}
	return s.repo.Update(ctx, s.owner, id, p)
}

func (s session) Delete(ctx context.Context, id string) error {
	if s.owner == "" {
		return remote.ErrUnauthenticated
	}
	return s.repo.Delete(ctx, s.owner, id)
}

func (s session) TogglePublic(ctx context.Context, id string) (string, error) {
	if s.owner == "" {
		return "", remote.ErrUnauthenticated
	}
	return s.repo.TogglePublic(ctx, s.owner, id)
}
