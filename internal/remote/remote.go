// Package remote defines the owner-scoped cloud store the sync engine mirrors
// schedules to, with an in-memory implementation and an HTTP client.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sadopc/weekly/internal/schedule"
)

var (
	ErrNotFound        = errors.New("remote: schedule not found")
	ErrForbidden       = errors.New("remote: schedule not owned by caller")
	ErrUnauthenticated = errors.New("remote: not authenticated")
)

// NetworkError wraps a transport or availability failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Meta is the list view of a schedule; it carries no task bodies.
type Meta struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TaskCount  int    `json:"taskCount"`
	IsPublic   bool   `json:"isPublic"`
	ShareToken string `json:"shareToken,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// Record is a full remote schedule.
type Record struct {
	ID         string            `json:"id"`
	OwnerID    string            `json:"ownerId,omitempty"`
	Name       string            `json:"name"`
	Tasks      []schedule.Task   `json:"tasks"`
	Settings   schedule.Settings `json:"settings"`
	IsPublic   bool              `json:"isPublic"`
	ShareToken string            `json:"shareToken,omitempty"`
	CreatedAt  int64             `json:"createdAt"`
	UpdatedAt  int64             `json:"updatedAt"`
}

func (r Record) Meta() Meta {
	return Meta{
		ID:         r.ID,
		Name:       r.Name,
		TaskCount:  len(r.Tasks),
		IsPublic:   r.IsPublic,
		ShareToken: r.ShareToken,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// Schedule maps the record into local shape. The remote id doubles as the
// local id so a fresh device gets stable identities.
func (r Record) Schedule() schedule.Schedule {
	tasks := make([]schedule.Task, len(r.Tasks))
	for i, t := range r.Tasks {
		tasks[i] = t.Clone()
	}
	return schedule.Schedule{
		LocalID:    r.ID,
		RemoteID:   r.ID,
		Name:       r.Name,
		Tasks:      tasks,
		Settings:   r.Settings,
		IsPublic:   r.IsPublic,
		ShareToken: r.ShareToken,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name     *string            `json:"name,omitempty"`
	Tasks    []schedule.Task    `json:"tasks"`
	Settings *schedule.Settings `json:"settings,omitempty"`
}

// FullPatch replaces name, tasks and settings wholesale with those of sc.
func FullPatch(sc schedule.Schedule) Patch {
	name := sc.Name
	settings := sc.Settings
	tasks := make([]schedule.Task, len(sc.Tasks))
	for i, t := range sc.Tasks {
		tasks[i] = t.Clone()
	}
	return Patch{Name: &name, Tasks: tasks, Settings: &settings}
}

// Apply merges p into r. A nil Tasks slice leaves tasks untouched; an empty
// non-nil slice clears them.
func (p Patch) Apply(r Record) Record {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Tasks != nil {
		r.Tasks = make([]schedule.Task, len(p.Tasks))
		for i, t := range p.Tasks {
			r.Tasks[i] = t.Clone()
		}
	}
	if p.Settings != nil {
		r.Settings = *p.Settings
	}
	return r
}

// Validate rejects patches that would break record invariants.
func (p Patch) Validate() error {
	if p.Name != nil {
		if err := schedule.ValidateName(*p.Name); err != nil {
			return err
		}
	}
	for _, t := range p.Tasks {
		if err := schedule.ValidateTask(t); err != nil {
			return err
		}
	}
	if p.Settings != nil {
		if err := schedule.ValidateSettings(*p.Settings); err != nil {
			return err
		}
	}
	return nil
}

// Backend is the set of operations an authenticated session may perform.
// Every call is independent; implementations do not retry.
type Backend interface {
	List(ctx context.Context) ([]Meta, error)
	Get(ctx context.Context, id string) (Record, error)
	GetPublic(ctx context.Context, shareToken string) (Record, error)
	Create(ctx context.Context, name string) (string, error)
	Update(ctx context.Context, id string, p Patch) error
	Delete(ctx context.Context, id string) error
	// TogglePublic flips sharing and returns the new token, or "" when
	// sharing was turned off.
	TogglePublic(ctx context.Context, id string) (string, error)
}

// SortMetas orders metadata oldest first, ties broken by id.
func SortMetas(ms []Meta) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].CreatedAt != ms[j].CreatedAt {
			return ms[i].CreatedAt < ms[j].CreatedAt
		}
		return ms[i].ID < ms[j].ID
	})
}

// Sessions hands out a Backend bound to one owner. Both the in-memory store
// and the SQL repository implement it.
type Sessions interface {
	Session(owner string) Backend
}
