package repository

import (
	"github.com/sadopc/weekly/internal/remote"
	"github.com/sadopc/weekly/internal/schedule"
)

// scheduleRow is one remote schedule. Tasks and settings are stored as JSON
// columns; they are always read and replaced together with the row.
type scheduleRow struct {
	ID         string            `gorm:"primaryKey"`
	OwnerID    string            `gorm:"index;not null"`
	Name       string            `gorm:"not null"`
	Tasks      []schedule.Task   `gorm:"serializer:json"`
	Settings   schedule.Settings `gorm:"serializer:json"`
	IsPublic   bool              `gorm:"default:false"`
	ShareToken *string           `gorm:"uniqueIndex"`
	CreatedAt  int64             `gorm:"autoCreateTime:milli"`
	UpdatedAt  int64             `gorm:"autoUpdateTime:milli"`
}

func (scheduleRow) TableName() string { return "schedules" }

func (r scheduleRow) record() remote.Record {
	rec := remote.Record{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Tasks:     r.Tasks,
		Settings:  r.Settings,
		IsPublic:  r.IsPublic,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if rec.Tasks == nil {
		rec.Tasks = []schedule.Task{}
	}
	if r.ShareToken != nil {
		rec.ShareToken = *r.ShareToken
	}
	return rec
}
