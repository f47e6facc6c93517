// Package core provides the domain models, state machine, and interfaces
// for the jobtrack module.
package core

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	StatusScheduled  JobStatus = "scheduled"
	StatusInProgress JobStatus = "in_progress"
	StatusDone       JobStatus = "done"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// Payload is the structured data stored with a job: initial data at
// creation, the task's return value once the job is done. Stored as
// JSON (JSONB on Postgres).
type Payload = datatypes.JSONMap

// Job is a trackable unit of asynchronous work with a durable record.
// ID, Type and CreatedAt are set at creation and never change; the
// remaining fields mutate only through the lifecycle transitions.
type Job struct {
	ID           string     `gorm:"primaryKey;size:36"`
	Type         string     `gorm:"index;size:50;not null"`
	Status       JobStatus  `gorm:"index;size:20;default:'scheduled'"`
	DocumentID   *uuid.UUID `gorm:"index;size:36"`
	PropertyID   *uuid.UUID `gorm:"index;size:36"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	StartedAt    *time.Time
	FinishedAt   *time.Time
	Result       Payload
	ErrorMessage string `gorm:"type:text"`
}

// TableName returns the table backing job records.
func (Job) TableName() string { return "jobs" }

// CreateRequest carries the fields settable at job creation.
// DocumentID and PropertyID reference externally-owned entities; their
// lifecycle (including cascade deletes) is outside this module.
type CreateRequest struct {
	Type        string
	DocumentID  *uuid.UUID
	PropertyID  *uuid.UUID
	InitialData Payload
}

// JobUpdate is a partial update. Only non-nil fields are applied; a nil
// field means "leave unchanged", never "set to empty".
type JobUpdate struct {
	Status       *JobStatus
	StartedAt    *time.Time
	FinishedAt   *time.Time
	Result       Payload
	ErrorMessage *string
}
