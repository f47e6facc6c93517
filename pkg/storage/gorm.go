// Package storage provides the GORM-backed job store.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propdocs/jobtrack/pkg/core"
)

// GormStore implements core.Store using GORM. Safe for concurrent use;
// per-job write ordering is the caller's responsibility (the service
// facade serializes mutation through its state-machine check).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the jobs table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&core.Job{}); err != nil {
		return &core.PersistenceError{Op: "migrate", Err: err}
	}
	return nil
}

// Create inserts a new job in the scheduled state. The result column
// holds the initial data, or an empty mapping when none is supplied.
func (s *GormStore) Create(ctx context.Context, req core.CreateRequest) (*core.Job, error) {
	job := &core.Job{
		ID:         uuid.New().String(),
		Type:       req.Type,
		Status:     core.StatusScheduled,
		DocumentID: req.DocumentID,
		PropertyID: req.PropertyID,
		Result:     req.InitialData,
	}
	if job.Result == nil {
		job.Result = core.Payload{}
	}

	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, &core.PersistenceError{Op: "create job", Err: err}
	}
	return job, nil
}

// Get retrieves a job by ID.
func (s *GormStore) Get(ctx context.Context, jobID string) (*core.Job, error) {
	var job core.Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, &core.PersistenceError{Op: "get job", Err: err}
	}
	return &job, nil
}

// Update applies only the supplied fields as a single atomic UPDATE.
func (s *GormStore) Update(ctx context.Context, jobID string, upd core.JobUpdate) (*core.Job, error) {
	fields := updateFields(upd)
	if len(fields) > 0 {
		result := s.db.WithContext(ctx).
			Model(&core.Job{}).
			Where("id = ?", jobID).
			Updates(fields)
		if result.Error != nil {
			return nil, &core.PersistenceError{Op: "update job", Err: result.Error}
		}
		if result.RowsAffected == 0 {
			return nil, core.ErrNotFound
		}
	}
	return s.Get(ctx, jobID)
}

// updateFields converts a partial update into column assignments. A nil
// field is absent from the map, so the column is left untouched.
func updateFields(upd core.JobUpdate) map[string]any {
	fields := make(map[string]any, 5)
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.StartedAt != nil {
		fields["started_at"] = *upd.StartedAt
	}
	if upd.FinishedAt != nil {
		fields["finished_at"] = *upd.FinishedAt
	}
	if upd.Result != nil {
		fields["result"] = upd.Result
	}
	if upd.ErrorMessage != nil {
		fields["error_message"] = *upd.ErrorMessage
	}
	return fields
}

// ListByStatus retrieves jobs with the given status, newest first.
func (s *GormStore) ListByStatus(ctx context.Context, status core.JobStatus) ([]*core.Job, error) {
	var jobList []*core.Job
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC, id ASC").
		Find(&jobList).Error
	if err != nil {
		return nil, &core.PersistenceError{Op: "list jobs by status", Err: err}
	}
	return jobList, nil
}

// ListAll retrieves every job, newest first, ID as tiebreak.
func (s *GormStore) ListAll(ctx context.Context) ([]*core.Job, error) {
	var jobList []*core.Job
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id ASC").
		Find(&jobList).Error
	if err != nil {
		return nil, &core.PersistenceError{Op: "list jobs", Err: err}
	}
	return jobList, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return &core.PersistenceError{Op: "close", Err: err}
	}
	if err := sqlDB.Close(); err != nil {
		return &core.PersistenceError{Op: "close", Err: err}
	}
	return nil
}
