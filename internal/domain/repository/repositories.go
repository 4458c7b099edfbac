package repository

import (
	"context"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// JobRepository defines the job card data operations
type JobRepository interface {
	// FindByNumber returns nil, nil when no job has the number
	FindByNumber(ctx context.Context, jobNumber string) (*model.Job, error)

	// ListOpen returns jobs that have not been closed
	ListOpen(ctx context.Context) ([]model.Job, error)

	Create(ctx context.Context, job *model.Job) error

	// TransitionStatus moves the job from one status to another and writes a
	// history row in the same transaction. It fails with a conflict when
	// the stored status is no longer from.
	TransitionStatus(ctx context.Context, jobID uint, from, to model.JobStatus, changedBy, reason string) (*model.JobStatusHistory, error)
}

// WriteupRepository defines the job write-up data operations
type WriteupRepository interface {
	// FindByJobID returns nil, nil when the job has no write-up yet
	FindByJobID(ctx context.Context, jobID uint) (*model.JobWriteup, error)

	// Upsert inserts or replaces the whole write-up keyed by job id
	Upsert(ctx context.Context, w *model.JobWriteup) error

	// UpdateColumns inserts the write-up row if missing and sets only the
	// given columns
	UpdateColumns(ctx context.Context, jobID uint, jobNumber string, columns map[string]interface{}) error
}

// AuthorizationRepository reads customer-approved VHC work for a job
type AuthorizationRepository interface {
	ListAuthorized(ctx context.Context, job *model.Job) ([]writeup.AuthorizedItem, error)
}

// PartsRequestRepository defines the parts request data operations
type PartsRequestRepository interface {
	ListByJob(ctx context.Context, jobID uint) ([]model.PartsRequest, error)
}

// JobRequestRepository defines the customer request data operations
type JobRequestRepository interface {
	ListByJob(ctx context.Context, jobID uint) ([]model.JobRequest, error)
}
