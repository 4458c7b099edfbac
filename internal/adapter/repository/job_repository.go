package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/repository"
	pkgerrors "github.com/wekeepgrowing/workshop-backend/pkg/errors"
)

type jobRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB, logger *zap.Logger) repository.JobRepository {
	return &jobRepository{
		db:     db,
		logger: logger,
	}
}

func (r *jobRepository) FindByNumber(ctx context.Context, jobNumber string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Where("job_number = ?", jobNumber).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobNumber, err)
	}
	return &job, nil
}

func (r *jobRepository) ListOpen(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	if err := r.db.WithContext(ctx).
		Where("closed_at IS NULL").
		Order("id ASC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list open jobs: %w", err)
	}
	return jobs, nil
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job %s: %w", job.JobNumber, err)
	}
	return nil
}

func (r *jobRepository) TransitionStatus(
	ctx context.Context,
	jobID uint,
	from, to model.JobStatus,
	changedBy, reason string,
) (*model.JobStatusHistory, error) {
	var history *model.JobStatusHistory

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Job{}).
			Where("id = ? AND status = ?", jobID, from).
			Update("status", to)
		if res.Error != nil {
			return fmt.Errorf("failed to update job status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.Conflict("job status changed by someone else", nil)
		}

		history = &model.JobStatusHistory{
			JobID:      jobID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  changedBy,
			Reason:     reason,
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to insert job status history: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("job status transition rolled back",
			zap.Uint("job_id", jobID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("job status transitioned",
		zap.Uint("job_id", jobID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("changed_by", changedBy))
	return history, nil
}
