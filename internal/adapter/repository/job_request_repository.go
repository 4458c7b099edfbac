package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
)

type JobRequestRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewJobRequestRepository(db *gorm.DB, logger *zap.Logger) *JobRequestRepository {
	return &JobRequestRepository{
		db:     db,
		logger: logger,
	}
}

func (r *JobRequestRepository) ListByJob(ctx context.Context, jobID uint) ([]model.JobRequest, error) {
	var rows []model.JobRequest
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list requests for job %d: %w", jobID, err)
	}
	return rows, nil
}

func (r *JobRequestRepository) Create(ctx context.Context, req *model.JobRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create job request: %w", err)
	}
	return nil
}
