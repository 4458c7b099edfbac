package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
)

type PartsRequestRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPartsRequestRepository(db *gorm.DB, logger *zap.Logger) *PartsRequestRepository {
	return &PartsRequestRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PartsRequestRepository) ListByJob(ctx context.Context, jobID uint) ([]model.PartsRequest, error) {
	var rows []model.PartsRequest
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list parts requests for job %d: %w", jobID, err)
	}
	return rows, nil
}

func (r *PartsRequestRepository) Create(ctx context.Context, p *model.PartsRequest) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create parts request: %w", err)
	}
	return nil
}
