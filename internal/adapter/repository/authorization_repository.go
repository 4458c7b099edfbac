package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
)

// AuthorizationRepository reads and writes vhc_authorizations through gorm.
type AuthorizationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAuthorizationRepository(db *gorm.DB, logger *zap.Logger) *AuthorizationRepository {
	return &AuthorizationRepository{
		db:     db,
		logger: logger,
	}
}

// ListAuthorized returns the job's authorized items in creation order.
func (r *AuthorizationRepository) ListAuthorized(ctx context.Context, job *model.Job) ([]writeup.AuthorizedItem, error) {
	var rows []model.VHCAuthorization
	if err := r.db.WithContext(ctx).
		Where("job_id = ? AND decision = ?", job.ID, model.DecisionAuthorized).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list authorizations for job %s: %w", job.JobNumber, err)
	}

	items := make([]writeup.AuthorizedItem, len(rows))
	for i, row := range rows {
		items[i] = row.AuthorizedItem()
	}
	return items, nil
}

func (r *AuthorizationRepository) Create(ctx context.Context, a *model.VHCAuthorization) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create authorization: %w", err)
	}
	return nil
}
