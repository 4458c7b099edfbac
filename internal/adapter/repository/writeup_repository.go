package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/repository"
)

// upsertColumns are overwritten when a write-up row for the job already exists.
var upsertColumns = []string{
	"job_number",
	model.ColumnFault,
	model.ColumnCause,
	model.ColumnRectification,
	model.ColumnTaskChecklist,
	model.ColumnCauseEntries,
	model.ColumnSectionEditors,
	model.ColumnCompletionStatus,
	model.ColumnWarrantyClaimNumber,
	model.ColumnOdometerReading,
	model.ColumnAdditionalNotes,
	model.ColumnUpdatedBy,
	model.ColumnUpdatedAt,
}

type writeupRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWriteupRepository creates a new job write-up repository
func NewWriteupRepository(db *gorm.DB, logger *zap.Logger) repository.WriteupRepository {
	return &writeupRepository{
		db:     db,
		logger: logger,
	}
}

func (r *writeupRepository) FindByJobID(ctx context.Context, jobID uint) (*model.JobWriteup, error) {
	var w model.JobWriteup
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get write-up for job %d: %w", jobID, err)
	}
	return &w, nil
}

func (r *writeupRepository) Upsert(ctx context.Context, w *model.JobWriteup) error {
	if len(w.SectionEditors) == 0 {
		w.SectionEditors = datatypes.JSON("{}")
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(w).Error
	if err != nil {
		r.logger.Error("failed to upsert write-up",
			zap.Uint("job_id", w.JobID),
			zap.String("job_number", w.JobNumber),
			zap.Error(err))
		return fmt.Errorf("failed to upsert write-up: %w", err)
	}
	return nil
}

func (r *writeupRepository) UpdateColumns(ctx context.Context, jobID uint, jobNumber string, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &model.JobWriteup{
			JobID:          jobID,
			JobNumber:      jobNumber,
			SectionEditors: datatypes.JSON("{}"),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}},
			DoNothing: true,
		}).Create(seed).Error; err != nil {
			return fmt.Errorf("failed to create write-up row: %w", err)
		}

		if err := tx.Model(&model.JobWriteup{}).
			Where("job_id = ?", jobID).
			Updates(columns).Error; err != nil {
			r.logger.Error("failed to update write-up columns",
				zap.Uint("job_id", jobID),
				zap.Int("columns", len(columns)),
				zap.Error(err))
			return fmt.Errorf("failed to update write-up columns: %w", err)
		}
		return nil
	})
}
