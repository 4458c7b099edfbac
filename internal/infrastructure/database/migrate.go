package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/workshop-backend/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running GORM auto-migrations...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	// partial indexes are postgres only
	if db.Dialector.Name() == "postgres" {
		logger.Info("Creating custom indexes...")
		if err := createCustomIndexes(db); err != nil {
			logger.Error("Failed to create custom indexes", zap.Error(err))
			return err
		}
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_jobs_open ON jobs (id) WHERE closed_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_vhc_authorizations_authorized ON vhc_authorizations (job_id, id) WHERE decision = 'authorized'`,
		`CREATE INDEX IF NOT EXISTS idx_parts_requests_job_status ON parts_requests (job_id, status)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
