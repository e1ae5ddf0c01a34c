package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tour-sync/internal/models"
)

// RunRepository stores the ledger of bulk runs.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository with the provided GORM database connection.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Migrate creates or updates the ledger tables.
func (r *RunRepository) Migrate() error {
	return r.db.AutoMigrate(&models.RunRecord{}, &models.TourRecord{})
}

// SaveRun stores a run and its tour rows in one transaction.
func (r *RunRepository) SaveRun(run *models.RunRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(run).Error; err != nil {
			return err
		}
		if len(run.Tours) == 0 {
			return nil
		}
		return tx.Create(&run.Tours).Error
	})
}

// ListRuns retrieves the most recent runs, newest first.
func (r *RunRepository) ListRuns(limit int) ([]models.RunRecord, error) {
	var runs []models.RunRecord
	err := r.db.Order("started_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}
