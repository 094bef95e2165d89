package reports

import (
	"context"

	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/pkg/db/models"
	"github.com/venuecast/venuecast-backend/pkg/enums"
)

// Repo abstracts report persistence so the service can run against a fake in
// tests.
type Repo interface {
	Insert(ctx context.Context, report *models.Report) error
	List(ctx context.Context, limit int) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id string, status enums.ReportStatus) error
}

// Repository encapsulates report persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reports repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a new report.
func (r *Repository) Insert(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// List returns reports, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Report, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Order("received_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// UpdateStatus moves a report through triage.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status enums.ReportStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
