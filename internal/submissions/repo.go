package submissions

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/pkg/db/models"
	"github.com/venuecast/venuecast-backend/pkg/enums"
)

// Repo abstracts submission persistence so the service can run against a fake
// in tests.
type Repo interface {
	Insert(ctx context.Context, sub *models.Submission) error
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	ListPending(ctx context.Context) ([]models.Submission, error)
	ListChecked(ctx context.Context, limit int) ([]models.Submission, error)
	CountPending(ctx context.Context) (int64, error)
	Finalize(ctx context.Context, id string, status enums.SubmissionStatus, checkedAt time.Time) (*models.Submission, error)
	DeletePending(ctx context.Context, id string) (*models.Submission, error)
	DeleteChecked(ctx context.Context, id string) error
	ClearChecked(ctx context.Context) (int64, error)
}

// Repository encapsulates submission persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a submissions repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a new pending submission.
func (r *Repository) Insert(ctx context.Context, sub *models.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindByID loads a submission regardless of status.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListPending returns the admission queue in arrival order. Seq breaks ties
// between rows that share a received_at timestamp.
func (r *Repository) ListPending(ctx context.Context) ([]models.Submission, error) {
	var subs []models.Submission
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.SubmissionStatusPending).
		Order("received_at ASC").
		Order("seq ASC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// ListChecked returns disposed submissions in disposition order, oldest
// decision first. A positive limit keeps only the most recent decisions;
// the slice still reads oldest to newest.
func (r *Repository) ListChecked(ctx context.Context, limit int) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ?", []enums.SubmissionStatus{
			enums.SubmissionStatusApproved,
			enums.SubmissionStatusRejected,
		}).
		Order("checked_at DESC").
		Order("seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var subs []models.Submission
	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(subs)-1; i < j; i, j = i+1, j-1 {
		subs[i], subs[j] = subs[j], subs[i]
	}
	return subs, nil
}

// CountPending returns the current admission queue depth.
func (r *Repository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("status = ?", enums.SubmissionStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Finalize flips a pending submission to its final status in one guarded
// update. Returns gorm.ErrRecordNotFound when the row is missing or was
// already disposed, so concurrent decisions cannot both win.
func (r *Repository) Finalize(ctx context.Context, id string, status enums.SubmissionStatus, checkedAt time.Time) (*models.Submission, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, enums.SubmissionStatusPending).
		Updates(map[string]any{
			"status":     status,
			"checked_at": checkedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// DeletePending removes a still-pending submission outright. The row is
// loaded first so the caller can clean up its stored asset. A row that was
// disposed in the meantime is treated as missing.
func (r *Repository) DeletePending(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, enums.SubmissionStatusPending).
		Delete(&models.Submission{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return sub, nil
}

// DeleteChecked removes one disposed submission from the history.
func (r *Repository) DeleteChecked(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, []enums.SubmissionStatus{
			enums.SubmissionStatusApproved,
			enums.SubmissionStatusRejected,
		}).
		Delete(&models.Submission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearChecked wipes the disposition history. Pending rows are untouched.
func (r *Repository) ClearChecked(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ?", []enums.SubmissionStatus{
			enums.SubmissionStatusApproved,
			enums.SubmissionStatusRejected,
		}).
		Delete(&models.Submission{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
