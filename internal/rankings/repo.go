package rankings

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/venuecast/venuecast-backend/pkg/db/models"
)

// Repo abstracts leaderboard persistence so the service can run against a
// fake in tests.
type Repo interface {
	Credit(ctx context.Context, normalized, display string, points decimal.Decimal) error
	List(ctx context.Context, limit int) ([]models.RankingEntry, error)
	Reset(ctx context.Context) error
}

// Repository encapsulates leaderboard persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a rankings repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Credit upserts the entry and adds points atomically. The first submission
// under a name fixes its display casing.
func (r *Repository) Credit(ctx context.Context, normalized, display string, points decimal.Decimal) error {
	entry := models.RankingEntry{
		NormalizedName: normalized,
		DisplayName:    display,
		Points:         points,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "normalized_name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"points": gorm.Expr("ranking_entries.points + excluded.points"),
			}),
		}).
		Create(&entry).Error
}

// List returns entries ordered by points descending, name ascending for ties.
func (r *Repository) List(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	query := r.db.WithContext(ctx).
		Model(&models.RankingEntry{}).
		Order("points DESC").
		Order("normalized_name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []models.RankingEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Reset clears the leaderboard.
func (r *Repository) Reset(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.RankingEntry{}).Error
}
