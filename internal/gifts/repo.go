package gifts

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/venuecast/venuecast-backend/pkg/db/models"
)

const settingsRowID = 1

// Repo abstracts catalog persistence so the service can run against a fake in
// tests.
type Repo interface {
	ListItems(ctx context.Context) ([]models.GiftItem, error)
	FindItem(ctx context.Context, id string) (*models.GiftItem, error)
	InsertItem(ctx context.Context, item *models.GiftItem) error
	UpdateItem(ctx context.Context, item *models.GiftItem) error
	DeleteItem(ctx context.Context, id string) error
	GetSettings(ctx context.Context) (*models.GiftSettings, error)
	SaveSettings(ctx context.Context, settings *models.GiftSettings) error
}

// Repository encapsulates gift catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a gifts repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListItems returns the catalog sorted by name.
func (r *Repository) ListItems(ctx context.Context) ([]models.GiftItem, error) {
	var items []models.GiftItem
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindItem loads one catalog entry.
func (r *Repository) FindItem(ctx context.Context, id string) (*models.GiftItem, error) {
	var item models.GiftItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// InsertItem stores a new catalog entry.
func (r *Repository) InsertItem(ctx context.Context, item *models.GiftItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItem overwrites a catalog entry.
func (r *Repository) UpdateItem(ctx context.Context, item *models.GiftItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.GiftItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":        item.Name,
			"price":       item.Price,
			"description": item.Description,
			"image_url":   item.ImageURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteItem removes a catalog entry.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.GiftItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetSettings loads the single settings row, creating the default when it is
// missing.
func (r *Repository) GetSettings(ctx context.Context) (*models.GiftSettings, error) {
	var settings models.GiftSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", settingsRowID).
		First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	settings = models.GiftSettings{ID: settingsRowID, TableCount: 10}
	if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings persists the single settings row.
func (r *Repository) SaveSettings(ctx context.Context, settings *models.GiftSettings) error {
	settings.ID = settingsRowID
	return r.db.WithContext(ctx).Save(settings).Error
}
