package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftItem is a catalog entry patrons can order for a table.
type GiftItem struct {
	ID          string          `gorm:"column:id;primaryKey" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Description string          `gorm:"column:description" json:"description"`
	ImageURL    string          `gorm:"column:image_url" json:"imageUrl"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the table name for gorm.
func (GiftItem) TableName() string { return "gift_items" }

// GiftSettings is a single-row table holding venue-level gift configuration.
type GiftSettings struct {
	ID         int       `gorm:"column:id;primaryKey" json:"-"`
	TableCount int       `gorm:"column:table_count;not null;default:10" json:"tableCount"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the table name for gorm.
func (GiftSettings) TableName() string { return "gift_settings" }
