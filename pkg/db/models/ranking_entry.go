package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RankingEntry accumulates submission prices per sender. Keyed by the
// normalized (trimmed, lowercased) sender name; DisplayName keeps the casing
// of the first submission.
type RankingEntry struct {
	NormalizedName string          `gorm:"column:normalized_name;primaryKey" json:"-"`
	DisplayName    string          `gorm:"column:display_name;not null" json:"name"`
	Points         decimal.Decimal `gorm:"column:points;type:numeric(14,2);not null" json:"points"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the table name for gorm.
func (RankingEntry) TableName() string { return "ranking_entries" }
