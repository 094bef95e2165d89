package models

import (
	"time"

	"github.com/venuecast/venuecast-backend/pkg/enums"
)

// Report is a patron-filed issue report reviewed by staff.
type Report struct {
	ID         string             `gorm:"column:id;primaryKey" json:"id"`
	Category   string             `gorm:"column:category;not null" json:"category"`
	Detail     string             `gorm:"column:detail;not null" json:"detail"`
	Status     enums.ReportStatus `gorm:"column:status;not null" json:"status"`
	ReceivedAt time.Time          `gorm:"column:received_at;not null" json:"receivedAt"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the table name for gorm.
func (Report) TableName() string { return "reports" }
