package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/venuecast/venuecast-backend/pkg/enums"
	"github.com/venuecast/venuecast-backend/pkg/types"
)

// Submission is a patron-originated item awaiting or having completed staff
// review. Pending rows form the admission queue; finalized rows form the
// check history, so an id lives in exactly one bucket by construction.
type Submission struct {
	ID  string `gorm:"column:id;primaryKey" json:"id"`
	Seq int64  `gorm:"column:seq;autoIncrement;uniqueIndex" json:"-"`

	Kind enums.SubmissionKind `gorm:"column:kind;not null" json:"type"`

	Text       string  `gorm:"column:text" json:"text"`
	TextColor  string  `gorm:"column:text_color" json:"textColor"`
	SocialType *string `gorm:"column:social_type" json:"socialType"`
	SocialName *string `gorm:"column:social_name" json:"socialName"`
	FilePath   *string `gorm:"column:file_path" json:"filePath"`
	Composed   bool    `gorm:"column:composed;not null;default:false" json:"composed"`

	GiftOrder *types.GiftOrder `gorm:"column:gift_order;type:jsonb;serializer:json" json:"giftOrder,omitempty"`

	// DisplaySeconds is how long the item occupies the playback slot once
	// approved.
	DisplaySeconds int             `gorm:"column:display_seconds;not null;default:0" json:"displaySeconds"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Sender         string          `gorm:"column:sender;not null" json:"sender"`

	Status     enums.SubmissionStatus `gorm:"column:status;not null;index" json:"status"`
	ReceivedAt time.Time              `gorm:"column:received_at;not null;index" json:"receivedAt"`
	CheckedAt  *time.Time             `gorm:"column:checked_at" json:"checkedAt,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName pins the table name for gorm.
func (Submission) TableName() string { return "submissions" }
