package rankings

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSenderName is credited when a submission arrives without a sender.
const DefaultSenderName = "Guest"

// EntryDTO is one leaderboard row.
type EntryDTO struct {
	Name   string          `json:"name"`
	Points decimal.Decimal `json:"points"`
}

// NormalizeSender collapses a raw sender name to its leaderboard key plus the
// display form. Blank names fold into the shared guest bucket.
func NormalizeSender(raw string) (normalized, display string) {
	display = strings.TrimSpace(raw)
	if display == "" {
		display = DefaultSenderName
	}
	return strings.ToLower(display), display
}
