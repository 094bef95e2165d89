package submissions

import (
	"github.com/shopspring/decimal"

	"github.com/venuecast/venuecast-backend/pkg/enums"
	"github.com/venuecast/venuecast-backend/pkg/types"
)

// CreateInput carries a patron submission into the service.
type CreateInput struct {
	Kind           enums.SubmissionKind
	Text           string
	TextColor      string
	SocialType     *string
	SocialName     *string
	FilePath       *string
	Composed       bool
	GiftOrder      *types.GiftOrder
	DisplaySeconds int
	Price          decimal.Decimal
	Sender         string
}

// Decision names a staff disposition.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)
