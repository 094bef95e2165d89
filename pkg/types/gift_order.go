package types

import "github.com/shopspring/decimal"

// GiftLineItem is one catalog item inside a gift order.
type GiftLineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// GiftOrder captures the structured payload of a gift submission. Stored as a
// JSON column on the submission row.
type GiftOrder struct {
	TableNumber string         `json:"table_number"`
	Items       []GiftLineItem `json:"items"`
	Note        string         `json:"note,omitempty"`
}

// Total sums price*quantity across line items.
func (g GiftOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range g.Items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}
