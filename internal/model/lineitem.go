package model

// LineItem is one row of a quotation or contract.
type LineItem struct {
	ItemID     int64   `json:"item_id" validate:"required"`
	Quantity   int     `json:"quantity" validate:"gte=1"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0"`
	TotalPrice float64 `json:"total_price,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// Amount is quantity × unit price.
func (l LineItem) Amount() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// LineTotal sums the line amounts. It is a display hint only; the total the
// server stores is authoritative.
func LineTotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Amount()
	}
	return sum
}
