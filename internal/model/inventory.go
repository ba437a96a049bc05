package model

// Inventory is the stock entry for one item. The item cannot change once the
// entry exists, so updates go out as InventoryUpdate.
type Inventory struct {
	ID            int64  `json:"id,omitempty"`
	ItemID        int64  `json:"item_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"gte=0"`
	MinStockLevel int    `json:"min_stock_level" validate:"gte=0"`
	Location      string `json:"location"`
	Notes         string `json:"notes"`
	Item          *Ref   `json:"item,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// InventoryUpdate is the PUT body for an existing entry.
type InventoryUpdate struct {
	Quantity      int    `json:"quantity"`
	MinStockLevel int    `json:"min_stock_level"`
	Location      string `json:"location"`
	Notes         string `json:"notes"`
}

// LowStock reports whether quantity is at or below the minimum level.
func (i Inventory) LowStock() bool {
	return i.Quantity <= i.MinStockLevel
}

// UpdateBody drops the immutable item reference.
func (i Inventory) UpdateBody() InventoryUpdate {
	return InventoryUpdate{
		Quantity:      i.Quantity,
		MinStockLevel: i.MinStockLevel,
		Location:      i.Location,
		Notes:         i.Notes,
	}
}
