package model

// Item is a catalog entry that quotations, contracts and inventory refer to.
type Item struct {
	ID          int64   `json:"id,omitempty"`
	Code        string  `json:"code" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	Unit        string  `json:"unit"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// Ref is the short {id, name} projection the backend embeds in related records.
type Ref struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Code     string `json:"code,omitempty"`
}

// Label returns whichever display name the backend filled in.
func (r *Ref) Label() string {
	if r == nil {
		return ""
	}
	if r.Name != "" {
		return r.Name
	}
	return r.FullName
}
