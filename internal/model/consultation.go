package model

// Consultation is a sales conversation logged against a client.
type Consultation struct {
	ID               int64  `json:"id,omitempty"`
	ClientID         int64  `json:"client_id" validate:"required"`
	SalespersonID    int64  `json:"salesperson_id,omitempty"`
	ConsultationDate string `json:"consultation_date"`
	Content          string `json:"content" validate:"required"`
	Notes            string `json:"notes"`
	Client           *Ref   `json:"client,omitempty"`
	Salesperson      *Ref   `json:"salesperson,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}
