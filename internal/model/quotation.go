package model

// Quotation statuses.
const (
	QuotationDraft     = "draft"
	QuotationSubmitted = "submitted"
	QuotationApproved  = "approved"
	QuotationRejected  = "rejected"
	QuotationExpired   = "expired"
)

type Quotation struct {
	ID              int64      `json:"id,omitempty"`
	QuotationNumber string     `json:"quotation_number" validate:"required"`
	ClientID        int64      `json:"client_id" validate:"required"`
	ConsultationID  *int64     `json:"consultation_id"`
	Status          string     `json:"status" validate:"required,oneof=draft submitted approved rejected expired"`
	TotalAmount     float64    `json:"total_amount,omitempty"`
	ValidUntil      string     `json:"valid_until,omitempty"`
	Notes           string     `json:"notes"`
	Items           []LineItem `json:"items" validate:"dive"`
	Client          *Ref       `json:"client,omitempty"`
	CreatedAt       string     `json:"created_at,omitempty"`
}
