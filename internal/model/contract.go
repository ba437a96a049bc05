package model

// Contract statuses.
const (
	ContractDraft      = "draft"
	ContractSigned     = "signed"
	ContractInProgress = "in_progress"
	ContractCompleted  = "completed"
	ContractCancelled  = "cancelled"
)

type Contract struct {
	ID             int64      `json:"id,omitempty"`
	ContractNumber string     `json:"contract_number" validate:"required"`
	ClientID       int64      `json:"client_id" validate:"required"`
	QuotationID    *int64     `json:"quotation_id"`
	Status         string     `json:"status" validate:"required,oneof=draft signed in_progress completed cancelled"`
	ContractDate   string     `json:"contract_date"`
	TotalAmount    float64    `json:"total_amount,omitempty"`
	Notes          string     `json:"notes"`
	Items          []LineItem `json:"items" validate:"dive"`
	Client         *Ref       `json:"client,omitempty"`
	CreatedAt      string     `json:"created_at,omitempty"`
}

// Active reports whether the contract counts as ongoing work.
func (c Contract) Active() bool {
	return c.Status == ContractSigned || c.Status == ContractInProgress
}
