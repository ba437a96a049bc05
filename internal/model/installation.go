package model

// Installation job types and statuses.
const (
	JobInstallation = "installation"
	JobAS           = "as"

	JobPending    = "pending"
	JobInProgress = "in_progress"
	JobCompleted  = "completed"
	JobCancelled  = "cancelled"
)

// Installation is an installation or after-sales (AS) job assigned to a technician.
type Installation struct {
	ID               int64  `json:"id,omitempty"`
	ContractID       int64  `json:"contract_id" validate:"required"`
	ClientID         int64  `json:"client_id" validate:"required"`
	TechnicianID     int64  `json:"technician_id,omitempty"`
	InstallationType string `json:"installation_type" validate:"required,oneof=installation as"`
	Status           string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
	ScheduledDate    string `json:"scheduled_date,omitempty"`
	CompletedDate    string `json:"completed_date,omitempty"`
	ResultText       string `json:"result_text,omitempty"`
	PhotoURL1        string `json:"photo_url_1,omitempty"`
	PhotoURL2        string `json:"photo_url_2,omitempty"`
	Notes            string `json:"notes"`
	Client           *Ref   `json:"client,omitempty"`
	Technician       *Ref   `json:"technician,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}
