package model

// ClientType distinguishes individuals from organisations.
type ClientType string

const (
	ClientIndividual  ClientType = "individual"
	ClientCompany     ClientType = "company"
	ClientInstitution ClientType = "institution"
)

// Client is a customer record. Individuals use the personal_* fields,
// companies and institutions the company_* ones.
type Client struct {
	ID                 int64      `json:"id,omitempty"`
	Name               string     `json:"name" validate:"required"`
	ClientType         ClientType `json:"client_type" validate:"required,oneof=individual company institution"`
	PersonalName       string     `json:"personal_name" validate:"required_if=ClientType individual"`
	PersonalPhone      string     `json:"personal_phone"`
	PersonalEmail      string     `json:"personal_email" validate:"omitempty,email"`
	CompanyName        string     `json:"company_name" validate:"required_unless=ClientType individual"`
	BusinessNumber     string     `json:"business_number"`
	RepresentativeName string     `json:"representative_name"`
	CompanyPhone       string     `json:"company_phone"`
	CompanyEmail       string     `json:"company_email" validate:"omitempty,email"`
	Address            string     `json:"address"`
	Notes              string     `json:"notes"`
	CreatedAt          string     `json:"created_at,omitempty"`
	UpdatedAt          string     `json:"updated_at,omitempty"`
}

// Phone is the contact number matching the client type.
func (c Client) Phone() string {
	if c.ClientType == ClientIndividual {
		return c.PersonalPhone
	}
	return c.CompanyPhone
}

// Email is the contact address matching the client type.
func (c Client) Email() string {
	if c.ClientType == ClientIndividual {
		return c.PersonalEmail
	}
	return c.CompanyEmail
}
