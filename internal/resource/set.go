package resource

import "github.com/Makepad-fr/nexo/internal/model"

// Set bundles every repository the clients use.
type Set struct {
	Auth          *Auth
	Clients       *Repo[model.Client]
	Items         *Repo[model.Item]
	Consultations *Repo[model.Consultation]
	Quotations    *Repo[model.Quotation]
	Contracts     *Repo[model.Contract]
	Installations *Installations
	Inventory     *Repo[model.Inventory]
	Employees     *Repo[model.Account]
	Accounts      *Repo[model.Account]
	Backups       *Backups
}

func NewSet(c API) *Set {
	return &Set{
		Auth:          &Auth{api: c},
		Clients:       NewRepo[model.Client](c, "/clients"),
		Items:         NewRepo[model.Item](c, "/items"),
		Consultations: NewRepo[model.Consultation](c, "/consultations"),
		Quotations:    NewRepo[model.Quotation](c, "/quotations"),
		Contracts:     NewRepo[model.Contract](c, "/contracts"),
		Installations: &Installations{Repo: NewRepo[model.Installation](c, "/installations")},
		Inventory: NewRepo[model.Inventory](c, "/inventory").WithUpdateBody(func(i *model.Inventory) any {
			return i.UpdateBody()
		}),
		Employees: NewRepo[model.Account](c, "/employees"),
		Accounts:  NewRepo[model.Account](c, "/admin/accounts"),
		Backups:   &Backups{api: c},
	}
}
