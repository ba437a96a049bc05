package catalog

import (
	"context"

	"github.com/Makepad-fr/nexo/internal/guard"
	"github.com/Makepad-fr/nexo/internal/model"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/ui"
)

var (
	clientTypes = []string{string(model.ClientIndividual), string(model.ClientCompany), string(model.ClientInstitution)}
	roles       = []string{model.RoleSales, model.RoleTechnician, model.RoleAdmin, model.RoleSuperAdmin}
	jobTypes    = []string{model.JobInstallation, model.JobAS}
	jobStatuses = []string{model.JobPending, model.JobInProgress, model.JobCompleted, model.JobCancelled}
	quoteStates = []string{model.QuotationDraft, model.QuotationSubmitted, model.QuotationApproved, model.QuotationRejected, model.QuotationExpired}
	contractSts = []string{model.ContractDraft, model.ContractSigned, model.ContractInProgress, model.ContractCompleted, model.ContractCancelled}
)

func refLabel(r *model.Ref) string {
	if r == nil {
		return ""
	}
	return r.Label()
}

func fillLinePrices(ctx context.Context, set *resource.Set, ls []model.LineItem) error {
	return resource.FillPrices(ctx, set.Items, ls)
}

func init() {
	def[model.Client]{
		name: "clients", title: "Clients", level: guard.Authenticated, field: true,
		repo: func(s *resource.Set) *resource.Repo[model.Client] { return s.Clients },
		key:  func(c model.Client) int64 { return c.ID },
		cols: []ui.Column[model.Client]{
			{Title: "ID", Width: 5, Value: func(c model.Client) string { return ui.ID(c.ID) }},
			{Title: "NAME", Width: 24, Value: func(c model.Client) string { return c.Name }},
			{Title: "TYPE", Width: 12, Value: func(c model.Client) string { return string(c.ClientType) }},
			{Title: "PHONE", Width: 14, Value: model.Client.Phone},
			{Title: "EMAIL", Width: 24, Value: model.Client.Email},
		},
		specs: []spec[model.Client]{
			text("Name", func(c model.Client) string { return c.Name }, func(c *model.Client, s string) { c.Name = s }),
			choice("Type", clientTypes, func(c model.Client) string { return string(c.ClientType) }, func(c *model.Client, s string) { c.ClientType = model.ClientType(s) }),
			text("Personal name", func(c model.Client) string { return c.PersonalName }, func(c *model.Client, s string) { c.PersonalName = s }),
			text("Personal phone", func(c model.Client) string { return c.PersonalPhone }, func(c *model.Client, s string) { c.PersonalPhone = s }),
			text("Personal email", func(c model.Client) string { return c.PersonalEmail }, func(c *model.Client, s string) { c.PersonalEmail = s }),
			text("Company name", func(c model.Client) string { return c.CompanyName }, func(c *model.Client, s string) { c.CompanyName = s }),
			text("Business number", func(c model.Client) string { return c.BusinessNumber }, func(c *model.Client, s string) { c.BusinessNumber = s }),
			text("Representative", func(c model.Client) string { return c.RepresentativeName }, func(c *model.Client, s string) { c.RepresentativeName = s }),
			text("Company phone", func(c model.Client) string { return c.CompanyPhone }, func(c *model.Client, s string) { c.CompanyPhone = s }),
			text("Company email", func(c model.Client) string { return c.CompanyEmail }, func(c *model.Client, s string) { c.CompanyEmail = s }),
			text("Address", func(c model.Client) string { return c.Address }, func(c *model.Client, s string) { c.Address = s }),
			text("Notes", func(c model.Client) string { return c.Notes }, func(c *model.Client, s string) { c.Notes = s }),
		},
		defaults: func() model.Client { return model.Client{ClientType: model.ClientIndividual} },
	}.register()

	def[model.Item]{
		name: "items", title: "Items", level: guard.Admin,
		repo: func(s *resource.Set) *resource.Repo[model.Item] { return s.Items },
		key:  func(i model.Item) int64 { return i.ID },
		cols: []ui.Column[model.Item]{
			{Title: "ID", Width: 5, Value: func(i model.Item) string { return ui.ID(i.ID) }},
			{Title: "CODE", Width: 10, Value: func(i model.Item) string { return i.Code }},
			{Title: "NAME", Width: 24, Value: func(i model.Item) string { return i.Name }},
			{Title: "PRICE", Width: 12, Value: func(i model.Item) string { return ui.Money(i.UnitPrice) }},
			{Title: "UNIT", Width: 6, Value: func(i model.Item) string { return i.Unit }},
			{Title: "ACTIVE", Width: 6, Value: func(i model.Item) string { return yesNo(i.IsActive) }},
		},
		specs: []spec[model.Item]{
			text("Code", func(i model.Item) string { return i.Code }, func(i *model.Item, s string) { i.Code = s }),
			text("Name", func(i model.Item) string { return i.Name }, func(i *model.Item, s string) { i.Name = s }),
			text("Description", func(i model.Item) string { return i.Description }, func(i *model.Item, s string) { i.Description = s }),
			price("Unit price", func(i model.Item) float64 { return i.UnitPrice }, func(i *model.Item, f float64) { i.UnitPrice = f }),
			text("Unit", func(i model.Item) string { return i.Unit }, func(i *model.Item, s string) { i.Unit = s }),
			yesno("Active", func(i model.Item) bool { return i.IsActive }, func(i *model.Item, b bool) { i.IsActive = b }),
		},
		defaults: func() model.Item { return model.Item{IsActive: true} },
	}.register()

	def[model.Consultation]{
		name: "consultations", title: "Consultations", level: guard.Authenticated, field: true,
		repo: func(s *resource.Set) *resource.Repo[model.Consultation] { return s.Consultations },
		key:  func(c model.Consultation) int64 { return c.ID },
		cols: []ui.Column[model.Consultation]{
			{Title: "ID", Width: 5, Value: func(c model.Consultation) string { return ui.ID(c.ID) }},
			{Title: "DATE", Width: 10, Value: func(c model.Consultation) string { return ui.Date(c.ConsultationDate) }},
			{Title: "CLIENT", Width: 20, Value: func(c model.Consultation) string { return refLabel(c.Client) }},
			{Title: "SALES", Width: 14, Value: func(c model.Consultation) string { return refLabel(c.Salesperson) }},
			{Title: "CONTENT", Width: 36, Value: func(c model.Consultation) string { return c.Content }},
		},
		specs: []spec[model.Consultation]{
			ref("Client ID", func(c model.Consultation) int64 { return c.ClientID }, func(c *model.Consultation, n int64) { c.ClientID = n }),
			text("Date", func(c model.Consultation) string { return c.ConsultationDate }, func(c *model.Consultation, s string) { c.ConsultationDate = s }),
			text("Content", func(c model.Consultation) string { return c.Content }, func(c *model.Consultation, s string) { c.Content = s }),
			text("Notes", func(c model.Consultation) string { return c.Notes }, func(c *model.Consultation, s string) { c.Notes = s }),
		},
	}.register()

	def[model.Quotation]{
		name: "quotations", title: "Quotations", level: guard.Authenticated, field: true, statuses: quoteStates,
		repo: func(s *resource.Set) *resource.Repo[model.Quotation] { return s.Quotations },
		key:  func(q model.Quotation) int64 { return q.ID },
		cols: []ui.Column[model.Quotation]{
			{Title: "ID", Width: 5, Value: func(q model.Quotation) string { return ui.ID(q.ID) }},
			{Title: "NUMBER", Width: 14, Value: func(q model.Quotation) string { return q.QuotationNumber }},
			{Title: "CLIENT", Width: 20, Value: func(q model.Quotation) string { return refLabel(q.Client) }},
			{Title: "STATUS", Width: 12, Value: func(q model.Quotation) string { return ui.Status(q.Status) }},
			{Title: "TOTAL", Width: 14, Value: func(q model.Quotation) string { return ui.Money(q.TotalAmount) }},
			{Title: "VALID UNTIL", Width: 11, Value: func(q model.Quotation) string { return ui.Date(q.ValidUntil) }},
		},
		specs: []spec[model.Quotation]{
			text("Number", func(q model.Quotation) string { return q.QuotationNumber }, func(q *model.Quotation, s string) { q.QuotationNumber = s }),
			ref("Client ID", func(q model.Quotation) int64 { return q.ClientID }, func(q *model.Quotation, n int64) { q.ClientID = n }),
			optID("Consultation ID", func(q model.Quotation) *int64 { return q.ConsultationID }, func(q *model.Quotation, p *int64) { q.ConsultationID = p }),
			choice("Status", quoteStates, func(q model.Quotation) string { return q.Status }, func(q *model.Quotation, s string) { q.Status = s }),
			text("Valid until", func(q model.Quotation) string { return q.ValidUntil }, func(q *model.Quotation, s string) { q.ValidUntil = s }),
			lines("Items", func(q model.Quotation) []model.LineItem { return q.Items }, func(q *model.Quotation, ls []model.LineItem) { q.Items = ls }),
			text("Notes", func(q model.Quotation) string { return q.Notes }, func(q *model.Quotation, s string) { q.Notes = s }),
		},
		defaults: func() model.Quotation { return model.Quotation{Status: model.QuotationDraft} },
		prepare: func(ctx context.Context, set *resource.Set, q *model.Quotation) error {
			return fillLinePrices(ctx, set, q.Items)
		},
	}.register()

	def[model.Contract]{
		name: "contracts", title: "Contracts", level: guard.Authenticated, field: true, statuses: contractSts,
		repo: func(s *resource.Set) *resource.Repo[model.Contract] { return s.Contracts },
		key:  func(c model.Contract) int64 { return c.ID },
		cols: []ui.Column[model.Contract]{
			{Title: "ID", Width: 5, Value: func(c model.Contract) string { return ui.ID(c.ID) }},
			{Title: "NUMBER", Width: 14, Value: func(c model.Contract) string { return c.ContractNumber }},
			{Title: "CLIENT", Width: 20, Value: func(c model.Contract) string { return refLabel(c.Client) }},
			{Title: "STATUS", Width: 14, Value: func(c model.Contract) string { return ui.Status(c.Status) }},
			{Title: "DATE", Width: 10, Value: func(c model.Contract) string { return ui.Date(c.ContractDate) }},
			{Title: "TOTAL", Width: 14, Value: func(c model.Contract) string { return ui.Money(c.TotalAmount) }},
		},
		specs: []spec[model.Contract]{
			text("Number", func(c model.Contract) string { return c.ContractNumber }, func(c *model.Contract, s string) { c.ContractNumber = s }),
			ref("Client ID", func(c model.Contract) int64 { return c.ClientID }, func(c *model.Contract, n int64) { c.ClientID = n }),
			optID("Quotation ID", func(c model.Contract) *int64 { return c.QuotationID }, func(c *model.Contract, p *int64) { c.QuotationID = p }),
			choice("Status", contractSts, func(c model.Contract) string { return c.Status }, func(c *model.Contract, s string) { c.Status = s }),
			text("Contract date", func(c model.Contract) string { return c.ContractDate }, func(c *model.Contract, s string) { c.ContractDate = s }),
			lines("Items", func(c model.Contract) []model.LineItem { return c.Items }, func(c *model.Contract, ls []model.LineItem) { c.Items = ls }),
			text("Notes", func(c model.Contract) string { return c.Notes }, func(c *model.Contract, s string) { c.Notes = s }),
		},
		defaults: func() model.Contract { return model.Contract{Status: model.ContractDraft} },
		prepare: func(ctx context.Context, set *resource.Set, c *model.Contract) error {
			return fillLinePrices(ctx, set, c.Items)
		},
	}.register()

	def[model.Installation]{
		name: "installations", title: "Installations & AS", level: guard.Authenticated, statuses: jobStatuses,
		repo: func(s *resource.Set) *resource.Repo[model.Installation] { return s.Installations.Repo },
		key:  func(i model.Installation) int64 { return i.ID },
		cols: InstallationColumns,
		specs: []spec[model.Installation]{
			ref("Contract ID", func(i model.Installation) int64 { return i.ContractID }, func(i *model.Installation, n int64) { i.ContractID = n }),
			ref("Client ID", func(i model.Installation) int64 { return i.ClientID }, func(i *model.Installation, n int64) { i.ClientID = n }),
			ref("Technician ID", func(i model.Installation) int64 { return i.TechnicianID }, func(i *model.Installation, n int64) { i.TechnicianID = n }),
			choice("Type", jobTypes, func(i model.Installation) string { return i.InstallationType }, func(i *model.Installation, s string) { i.InstallationType = s }),
			choice("Status", jobStatuses, func(i model.Installation) string { return i.Status }, func(i *model.Installation, s string) { i.Status = s }),
			text("Scheduled", func(i model.Installation) string { return i.ScheduledDate }, func(i *model.Installation, s string) { i.ScheduledDate = s }),
			text("Notes", func(i model.Installation) string { return i.Notes }, func(i *model.Installation, s string) { i.Notes = s }),
		},
		defaults: func() model.Installation {
			return model.Installation{InstallationType: model.JobInstallation, Status: model.JobPending}
		},
	}.register()

	def[model.Inventory]{
		name: "inventory", title: "Inventory", level: guard.Admin,
		repo: func(s *resource.Set) *resource.Repo[model.Inventory] { return s.Inventory },
		key:  func(i model.Inventory) int64 { return i.ID },
		cols: []ui.Column[model.Inventory]{
			{Title: "ID", Width: 5, Value: func(i model.Inventory) string { return ui.ID(i.ID) }},
			{Title: "ITEM", Width: 24, Value: func(i model.Inventory) string { return refLabel(i.Item) }},
			{Title: "QTY", Width: 6, Value: func(i model.Inventory) string { return ui.ID(int64(i.Quantity)) }},
			{Title: "MIN", Width: 6, Value: func(i model.Inventory) string { return ui.ID(int64(i.MinStockLevel)) }},
			{Title: "LOCATION", Width: 14, Value: func(i model.Inventory) string { return i.Location }},
			{Title: "", Width: 9, Value: func(i model.Inventory) string {
				if i.LowStock() {
					return ui.C(ui.Current().Error, "low stock")
				}
				return ""
			}},
		},
		specs: []spec[model.Inventory]{
			ref("Item ID", func(i model.Inventory) int64 { return i.ItemID }, func(i *model.Inventory, n int64) { i.ItemID = n }),
			integer("Quantity", func(i model.Inventory) int { return i.Quantity }, func(i *model.Inventory, n int) { i.Quantity = n }),
			integer("Min stock", func(i model.Inventory) int { return i.MinStockLevel }, func(i *model.Inventory, n int) { i.MinStockLevel = n }),
			text("Location", func(i model.Inventory) string { return i.Location }, func(i *model.Inventory, s string) { i.Location = s }),
			text("Notes", func(i model.Inventory) string { return i.Notes }, func(i *model.Inventory, s string) { i.Notes = s }),
		},
	}.register()

	accountSpecs := []spec[model.Account]{
		text("Username", func(a model.Account) string { return a.Username }, func(a *model.Account, s string) { a.Username = s }),
		text("Full name", func(a model.Account) string { return a.FullName }, func(a *model.Account, s string) { a.FullName = s }),
		text("Email", func(a model.Account) string { return a.Email }, func(a *model.Account, s string) { a.Email = s }),
		text("Phone", func(a model.Account) string { return a.Phone }, func(a *model.Account, s string) { a.Phone = s }),
		choice("Role", roles, func(a model.Account) string { return a.Role }, func(a *model.Account, s string) { a.Role = s }),
		secret("Password", func(a *model.Account, s string) { a.Password = s }),
		yesno("Active", func(a model.Account) bool { return a.IsActive }, func(a *model.Account, b bool) { a.IsActive = b }),
	}
	accountCols := []ui.Column[model.Account]{
		{Title: "ID", Width: 5, Value: func(a model.Account) string { return ui.ID(a.ID) }},
		{Title: "USERNAME", Width: 14, Value: func(a model.Account) string { return a.Username }},
		{Title: "NAME", Width: 16, Value: func(a model.Account) string { return a.FullName }},
		{Title: "ROLE", Width: 12, Value: func(a model.Account) string { return a.Role }},
		{Title: "EMAIL", Width: 24, Value: func(a model.Account) string { return a.Email }},
		{Title: "ACTIVE", Width: 6, Value: func(a model.Account) string { return yesNo(a.IsActive) }},
	}

	def[model.Account]{
		name: "employees", title: "Employees", level: guard.Admin,
		statuses: []string{model.RoleSales, model.RoleTechnician},
		statusOf: func(a model.Account) string { return a.Role },
		repo:     func(s *resource.Set) *resource.Repo[model.Account] { return s.Employees },
		key:      func(a model.Account) int64 { return a.ID },
		cols:     accountCols,
		specs:    accountSpecs,
		defaults: func() model.Account { return model.Account{Role: model.RoleSales, IsActive: true} },
	}.register()

	def[model.Account]{
		name: "admin/accounts", title: "Admin accounts", level: guard.SuperAdmin,
		repo:  func(s *resource.Set) *resource.Repo[model.Account] { return s.Accounts },
		key:   func(a model.Account) int64 { return a.ID },
		cols:  accountCols,
		specs: accountSpecs,
		defaults: func() model.Account {
			return model.Account{Role: model.RoleAdmin, IsActive: true, IsAdmin: true}
		},
		prepare: func(_ context.Context, _ *resource.Set, a *model.Account) error {
			a.IsAdmin = a.Role == model.RoleAdmin || a.Role == model.RoleSuperAdmin
			a.IsSuperAdmin = a.Role == model.RoleSuperAdmin
			return nil
		},
	}.register()
}

// InstallationColumns are shared with the technician job list.
var InstallationColumns = []ui.Column[model.Installation]{
	{Title: "ID", Width: 5, Value: func(i model.Installation) string { return ui.ID(i.ID) }},
	{Title: "TYPE", Width: 12, Value: func(i model.Installation) string { return i.InstallationType }},
	{Title: "CLIENT", Width: 20, Value: func(i model.Installation) string { return refLabel(i.Client) }},
	{Title: "STATUS", Width: 14, Value: func(i model.Installation) string { return ui.Status(i.Status) }},
	{Title: "SCHEDULED", Width: 10, Value: func(i model.Installation) string { return ui.Date(i.ScheduledDate) }},
	{Title: "TECHNICIAN", Width: 14, Value: func(i model.Installation) string { return refLabel(i.Technician) }},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
