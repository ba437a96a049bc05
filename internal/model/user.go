package model

// Roles a backend user can hold.
const (
	RoleSales      = "sales"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User is the profile returned by /auth/login and /auth/me.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	IsActive     bool   `json:"is_active"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// Account is an employee or admin account as edited through
// /employees and /admin/accounts. Password is only sent, never returned.
type Account struct {
	ID           int64  `json:"id,omitempty"`
	Username     string `json:"username" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	FullName     string `json:"full_name" validate:"required"`
	Phone        string `json:"phone"`
	Role         string `json:"role" validate:"required,oneof=sales technician admin super_admin"`
	Password     string `json:"password,omitempty"`
	IsActive     bool   `json:"is_active"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	CreatedAt    string `json:"created_at,omitempty"`
}
