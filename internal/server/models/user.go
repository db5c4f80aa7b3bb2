package models

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWaiter   Role = "waiter"
	RoleChef     Role = "chef"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleWaiter, RoleChef, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User is a persisted identity. PasswordHash is always a bcrypt hash.
// PasswordToken holds the SHA-256 of an outstanding reset token.
type User struct {
	ID                     string
	Name                   string
	Email                  string
	PasswordHash           string
	Role                   Role
	IsVerified             bool
	VerificationToken      string
	VerifiedAt             *time.Time
	PasswordToken          string
	PasswordTokenExpiresAt *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Principal is the minimal identity projection embedded in tokens.
type Principal struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// NewPrincipal projects u onto the token user.
func NewPrincipal(u *User) Principal {
	return Principal{Name: u.Name, UserID: u.ID, Role: u.Role}
}
