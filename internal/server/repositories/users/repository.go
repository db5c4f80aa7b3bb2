// Package users declares the credential store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/tabliya/internal/server/models"
)

// Repository persists user identities. Users are never deleted.
type Repository interface {
	// Create inserts u and fills in its generated ID and timestamps.
	// A duplicate email yields *common.DuplicateKeyError{Field: "email"}.
	Create(ctx context.Context, u *models.User) (*models.User, error)

	// GetByEmail and GetByID return common.ErrorNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Update persists the mutable columns of u: name, password hash, role,
	// verification state and reset-token fields.
	Update(ctx context.Context, u *models.User) error

	// SetRole changes the role of the user with the given email.
	SetRole(ctx context.Context, email string, role models.Role) error
}
