// Package sessions declares the session store contract and its PostgreSQL
// implementation. A session binds one user to one refresh token value.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/tabliya/internal/server/models"
)

// Repository defines operations for creating, validating and revoking sessions.
type Repository interface {
	// FindOrCreate inserts s unless the user already has a session, and
	// returns whichever row is stored. The returned session may therefore
	// carry a different refresh token and validity than s.
	FindOrCreate(ctx context.Context, s *models.Session) (*models.Session, error)

	// GetByUserAndToken returns the session matching both values,
	// or common.ErrorNotFound.
	GetByUserAndToken(ctx context.Context, userID, refreshToken string) (*models.Session, error)

	// DeleteByUser removes the user's session. Deleting nothing is not an error.
	DeleteByUser(ctx context.Context, userID string) error

	// Invalidate marks the user's session as revoked. It returns
	// common.ErrorNotFound when the user has no session.
	Invalidate(ctx context.Context, userID string) error
}
