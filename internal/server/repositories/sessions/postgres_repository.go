package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/dbx"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindOrCreate relies on the UNIQUE(user_id) constraint: a concurrent login
// for the same user makes the insert a no-op, and the re-read returns the
// row that won.
func (r *PostgresRepository) FindOrCreate(ctx context.Context, s *models.Session) (*models.Session, error) {
	insert := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, s.UserID, s.RefreshToken, s.UserAgent, s.IP); err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	query := `
		SELECT id, user_id, refresh_token, user_agent, ip, is_valid, created_at, updated_at
		FROM sessions
		WHERE user_id = $1
	`
	return r.getOne(ctx, query, s.UserID)
}

func (r *PostgresRepository) GetByUserAndToken(ctx context.Context, userID, refreshToken string) (*models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip, is_valid, created_at, updated_at
		FROM sessions
		WHERE user_id = $1 AND refresh_token = $2
	`
	return r.getOne(ctx, query, userID, refreshToken)
}

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Invalidate(ctx context.Context, userID string) error {
	query := `
		UPDATE sessions
		SET is_valid = FALSE, updated_at = now()
		WHERE user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Session, error) {
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.ID, &s.UserID, &s.RefreshToken, &s.UserAgent, &s.IP, &s.IsValid, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
