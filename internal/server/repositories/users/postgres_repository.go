package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/dbx"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
)

const userColumns = `id, name, email, password_hash, role, is_verified,
		       verification_token, verified_at, password_token, password_token_expires_at,
		       created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, verification_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.Role, nullString(u.VerificationToken),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return nil, &common.DuplicateKeyError{Field: "email"}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET name = $2, password_hash = $3, role = $4, is_verified = $5,
		    verification_token = $6, verified_at = $7,
		    password_token = $8, password_token_expires_at = $9,
		    updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.PasswordHash, u.Role, u.IsVerified,
		nullString(u.VerificationToken), u.VerifiedAt,
		nullString(u.PasswordToken), u.PasswordTokenExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func (r *PostgresRepository) SetRole(ctx context.Context, email string, role models.Role) error {
	query := `
		UPDATE users
		SET role = $2, updated_at = now()
		WHERE email = $1
	`
	res, err := r.db.ExecContext(ctx, query, email, role)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u                 models.User
		verificationToken sql.NullString
		verifiedAt        sql.NullTime
		passwordToken     sql.NullString
		passwordExpires   sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsVerified,
		&verificationToken, &verifiedAt, &passwordToken, &passwordExpires,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.VerificationToken = verificationToken.String
	u.PasswordToken = passwordToken.String
	if verifiedAt.Valid {
		u.VerifiedAt = &verifiedAt.Time
	}
	if passwordExpires.Valid {
		u.PasswordTokenExpiresAt = &passwordExpires.Time
	}
	return &u, nil
}

// nullString stores empty tokens as NULL so cleared fields read back empty.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
