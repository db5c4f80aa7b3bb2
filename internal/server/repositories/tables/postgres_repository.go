package tables

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/dbx"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
)

const tableColumns = `id, number, capacity, location, status, notes, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTable(row scanner) (*models.Table, error) {
	t := &models.Table{}
	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &t.Location, &t.Status, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Table, error) {
	query := `
		SELECT ` + tableColumns + `
		FROM restaurant_tables
		ORDER BY number
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Table, error) {
	query := `
		SELECT ` + tableColumns + `
		FROM restaurant_tables
		WHERE id = $1
	`
	return one(scanTable(r.db.QueryRowContext(ctx, query, id)))
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Table) (*models.Table, error) {
	query := `
		INSERT INTO restaurant_tables (number, capacity, location, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + tableColumns
	return one(scanTable(r.db.QueryRowContext(ctx, query,
		t.Number, t.Capacity, t.Location, t.Status, t.Notes)))
}

func (r *PostgresRepository) Update(ctx context.Context, t *models.Table) (*models.Table, error) {
	query := `
		UPDATE restaurant_tables
		SET number = $2, capacity = $3, location = $4, status = $5, notes = $6,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + tableColumns
	return one(scanTable(r.db.QueryRowContext(ctx, query,
		t.ID, t.Number, t.Capacity, t.Location, t.Status, t.Notes)))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Table, error) {
	query := `
		DELETE FROM restaurant_tables
		WHERE id = $1
		RETURNING ` + tableColumns
	return one(scanTable(r.db.QueryRowContext(ctx, query, id)))
}

func one(t *models.Table, err error) (*models.Table, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if _, ok := dbx.UniqueViolation(err); ok {
			return nil, &common.DuplicateKeyError{Field: "number"}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
