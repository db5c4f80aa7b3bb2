package dishes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/dbx"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDish(row scanner) (*models.Dish, error) {
	d := &models.Dish{}
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Price, &d.Category, &d.Image, &d.Available, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Dish, error) {
	query := `
		SELECT id, name, description, price, category, image, available, created_at, updated_at
		FROM dishes
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Dish, 0)
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Dish, error) {
	query := `
		SELECT id, name, description, price, category, image, available, created_at, updated_at
		FROM dishes
		WHERE id = $1
	`
	return one(scanDish(r.db.QueryRowContext(ctx, query, id)))
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.Dish) (*models.Dish, error) {
	query := `
		INSERT INTO dishes (name, description, price, category, image, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, price, category, image, available, created_at, updated_at
	`
	return one(scanDish(r.db.QueryRowContext(ctx, query,
		d.Name, d.Description, d.Price, d.Category, d.Image, d.Available)))
}

func (r *PostgresRepository) Update(ctx context.Context, d *models.Dish) (*models.Dish, error) {
	query := `
		UPDATE dishes
		SET name = $2, description = $3, price = $4, category = $5, image = $6, available = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, description, price, category, image, available, created_at, updated_at
	`
	return one(scanDish(r.db.QueryRowContext(ctx, query,
		d.ID, d.Name, d.Description, d.Price, d.Category, d.Image, d.Available)))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.Dish, error) {
	query := `
		DELETE FROM dishes
		WHERE id = $1
		RETURNING id, name, description, price, category, image, available, created_at, updated_at
	`
	return one(scanDish(r.db.QueryRowContext(ctx, query, id)))
}

func one(d *models.Dish, err error) (*models.Dish, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}
