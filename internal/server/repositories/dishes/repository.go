// Package dishes provides storage for the restaurant menu.
package dishes

import (
	"context"

	"github.com/dmitrijs2005/tabliya/internal/server/models"
)

// Repository defines menu CRUD. Lookups by an unknown id return
// common.ErrorNotFound.
type Repository interface {
	List(ctx context.Context) ([]*models.Dish, error)
	GetByID(ctx context.Context, id string) (*models.Dish, error)
	Create(ctx context.Context, d *models.Dish) (*models.Dish, error)
	Update(ctx context.Context, d *models.Dish) (*models.Dish, error)
	Delete(ctx context.Context, id string) (*models.Dish, error)
}
