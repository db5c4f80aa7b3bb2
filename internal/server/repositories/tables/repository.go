// Package tables provides storage for restaurant tables.
package tables

import (
	"context"

	"github.com/dmitrijs2005/tabliya/internal/server/models"
)

// Repository defines table CRUD. A duplicate table number surfaces as
// *common.DuplicateKeyError.
type Repository interface {
	List(ctx context.Context) ([]*models.Table, error)
	GetByID(ctx context.Context, id string) (*models.Table, error)
	Create(ctx context.Context, t *models.Table) (*models.Table, error)
	Update(ctx context.Context, t *models.Table) (*models.Table, error)
	Delete(ctx context.Context, id string) (*models.Table, error)
}
