package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/dbx"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/repomanager"
)

// DishPatch lists the fields of a partial update. Nil fields are kept.
type DishPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *models.DishCategory
	Image       *string
	Available   *bool
}

type DishService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      ImageStore
}

func NewDishService(db *sql.DB, m repomanager.RepositoryManager, images ImageStore) *DishService {
	return &DishService{db: db, repomanager: m, images: images}
}

func dishNotFound(id string) error {
	return common.NotFound(fmt.Sprintf("There is no item with this id: %s", id))
}

func (s *DishService) List(ctx context.Context) ([]*models.Dish, error) {
	return s.repomanager.Dishes(s.db).List(ctx)
}

func (s *DishService) Get(ctx context.Context, id string) (*models.Dish, error) {
	d, err := s.repomanager.Dishes(s.db).GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, dishNotFound(id)
	}
	return d, err
}

// Create stores d. When img is set it is uploaded first and its URL
// replaces d.Image.
func (s *DishService) Create(ctx context.Context, d *models.Dish, img *Image) (*models.Dish, error) {
	if d.Category == "" {
		d.Category = models.CategoryMain
	}
	if img != nil {
		url, err := s.images.Upload(ctx, img)
		if err != nil {
			return nil, err
		}
		d.Image = url
	}
	created, err := s.repomanager.Dishes(s.db).Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("error creating dish: %w", err)
	}
	return created, nil
}

func (s *DishService) Update(ctx context.Context, id string, p DishPatch) (*models.Dish, error) {
	var updated *models.Dish
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Dishes(tx)
		d, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		p.apply(d)
		updated, err = repo.Update(ctx, d)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, dishNotFound(id)
		}
		return nil, fmt.Errorf("error updating dish: %w", err)
	}
	return updated, nil
}

func (s *DishService) Delete(ctx context.Context, id string) (*models.Dish, error) {
	d, err := s.repomanager.Dishes(s.db).Delete(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, dishNotFound(id)
	}
	return d, err
}

func (p DishPatch) apply(d *models.Dish) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Image != nil {
		d.Image = *p.Image
	}
	if p.Available != nil {
		d.Available = *p.Available
	}
}
