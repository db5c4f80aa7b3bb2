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

const MsgTableNotFound = "Table not found"

// TablePatch lists the fields of a partial update. Nil fields are kept.
type TablePatch struct {
	Number   *int
	Capacity *int
	Location *models.TableLocation
	Status   *models.TableStatus
	Notes    *string
}

type TableService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTableService(db *sql.DB, m repomanager.RepositoryManager) *TableService {
	return &TableService{db: db, repomanager: m}
}

func (s *TableService) List(ctx context.Context) ([]*models.Table, error) {
	return s.repomanager.Tables(s.db).List(ctx)
}

func (s *TableService) Get(ctx context.Context, id string) (*models.Table, error) {
	t, err := s.repomanager.Tables(s.db).GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NotFound(MsgTableNotFound)
	}
	return t, err
}

func (s *TableService) Create(ctx context.Context, t *models.Table) (*models.Table, error) {
	if t.Location == "" {
		t.Location = models.LocationIndoor
	}
	if t.Status == "" {
		t.Status = models.StatusAvailable
	}
	created, err := s.repomanager.Tables(s.db).Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("error creating table: %w", err)
	}
	return created, nil
}

func (s *TableService) Update(ctx context.Context, id string, p TablePatch) (*models.Table, error) {
	var updated *models.Table
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tables(tx)
		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		p.apply(t)
		updated, err = repo.Update(ctx, t)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(MsgTableNotFound)
		}
		return nil, fmt.Errorf("error updating table: %w", err)
	}
	return updated, nil
}

func (s *TableService) Delete(ctx context.Context, id string) (*models.Table, error) {
	t, err := s.repomanager.Tables(s.db).Delete(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.NotFound(MsgTableNotFound)
	}
	return t, err
}

func (p TablePatch) apply(t *models.Table) {
	if p.Number != nil {
		t.Number = *p.Number
	}
	if p.Capacity != nil {
		t.Capacity = *p.Capacity
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
}
