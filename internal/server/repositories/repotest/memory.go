// Package repotest provides in-memory repositories for tests of the layers
// above storage. They follow the same error contract as the Postgres
// implementations.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/dbx"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/dishes"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/tables"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/users"
	"github.com/google/uuid"
)

// Manager hands out the same in-memory repositories regardless of the DBTX,
// so transactions are not isolated.
type Manager struct {
	UsersRepo    *Users
	SessionsRepo *Sessions
	DishesRepo   *Dishes
	TablesRepo   *Tables
}

func NewManager() *Manager {
	return &Manager{
		UsersRepo:    &Users{byID: map[string]*models.User{}},
		SessionsRepo: &Sessions{byUser: map[string]*models.Session{}},
		DishesRepo:   &Dishes{byID: map[string]*models.Dish{}},
		TablesRepo:   &Tables{byID: map[string]*models.Table{}},
	}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *Manager) Users(dbx.DBTX) users.Repository            { return m.UsersRepo }
func (m *Manager) Sessions(dbx.DBTX) sessions.Repository      { return m.SessionsRepo }
func (m *Manager) Dishes(dbx.DBTX) dishes.Repository          { return m.DishesRepo }
func (m *Manager) Tables(dbx.DBTX) tables.Repository          { return m.TablesRepo }

type Users struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func (r *Users) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Email == u.Email {
			return nil, &common.DuplicateKeyError{Field: "email"}
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Email == email {
			c := *x
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *x
	return &c, nil
}

func (r *Users) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	c := *u
	c.UpdatedAt = time.Now()
	r.byID[u.ID] = &c
	return nil
}

func (r *Users) SetRole(_ context.Context, email string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Email == email {
			x.Role = role
			return nil
		}
	}
	return common.ErrorNotFound
}

type Sessions struct {
	mu     sync.Mutex
	byUser map[string]*models.Session
}

func (r *Sessions) FindOrCreate(_ context.Context, s *models.Session) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.byUser[s.UserID]; ok {
		c := *x
		return &c, nil
	}
	c := *s
	c.ID = uuid.NewString()
	c.IsValid = true
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.byUser[c.UserID] = &c
	out := c
	return &out, nil
}

func (r *Sessions) GetByUserAndToken(_ context.Context, userID, refreshToken string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byUser[userID]
	if !ok || x.RefreshToken != refreshToken {
		return nil, common.ErrorNotFound
	}
	c := *x
	return &c, nil
}

func (r *Sessions) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

func (r *Sessions) Invalidate(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byUser[userID]
	if !ok {
		return common.ErrorNotFound
	}
	x.IsValid = false
	return nil
}

// Count returns the number of stored sessions.
func (r *Sessions) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

type Dishes struct {
	mu   sync.Mutex
	byID map[string]*models.Dish
}

func (r *Dishes) List(context.Context) ([]*models.Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Dish, 0, len(r.byID))
	for _, x := range r.byID {
		c := *x
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Dishes) GetByID(_ context.Context, id string) (*models.Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *x
	return &c, nil
}

func (r *Dishes) Create(_ context.Context, d *models.Dish) (*models.Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *d
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *Dishes) Update(_ context.Context, d *models.Dish) (*models.Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[d.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	c := *d
	c.UpdatedAt = time.Now()
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *Dishes) Delete(_ context.Context, id string) (*models.Dish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.byID, id)
	return x, nil
}

type Tables struct {
	mu   sync.Mutex
	byID map[string]*models.Table
}

func (r *Tables) List(context.Context) ([]*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Table, 0, len(r.byID))
	for _, x := range r.byID {
		c := *x
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *Tables) GetByID(_ context.Context, id string) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *x
	return &c, nil
}

func (r *Tables) numberTaken(id string, number int) bool {
	for _, x := range r.byID {
		if x.ID != id && x.Number == number {
			return true
		}
	}
	return false
}

func (r *Tables) Create(_ context.Context, t *models.Table) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.numberTaken("", t.Number) {
		return nil, &common.DuplicateKeyError{Field: "number"}
	}
	c := *t
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *Tables) Update(_ context.Context, t *models.Table) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	if r.numberTaken(t.ID, t.Number) {
		return nil, &common.DuplicateKeyError{Field: "number"}
	}
	c := *t
	c.UpdatedAt = time.Now()
	r.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (r *Tables) Delete(_ context.Context, id string) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.byID, id)
	return x, nil
}
