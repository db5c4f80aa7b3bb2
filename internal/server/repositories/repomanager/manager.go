package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/tabliya/internal/dbx"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/dishes"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/tables"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so that services can
// run several of them inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Dishes(db dbx.DBTX) dishes.Repository
	Tables(db dbx.DBTX) tables.Repository
}
