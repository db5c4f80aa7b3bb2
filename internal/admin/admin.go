// Package admin implements the operator commands of the tabliya-admin tool:
// schema migration, role assignment and session revocation.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/repomanager"
)

const usage = `Usage: tabliya-admin [-d dsn] <command> [flags]

Commands:
  migrate                              apply pending database migrations
  set-role -email <e> -role <r>        change the role of a user
  revoke-session -email <e>            invalidate the session of a user
`

var ErrUsage = errors.New("invalid usage")

type App struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	out         io.Writer
}

func NewApp(db *sql.DB, m repomanager.RepositoryManager, out io.Writer) *App {
	return &App{db: db, repomanager: m, out: out}
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		return a.migrate(ctx)
	case "set-role":
		return a.setRole(ctx, rest)
	case "revoke-session":
		return a.revokeSession(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprintf(a.out, "Unknown command: %s\n%s", cmd, usage)
		return ErrUsage
	}
}

func (a *App) migrate(ctx context.Context) error {
	if err := a.repomanager.RunMigrations(ctx, a.db); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) setRole(ctx context.Context, args []string) error {
	fs := a.newFlagSet("set-role")
	email := fs.String("email", "", "user email")
	role := fs.String("role", "", "customer, waiter, chef, manager or admin")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	e := strings.ToLower(strings.TrimSpace(*email))
	r := models.Role(*role)
	if e == "" || !r.Valid() {
		fs.Usage()
		return ErrUsage
	}

	err := a.repomanager.Users(a.db).SetRole(ctx, e, r)
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("no user with email %s", e)
	}
	if err != nil {
		return fmt.Errorf("error setting role: %w", err)
	}
	fmt.Fprintf(a.out, "Role of %s set to %s\n", e, r)
	return nil
}

func (a *App) revokeSession(ctx context.Context, args []string) error {
	fs := a.newFlagSet("revoke-session")
	email := fs.String("email", "", "user email")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		fs.Usage()
		return ErrUsage
	}

	u, err := a.repomanager.Users(a.db).GetByEmail(ctx, e)
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("no user with email %s", e)
	}
	if err != nil {
		return fmt.Errorf("error searching user: %w", err)
	}

	err = a.repomanager.Sessions(a.db).Invalidate(ctx, u.ID)
	if errors.Is(err, common.ErrorNotFound) {
		fmt.Fprintf(a.out, "%s has no session\n", e)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}
	fmt.Fprintf(a.out, "Session of %s revoked\n", e)
	return nil
}
