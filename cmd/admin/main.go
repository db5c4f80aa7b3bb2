package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/tabliya/internal/admin"
	"github.com/dmitrijs2005/tabliya/internal/server/config"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/repomanager"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	os.Exit(run())
}

func run() int {
	defaults := &config.Config{}
	defaults.LoadDefaults()

	fs := flag.NewFlagSet("tabliya-admin", flag.ExitOnError)
	dsn := fs.String("d", defaults.DatabaseDSN, "database DSN")
	_ = fs.Parse(os.Args[1:])

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Printf("db init error: %v", err)
		return 1
	}
	defer db.Close()

	app := admin.NewApp(db, repomanager.NewPostgresRepositoryManager(), os.Stdout)
	if err := app.Run(context.Background(), fs.Args()); err != nil {
		if errors.Is(err, admin.ErrUsage) {
			return 2
		}
		log.Printf("%v", err)
		return 1
	}
	return 0
}
