// Package server wires the Tabliya REST backend together and runs it until
// the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tabliya/internal/logging"
	"github.com/dmitrijs2005/tabliya/internal/server/auth"
	"github.com/dmitrijs2005/tabliya/internal/server/config"
	"github.com/dmitrijs2005/tabliya/internal/server/mailer"
	"github.com/dmitrijs2005/tabliya/internal/server/metrics"
	"github.com/dmitrijs2005/tabliya/internal/server/ratelimit"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tabliya/internal/server/rest"
	"github.com/dmitrijs2005/tabliya/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *rest.HTTPServer
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.Env, os.Stdout)
	ctx := context.Background()

	if !c.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	sender, err := mailer.NewSender(c, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	m, err := mailer.New(sender, c.FrontendOrigin)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		store = ratelimit.NewRedisStore(app.redis)
	}

	codec := auth.NewCodec(c.SecretKey)
	router := rest.NewRouter(rest.Deps{
		Auth:           services.NewAuthService(db, rm, codec, m, logger, c.PasswordResetTokenTTL),
		Dishes:         services.NewDishService(db, rm, services.NewS3ImageStore(c)),
		Tables:         services.NewTableService(db, rm),
		Cookies:        auth.NewCookies(c.SecretKey, !c.IsDevelopment(), c.AccessTokenCookieMaxAge, c.RefreshTokenCookieMaxAge),
		Limiter:        ratelimit.New(store, c.RateLimitMax, c.RateLimitWindow),
		Metrics:        metrics.New(),
		Logger:         logger,
		FrontendOrigin: c.FrontendOrigin,
		Development:    c.IsDevelopment(),
	})
	app.server = rest.NewHTTPServer(c.EndpointAddrHTTP, router, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err)
		cancelFunc()
	}
}

// Run serves requests until ctx is done or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddrHTTP, "env", app.config.Env)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "error closing redis client", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "error closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
