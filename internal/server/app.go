// Package server wires the gophtasks server together: database, migrations,
// services, the HTTP API and the gRPC health endpoint, plus graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/httpapi"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/gophtasks/internal/server/grpc"
)

// Migrator applies and reverts the schema.
type Migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	RollbackMigration(ctx context.Context, db *sql.DB) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	migrator    Migrator
	credentials auth.CredentialService
	tasks       *services.TaskService
	users       *services.UserService
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func NewApp(c *config.Config, out io.Writer) (*App, error) {

	logger := logging.New(out, c.LogLevel, c.LogFormat)

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	creds := auth.NewJWTIssuer(c.SecretKey, c.AccessTokenValidityDuration)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		migrator:    rm,
		credentials: creds,
		tasks:       services.NewTaskService(db, rm),
		users:       services.NewUserService(db, rm, creds),
	}, nil
}

// Migrate brings the schema up to date.
func (app *App) Migrate(ctx context.Context) error {
	app.logger.Info(ctx, "Applying migrations...")
	if err := app.migrator.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}

// Rollback reverts the latest migration.
func (app *App) Rollback(ctx context.Context) error {
	app.logger.Info(ctx, "Rolling back last migration...")
	if err := app.migrator.RollbackMigration(ctx, app.db); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.tasks, app.users,
		app.credentials, app.db, app.config.ShutdownTimeout)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.db, app.config.HealthCheckInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema and serves until ctx is cancelled, a termination
// signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	if err := app.Migrate(ctx); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return nil
}
