// Package httpapi exposes the task manager over HTTP/JSON using gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	servermodels "github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/dmitrijs2005/gophtasks/internal/view"
	"github.com/gin-gonic/gin"
)

// ServiceName identifies the server in health responses.
const ServiceName = "gophtasks"

type TaskService interface {
	View(ctx context.Context, ownerID string, q view.Query) ([]models.Task, error)
	Stats(ctx context.Context, ownerID string) (view.Stats, error)
	Create(ctx context.Context, ownerID string, in models.NewTask) (*models.Task, error)
	Update(ctx context.Context, ownerID, taskID string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*models.Task, error)
}

type UserService interface {
	Register(ctx context.Context, username string, password []byte) (*servermodels.User, error)
	Login(ctx context.Context, username string, password []byte) (*services.LoginResult, error)
}

type Server struct {
	address         string
	logger          logging.Logger
	tasks           TaskService
	users           UserService
	credentials     auth.CredentialService
	db              Pinger
	schemas         bodySchemas
	shutdownTimeout time.Duration
	engine          *gin.Engine
}

func NewServer(address string, l logging.Logger, ts TaskService, us UserService,
	creds auth.CredentialService, db Pinger, shutdownTimeout time.Duration) (*Server, error) {

	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:         address,
		logger:          l.With("module", "http_server"),
		tasks:           ts,
		users:           us,
		credentials:     creds,
		db:              db,
		schemas:         schemas,
		shutdownTimeout: shutdownTimeout,
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(s.requestID, s.accessLog, s.recovery())

	// Canonical routes live under /api; the same handlers are mounted at the
	// root for older clients.
	s.registerRoutes(router.Group("/api"))
	s.registerRoutes(router.Group("/"))

	router.NoRoute(func(c *gin.Context) {
		abort(c, newAPIError(http.StatusNotFound, "Not found"))
	})
	return router
}

func (s *Server) registerRoutes(r *gin.RouterGroup) {
	r.GET("/health", s.handleHealth)
	r.POST("/register", s.handleRegister)
	r.POST("/login", s.handleLogin)

	tasks := r.Group("/tasks", s.authenticate)
	tasks.GET("", s.handleListTasks)
	tasks.POST("", s.handleCreateTask)
	tasks.GET("/stats", s.handleTaskStats)
	tasks.PUT("/:id", s.handleUpdateTask)
	tasks.DELETE("/:id", s.handleDeleteTask)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}
