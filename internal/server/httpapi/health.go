package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Database  string    `json:"database"`
}

const pingTimeout = 2 * time.Second

// handleHealth always answers 200; database reachability is reported in
// the body.
func (s *Server) handleHealth(c *gin.Context) {
	state := "disconnected"
	if s.db != nil {
		ctx, cancel := context.WithTimeout(ctxOf(c), pingTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err == nil {
			state = "connected"
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   ServiceName,
		Database:  state,
	})
}
