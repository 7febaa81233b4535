package httpapi

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userIDCtxKey    = "user_id"
	requestIDCtxKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

// requestID tags every request with an id, reusing the caller's if present.
func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(requestIDCtxKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	s.logger.Info(ctxOf(c), "http request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"request_id", c.GetString(requestIDCtxKey),
	)
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		s.logger.Error(ctxOf(c), "panic recovered", "panic", rec, "path", c.Request.URL.Path)
		abort(c, newAPIError(http.StatusInternalServerError, "Internal server error"))
	})
}

// authenticate resolves the bearer token to an owner id and stores it in
// the gin context. Missing or malformed headers and bad tokens get 401.
func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader(common.AuthorizationHeaderName)
	if header == "" {
		abort(c, toAPIError(common.ErrorUnauthenticated))
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) || strings.TrimSpace(parts[1]) == "" {
		abort(c, toAPIError(common.ErrorUnauthenticated))
		return
	}

	userID, err := s.credentials.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		s.logger.Debug(ctxOf(c), "token rejected", "error", err)
		abort(c, toAPIError(err))
		return
	}

	c.Set(userIDCtxKey, userID)
	c.Next()
}

func ownerID(c *gin.Context) string {
	return c.GetString(userIDCtxKey)
}
