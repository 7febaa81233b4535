package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/gin-gonic/gin"
)

const msgInvalidRequestBody = "Invalid request body"

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{Code: code, Message: message}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

// toAPIError maps a service error onto its HTTP status and public message.
// Unrecognised errors become an opaque 500.
func toAPIError(err error) apiError {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return newBadRequestError(ve.Error())
	case errors.Is(err, common.ErrorValidation):
		return newBadRequestError(msgInvalidRequestBody)
	case errors.Is(err, common.ErrorUnauthenticated):
		return newUnauthorizedError("Access denied")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return newUnauthorizedError("Invalid or expired token")
	case errors.Is(err, common.ErrorNotFound):
		return newAPIError(http.StatusNotFound, "Task not found")
	case errors.Is(err, common.ErrorForbidden):
		return newAPIError(http.StatusForbidden, "Unauthorized")
	case errors.Is(err, common.ErrorAlreadyExists):
		return newBadRequestError("Username already exists")
	case errors.Is(err, common.ErrorInvalidCredentials):
		return newBadRequestError("Invalid credentials")
	default:
		return newAPIError(http.StatusInternalServerError, "Internal server error")
	}
}

// fail logs err when it is a server fault and aborts with the mapped response.
func fail(c *gin.Context, l logging.Logger, err error) {
	apiErr := toAPIError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		l.Error(ctxOf(c), "request failed", "error", err, "path", c.FullPath())
	}
	abort(c, apiErr)
}

func ctxOf(c *gin.Context) context.Context {
	return c.Request.Context()
}
