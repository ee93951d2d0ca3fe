package api

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"gamelounge-backend/internal/fault"
	"gamelounge-backend/internal/session"
	"gamelounge-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	manager *session.Manager
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, m *session.Manager, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		manager: m,
		webpush: webpushOptions,
	}
}

// abortWithFault translates a fault kind into an HTTP status. Unclassified
// errors are internal.
func abortWithFault(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if kind, ok := fault.KindOf(err); ok {
		switch kind {
		case fault.NotFound:
			status = http.StatusNotFound
		case fault.Conflict:
			status = http.StatusConflict
		case fault.Invalid:
			status = http.StatusBadRequest
		case fault.Timeout:
			status = http.StatusGatewayTimeout
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
