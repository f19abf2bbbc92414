// Package handlers exposes the client state store and the app services over HTTP
// for UI consumers. The server owns a single store, so every route acts as the
// user currently signed in to it.
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0xAcousticbridge/GAID/internal/errors"
	"github.com/0xAcousticbridge/GAID/internal/middleware"
	"github.com/0xAcousticbridge/GAID/internal/util"
	"github.com/0xAcousticbridge/GAID/pkg/service"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	svc     *service.Services
	store   *store.Store
	version string
	started time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *service.Services, st *store.Store, version string) *Handlers {
	return &Handlers{
		svc:     svc,
		store:   st,
		version: version,
		started: time.Now(),
	}
}

// CurrentUser tags the request with the signed-in user's id, if any
func (h *Handlers) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := h.store.State().User; u != nil {
			c.Set(middleware.UserIDKey, u.ID)
		}
		c.Next()
	}
}

// RequireUser rejects requests while nobody is signed in
func (h *Handlers) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.store.State().User == nil {
			util.RespondWithAPIError(c, errors.Unauthorized("You need to be signed in"))
			return
		}
		c.Next()
	}
}
