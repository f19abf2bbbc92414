package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0xAcousticbridge/GAID/internal/util"
	"github.com/0xAcousticbridge/GAID/pkg/service"
	"github.com/0xAcousticbridge/GAID/pkg/store"
)

// Health reports liveness and whether a user is signed in
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"version":    h.version,
		"uptime_sec": int(time.Since(h.started).Seconds()),
		"signed_in":  h.store.State().User != nil,
	})
}

// GetState returns a snapshot of the whole store
// GET /api/v1/state
func (h *Handlers) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.State())
}

// GetCategories lists the idea categories
// GET /api/v1/categories
func (h *Handlers) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": service.Categories})
}

// GetSettings returns the local settings
// GET /api/v1/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings.Current())
}

// UpdateSettings merges the given top-level keys into the local settings.
// ?sync=true also writes them to the backend.
// PATCH /api/v1/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var patch store.SettingsPatch
	if !util.BindJSON(c, &patch) {
		return
	}
	if patch.Theme != nil && !patch.Theme.Valid() {
		util.RespondValidationError(c, "theme", "must be light, dark or system")
		return
	}
	if patch.FontSize != nil && !patch.FontSize.Valid() {
		util.RespondValidationError(c, "fontSize", "must be small, medium or large")
		return
	}

	settings, err := h.svc.Settings.Update(c.Request.Context(), patch, c.Query("sync") == "true")
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SyncSettings writes the local settings to the backend
// POST /api/v1/settings/sync
func (h *Handlers) SyncSettings(c *gin.Context) {
	if err := h.svc.Settings.Sync(c.Request.Context()); err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Settings.Current())
}

// GetNotifications returns the notification feed, newest first
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.State().Notifications)
}

// AddNotification pushes a notification into the feed
// POST /api/v1/notifications
func (h *Handlers) AddNotification(c *gin.Context) {
	var req struct {
		Type    string `json:"type" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if !util.BindJSON(c, &req) {
		return
	}
	n := h.store.AddNotification(strings.TrimSpace(req.Type), strings.TrimSpace(req.Message))
	c.JSON(http.StatusCreated, n)
}

// MarkNotificationRead marks one notification read. Unknown ids are ignored.
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	h.store.MarkNotificationAsRead(id)
	c.JSON(http.StatusOK, h.store.State().Notifications)
}
