package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xAcousticbridge/GAID/internal/util"
)

// Dashboard returns the user's routines and goals, each goal with its progress
// GET /api/v1/me/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard.Load(c.Request.Context())
	if err != nil {
		util.RespondError(c, err)
		return
	}

	goals := make([]gin.H, 0, len(d.Goals))
	for _, g := range d.Goals {
		goals = append(goals, gin.H{"goal": g, "progress": g.Progress()})
	}
	c.JSON(http.StatusOK, gin.H{"routines": d.Routines, "goals": goals})
}

// MyProfile returns the profile page data
// GET /api/v1/me/profile
func (h *Handlers) MyProfile(c *gin.Context) {
	p, err := h.svc.Activity.Profile(c.Request.Context())
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListPrompts returns saved prompts, newest first
// GET /api/v1/prompts
func (h *Handlers) ListPrompts(c *gin.Context) {
	prompts, err := h.svc.Prompts.List(c.Request.Context())
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": prompts, "count": len(prompts)})
}

// SavePrompt stores a prompt
// POST /api/v1/prompts
func (h *Handlers) SavePrompt(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if !util.BindJSON(c, &req) {
		return
	}
	p, err := h.svc.Prompts.Save(c.Request.Context(), req.Content)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}
