package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/0xAcousticbridge/GAID/internal/metrics"
	"github.com/0xAcousticbridge/GAID/internal/util"
	"github.com/0xAcousticbridge/GAID/pkg/service"
)

const (
	defaultIdeaLimit = 50
	maxIdeaLimit     = 200
)

// ListIdeas returns ideas newest first
// GET /api/v1/ideas?category=&tags=a,b&limit=
func (h *Handlers) ListIdeas(c *gin.Context) {
	ideas, err := h.svc.Ideas.List(c.Request.Context(), service.ListOptions{
		Category: strings.TrimSpace(c.Query("category")),
		Tags:     util.ParseList(c.Query("tags")),
		Limit:    util.ParseLimit(c.Query("limit"), defaultIdeaLimit, maxIdeaLimit),
	})
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ideas, "count": len(ideas)})
}

// GetIdea returns one idea with its author and counters
// GET /api/v1/ideas/:id
func (h *Handlers) GetIdea(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	detail, err := h.svc.Ideas.Get(c.Request.Context(), id)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateIdea shares a new idea
// POST /api/v1/ideas
func (h *Handlers) CreateIdea(c *gin.Context) {
	var in service.IdeaInput
	if !util.BindJSON(c, &in) {
		return
	}
	idea, err := h.svc.Ideas.Create(c.Request.Context(), in)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, idea)
}

// UpdateIdea edits one of the user's own ideas
// PUT /api/v1/ideas/:id
func (h *Handlers) UpdateIdea(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	var in service.IdeaInput
	if !util.BindJSON(c, &in) {
		return
	}
	idea, err := h.svc.Ideas.Update(c.Request.Context(), id, in)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

// MyIdeas returns the signed-in user's ideas, newest first
// GET /api/v1/me/ideas
func (h *Handlers) MyIdeas(c *gin.Context) {
	ideas, err := h.svc.Ideas.Mine(c.Request.Context())
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ideas, "count": len(ideas)})
}

// Search matches idea titles. quick=true returns the top few prefix matches.
// GET /api/v1/search?q=&quick=true
func (h *Handlers) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		util.RespondValidationError(c, "q", "search query is required")
		return
	}

	var (
		ideas []service.IdeaSummary
		err   error
	)
	if c.Query("quick") == "true" {
		ideas, err = h.svc.Ideas.QuickSearch(c.Request.Context(), q)
	} else {
		ideas, err = h.svc.Ideas.Search(c.Request.Context(), q)
	}
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "ideas": ideas, "count": len(ideas)})
}

// SearchStats reports counts and latency of searches served by this process
// GET /api/v1/search/stats
func (h *Handlers) SearchStats(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Searches().Stats())
}
