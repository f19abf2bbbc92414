package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xAcousticbridge/GAID/internal/util"
)

// GetFavorite reports whether the user saved the idea
// GET /api/v1/ideas/:id/favorite
func (h *Handlers) GetFavorite(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	saved, err := h.svc.Favorites.IsFavorite(c.Request.Context(), id)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea_id": id, "favorite": saved})
}

// ToggleFavorite saves or unsaves the idea
// POST /api/v1/ideas/:id/favorite
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	saved, err := h.svc.Favorites.Toggle(c.Request.Context(), id)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea_id": id, "favorite": saved})
}

// MyFavorites lists the saved ideas
// GET /api/v1/me/favorites
func (h *Handlers) MyFavorites(c *gin.Context) {
	ideas, err := h.svc.Favorites.List(c.Request.Context())
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ideas, "count": len(ideas)})
}

// GetMyRating returns the user's rating of the idea, 0 when unrated
// GET /api/v1/ideas/:id/rating
func (h *Handlers) GetMyRating(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	rating, err := h.svc.Ratings.Mine(c.Request.Context(), id)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea_id": id, "rating": rating})
}

// RateIdea sets the user's 1 to 5 rating
// PUT /api/v1/ideas/:id/rating
func (h *Handlers) RateIdea(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	var req struct {
		Rating int `json:"rating"`
	}
	if !util.BindJSON(c, &req) {
		return
	}
	if err := h.svc.Ratings.Rate(c.Request.Context(), id, req.Rating); err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea_id": id, "rating": req.Rating})
}

// ListComments returns an idea's comments, oldest first
// GET /api/v1/ideas/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	comments, err := h.svc.Comments.List(c.Request.Context(), id)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// AddComment posts a comment
// POST /api/v1/ideas/:id/comments
func (h *Handlers) AddComment(c *gin.Context) {
	id, ok := util.IDParam(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !util.BindJSON(c, &req) {
		return
	}
	comment, err := h.svc.Comments.Add(c.Request.Context(), id, req.Content)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
