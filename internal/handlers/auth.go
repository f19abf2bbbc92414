package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xAcousticbridge/GAID/internal/util"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login signs in with email and password; the store follows the new session
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req credentialsRequest
	if !util.BindJSON(c, &req) {
		return
	}
	user, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "state": h.store.State()})
}

// SignUp creates an account
// POST /api/v1/auth/signup
func (h *Handlers) SignUp(c *gin.Context) {
	var req credentialsRequest
	if !util.BindJSON(c, &req) {
		return
	}
	res, err := h.svc.Auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":                  res.User,
		"confirmation_required": res.ConfirmationRequired,
	})
}

// Logout signs out and resets the store
// POST /api/v1/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.svc.Auth.Logout(c.Request.Context()); err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.State())
}

// Me returns the signed-in user and profile
// GET /api/v1/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.svc.Auth.Me()
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "profile": h.store.State().Profile})
}
