package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xAcousticbridge/GAID/internal/util"
	"github.com/0xAcousticbridge/GAID/pkg/service"
)

func (h *Handlers) onboardingStatus() gin.H {
	status := h.svc.Onboarding.Status()
	return gin.H{
		"step":      status.Step,
		"name":      h.svc.Onboarding.Current(),
		"completed": status.Completed,
		"steps":     service.OnboardingSteps,
	}
}

// GetOnboarding returns the onboarding progress
// GET /api/v1/onboarding
func (h *Handlers) GetOnboarding(c *gin.Context) {
	c.JSON(http.StatusOK, h.onboardingStatus())
}

// GetOnboardingOptions returns the choices each step offers and the starting values
// GET /api/v1/onboarding/options
func (h *Handlers) GetOnboardingOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"productive_periods":     service.ProductivePeriods,
		"goals":                  service.GoalOptions,
		"suggestion_frequencies": service.SuggestionFrequencies,
		"categories":             service.AssistCategories,
		"defaults":               service.DefaultPreferences(),
	})
}

// NextOnboardingStep validates the current step and advances
// POST /api/v1/onboarding/next
func (h *Handlers) NextOnboardingStep(c *gin.Context) {
	var prefs service.Preferences
	if !util.BindJSON(c, &prefs) {
		return
	}
	if _, err := h.svc.Onboarding.Next(prefs); err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.onboardingStatus())
}

// PreviousOnboardingStep moves back one step
// POST /api/v1/onboarding/back
func (h *Handlers) PreviousOnboardingStep(c *gin.Context) {
	h.svc.Onboarding.Back()
	c.JSON(http.StatusOK, h.onboardingStatus())
}

// CompleteOnboarding saves the preferences and finishes the flow
// POST /api/v1/onboarding/complete
func (h *Handlers) CompleteOnboarding(c *gin.Context) {
	var prefs service.Preferences
	if !util.BindJSON(c, &prefs) {
		return
	}
	if err := h.svc.Onboarding.Complete(c.Request.Context(), prefs); err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.onboardingStatus())
}

// GetSavedPreferences returns the stored preferences
// GET /api/v1/onboarding/preferences
func (h *Handlers) GetSavedPreferences(c *gin.Context) {
	prefs, found, err := h.svc.Onboarding.Saved(c.Request.Context())
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if !found {
		util.RespondNotFound(c, "preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}
