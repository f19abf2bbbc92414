package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Limits are the rate limiters applied to route groups. Nil entries are skipped.
type Limits struct {
	Auth   gin.HandlerFunc
	Write  gin.HandlerFunc
	Search gin.HandlerFunc
}

func use(group gin.IRoutes, mw gin.HandlerFunc) {
	if mw != nil {
		group.Use(mw)
	}
}

// SetupRoutes registers every route on r
func SetupRoutes(r *gin.Engine, h *Handlers, limits Limits) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(h.CurrentUser())
	{
		api.GET("/state", h.GetState)
		api.GET("/categories", h.GetCategories)

		settings := api.Group("/settings")
		{
			settings.GET("", h.GetSettings)
			settings.PATCH("", h.UpdateSettings)
			settings.POST("/sync", h.RequireUser(), h.SyncSettings)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.GetNotifications)
			notifications.POST("", h.AddNotification)
			notifications.POST("/:id/read", h.MarkNotificationRead)
		}

		authGroup := api.Group("/auth")
		{
			authGroup.GET("/me", h.RequireUser(), h.Me)
			authGroup.POST("/logout", h.Logout)
			credentials := authGroup.Group("")
			use(credentials, limits.Auth)
			credentials.POST("/login", h.Login)
			credentials.POST("/signup", h.SignUp)
		}

		onboarding := api.Group("/onboarding")
		{
			onboarding.GET("", h.GetOnboarding)
			onboarding.GET("/options", h.GetOnboardingOptions)
			onboarding.POST("/next", h.NextOnboardingStep)
			onboarding.POST("/back", h.PreviousOnboardingStep)
			onboarding.POST("/complete", h.RequireUser(), h.CompleteOnboarding)
			onboarding.GET("/preferences", h.RequireUser(), h.GetSavedPreferences)
		}

		ideas := api.Group("/ideas")
		{
			ideas.GET("", h.ListIdeas)
			ideas.GET("/:id", h.GetIdea)
			ideas.GET("/:id/comments", h.ListComments)

			signedIn := ideas.Group("", h.RequireUser())
			signedIn.GET("/:id/favorite", h.GetFavorite)
			signedIn.GET("/:id/rating", h.GetMyRating)
			signedIn.PUT("/:id", h.UpdateIdea)
			signedIn.POST("/:id/favorite", h.ToggleFavorite)
			signedIn.PUT("/:id/rating", h.RateIdea)

			writes := signedIn.Group("")
			use(writes, limits.Write)
			writes.POST("", h.CreateIdea)
			writes.POST("/:id/comments", h.AddComment)
		}

		search := api.Group("/search")
		{
			use(search, limits.Search)
			search.GET("", h.Search)
			search.GET("/stats", h.SearchStats)
		}

		me := api.Group("/me", h.RequireUser())
		{
			me.GET("/ideas", h.MyIdeas)
			me.GET("/favorites", h.MyFavorites)
			me.GET("/profile", h.MyProfile)
			me.GET("/dashboard", h.Dashboard)
		}

		prompts := api.Group("/prompts", h.RequireUser())
		{
			prompts.GET("", h.ListPrompts)
			writes := prompts.Group("")
			use(writes, limits.Write)
			writes.POST("", h.SavePrompt)
		}
	}
}
