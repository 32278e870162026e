package routes

import (
	"net/http"
	"time"

	"carebook/handlers"
	"carebook/middleware"
	"carebook/models"
	"carebook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.CheckedAt.IsZero() && (!status.Redis || !status.Mongo) {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm Carebook"})
	})
}

// RegisterUserRoutes registers endpoints on the caller's own account.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users/me")
	{
		api.Use(middleware.JWTAuthMiddleware(false))
		api.GET("", hb.User.GetMeHandler)
		api.PUT("/location", hb.User.UpdateLocationHandler)
		api.PUT("/fcm-token", hb.User.UpdateFCMTokenHandler)
	}
}

// RegisterWizardRoutes registers the booking wizard lifecycle.
func RegisterWizardRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wizards")
	{
		api.Use(middleware.JWTAuthMiddleware(false))
		api.POST("", hb.Wizard.OpenHandler)
		api.GET("/:id", hb.Wizard.GetHandler)
		api.PATCH("/:id", hb.Wizard.UpdateHandler)
		api.DELETE("/:id", hb.Wizard.CloseHandler)
		api.POST("/:id/next", hb.Wizard.NextHandler)
		api.POST("/:id/back", hb.Wizard.BackHandler)
		api.POST("/:id/submit", hb.Wizard.SubmitHandler)
		api.POST("/:id/children", hb.Wizard.AddChildHandler)
	}
}

// RegisterFamilyRoutes registers the catalog, family and recurring screens.
func RegisterFamilyRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/catalog", hb.Catalog.ListHandler)
	r.GET("/api/recurrence/format", handlers.FormatPatternHandler)

	api := r.Group("/api")
	{
		api.Use(middleware.JWTAuthMiddleware(false))

		parents := api.Group("")
		parents.Use(middleware.RequireRole(models.RoleParent))
		parents.GET("/children", hb.Family.ListChildrenHandler)
		parents.POST("/children", hb.Family.CreateChildHandler)
		parents.GET("/recurring", hb.Recurring.ListHandler)
		parents.PATCH("/recurring/:id", hb.Recurring.ToggleHandler)
		parents.DELETE("/recurring/:id", hb.Recurring.DeleteHandler)

		caregivers := api.Group("")
		caregivers.Use(middleware.RequireRole(models.RoleCaregiver))
		caregivers.GET("/availability", hb.Availability.ListHandler)
		caregivers.DELETE("/availability/:id", hb.Availability.DeleteHandler)
	}
}

// RegisterRequestRoutes registers service request endpoints.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	{
		api.Use(middleware.JWTAuthMiddleware(false))
		api.GET("", hb.Requests.ListHandler)
		api.GET("/:id", hb.Requests.GetHandler)
		api.PATCH("/:id/status", hb.Requests.UpdateStatusHandler)
		api.POST("/:id/accept", middleware.RequireRole(models.RoleCaregiver), hb.Requests.AcceptHandler)
	}
}

// RegisterTrackingRoutes registers the live location channel.
func RegisterTrackingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/tracking")
	{
		api.GET("/ws", middleware.JWTAuthMiddleware(true), hb.Tracking.WebsocketHandler)
		api.POST("/bookings/:id/location",
			middleware.JWTAuthMiddleware(false),
			middleware.RequireRole(models.RoleCaregiver),
			hb.Tracking.PublishLocationHandler,
		)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterUserRoutes(r, hb)
	RegisterWizardRoutes(r, hb)
	RegisterFamilyRoutes(r, hb)
	RegisterRequestRoutes(r, hb)
	RegisterTrackingRoutes(r, hb)
}
