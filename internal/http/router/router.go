package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steezeapp/steeze-backend/internal/config"
	"github.com/steezeapp/steeze-backend/internal/http/handlers"
	"github.com/steezeapp/steeze-backend/internal/http/middleware"
	"github.com/steezeapp/steeze-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	wardrobeHandler *handlers.WardrobeHandler,
	outfitHandler *handlers.OutfitHandler,
	weatherHandler *handlers.WeatherHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
	}

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/user/profile", profileHandler.GetMe)
		protected.PUT("/user/profile", profileHandler.UpdateMe)
		protected.PUT("/user/password", profileHandler.ChangePassword)

		protected.POST("/user/wardrobe", wardrobeHandler.UploadItem)
		protected.GET("/user/wardrobe", wardrobeHandler.ListItems)
		protected.PUT("/user/wardrobe/:id", middleware.UUIDValidator("id"), wardrobeHandler.UpdateItem)
		protected.DELETE("/user/wardrobe/:id", middleware.UUIDValidator("id"), wardrobeHandler.DeleteItem)

		protected.POST("/outfit/generate", outfitHandler.Generate)
		protected.GET("/outfit", outfitHandler.List)
		protected.PUT("/outfit/:id", middleware.UUIDValidator("id"), outfitHandler.Update)
		protected.DELETE("/outfit/:id", middleware.UUIDValidator("id"), outfitHandler.Delete)

		protected.GET("/weather", weatherHandler.Get)
	}

	return r
}
