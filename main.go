package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cctv-surveillance-reports/be/config"
	"cctv-surveillance-reports/be/database"
	"cctv-surveillance-reports/be/handlers"
	"cctv-surveillance-reports/be/logging"
	"cctv-surveillance-reports/be/middleware"
	"cctv-surveillance-reports/be/repository"
	"cctv-surveillance-reports/be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()

	logger := logging.New(cfg.IsRelease())
	defer logger.Sync()
	if envErr != nil {
		logger.Info("no .env file found, using environment variables")
	}

	ctx := context.Background()
	store, err := database.Initialize(ctx, cfg.Database, !cfg.IsRelease(), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	if err := database.EnsureDefaultAdmin(ctx, store.Users, cfg.Admin, logger); err != nil {
		logger.Fatal("failed to ensure default admin", zap.Error(err))
	}

	authService, err := services.NewAuthService(store.Users, cfg.JWT)
	if err != nil {
		logger.Fatal("failed to initialize auth service", zap.Error(err))
	}
	hub := services.NewEventHub(logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: setupRouter(cfg, store, authService, hub, logger),
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("driver", cfg.Database.Driver),
			zap.Bool("auth_enforce", cfg.Server.AuthEnforce),
		)
		logger.Info("health check", zap.String("url", "http://localhost"+srv.Addr+"/api/health"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("failed to close database", zap.Error(err))
	}
	logger.Info("server exited")
}

func setupRouter(cfg *config.Config, store *repository.Store, authService *services.AuthService, hub *services.EventHub, logger *zap.Logger) *gin.Engine {
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	activityHandler := handlers.NewActivityHandler(store.Activities, hub, logger)
	statusHandler := handlers.NewStatusHandler(store.Statuses, hub, logger)
	userHandler := handlers.NewUserHandler(authService, logger)
	eventHandler := handlers.NewEventHandler(hub, cfg.Server.AllowedOrigins, logger)

	api := router.Group("/api")
	api.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	api.GET("/health", handlers.Health)

	// Without AUTH_ENFORCE the role returned at login only drives what the
	// client shows; the data routes stay open.
	protected := api.Group("")
	admin := api.Group("")
	if cfg.Server.AuthEnforce {
		protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
		admin.Use(middleware.AuthMiddleware(cfg.JWT.Secret), middleware.RequireRole("admin"))
	}

	users := api.Group("/users")
	{
		users.POST("/login", userHandler.Login)
	}
	protected.POST("/users/change-password", userHandler.ChangePassword)
	admin.POST("/users/register", userHandler.Register)
	admin.POST("/users/admin-change-password", userHandler.AdminChangePassword)
	admin.GET("/users", userHandler.List)

	reports := protected.Group("/reports")
	{
		reports.GET("", activityHandler.List)
		reports.GET("/location/:location", activityHandler.ListByLocation)
		reports.GET("/:id", activityHandler.Get)
		reports.POST("", activityHandler.Create)
		reports.PUT("/:id", activityHandler.Update)
		reports.DELETE("/:id", activityHandler.Delete)
	}

	statuses := protected.Group("/daily-surveillance")
	{
		statuses.GET("", statusHandler.List)
		statuses.GET("/location/:location", statusHandler.ListByLocation)
		statuses.GET("/:id", statusHandler.Get)
		statuses.POST("", statusHandler.Create)
		statuses.PUT("/:id", statusHandler.Update)
		statuses.DELETE("/:id", statusHandler.Delete)
	}

	protected.GET("/events", eventHandler.Stream)

	router.NoRoute(handlers.NotFound)

	return router
}
