package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"board-sync/internal/config"
	"board-sync/internal/database"
	"board-sync/internal/handler"
	"board-sync/internal/metrics"
	"board-sync/internal/middleware"
	"board-sync/internal/repository"
	"board-sync/internal/service"
)

// Setup wires repositories, services and handlers into a gin engine
func Setup(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if m != nil {
		r.Use(middleware.Metrics(m))
	}

	// Initialize repositories
	fieldRepo := repository.NewFieldRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Initialize the change feed publisher
	publisher := database.NewEventPublisher(redisClient, logger)

	// Initialize services
	fieldService := service.NewFieldService(fieldRepo, publisher, m, logger)
	taskService := service.NewTaskService(taskRepo, publisher, m, logger)

	// Initialize handlers
	fieldHandler := handler.NewFieldHandler(fieldService)
	taskHandler := handler.NewTaskHandler(taskService)
	wsHandler := handler.NewWSHandler(redisClient, m, logger)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Health endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes with base path
	api := r.Group(cfg.Server.BasePath)
	{
		// Health under base path
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)

		// Authenticated routes
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(cfg.JWT.Secret))
		{
			// Change feed (token via query param)
			authenticated.GET("/ws/teams/:teamId", wsHandler.ServeFeed)

			// Field routes
			authenticated.GET("/teams/:teamId/fields", fieldHandler.ListFields)
			authenticated.POST("/teams/:teamId/fields", fieldHandler.CreateField)
			authenticated.PATCH("/fields/:fieldId", fieldHandler.UpdateField)
			authenticated.POST("/fields/:fieldId/archive", fieldHandler.ArchiveField)

			// Task routes
			authenticated.GET("/teams/:teamId/tasks", taskHandler.ListTasks)
			authenticated.POST("/teams/:teamId/tasks", taskHandler.CreateTask)
			authenticated.PATCH("/tasks/:taskId", taskHandler.UpdateTask)
			authenticated.DELETE("/tasks/:taskId", taskHandler.DeleteTask)
		}
	}

	return r
}
