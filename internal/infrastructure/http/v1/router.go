// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"icehouse/internal/domain/warehouse"
	"icehouse/internal/infrastructure/http/v1/handlers"
	"icehouse/internal/infrastructure/http/v1/middleware"
	"icehouse/internal/infrastructure/storage/postgres"
	"icehouse/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool is the database connection (for health checks)
	Pool *postgres.Pool

	// TxManager owns transaction boundaries for mutating operations
	TxManager *postgres.TxManager

	// WarehouseService is the lifecycle contract
	WarehouseService *warehouse.Service
}

// NewRouter creates and configures the gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	warehouseHandler := handlers.NewWarehouseHandler(base, cfg.WarehouseService, cfg.TxManager)

	api := router.Group("/v1")
	{
		projects := api.Group("/projects/:projectID")
		{
			projects.POST("/warehouses", warehouseHandler.Create)
			projects.GET("/warehouses", warehouseHandler.List)
		}

		warehouses := api.Group("/warehouses/:id")
		{
			warehouses.GET("", warehouseHandler.Get)
			warehouses.DELETE("", warehouseHandler.Delete)
			warehouses.POST("/rename", warehouseHandler.Rename)
			warehouses.POST("/activate", warehouseHandler.Activate)
			warehouses.POST("/deactivate", warehouseHandler.Deactivate)
			warehouses.POST("/protection", warehouseHandler.SetProtection)
		}
	}

	return router
}
