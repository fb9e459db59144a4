package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// Config holds HTTP server configuration options.
type Config struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns the default HTTP server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "",
		Port:         "3001",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// New creates the HTTP engine with all routes configured.
func New(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS for browser dashboards
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.HealthCheck)

	api := r.Group("/api")
	{
		api.POST("/webhooks/order", handler.OrderWebhook)

		orders := api.Group("/orders")
		{
			orders.GET("", handler.ListOrders)
			orders.POST("", handler.CreateOrder)
			// Registered before /:id so gin does not treat "search" as an id
			orders.GET("/search/:orderNumber", handler.SearchOrder)
			orders.GET("/:id", handler.GetOrder)
			orders.PUT("/:id", handler.UpdateOrder)
			orders.DELETE("/:id", handler.DeleteOrder)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", handler.ListSettings)
			settings.GET("/vendors", handler.GetVendors)
			settings.PUT("/vendors", handler.SetVendors)
			settings.GET("/statuses", handler.GetStatuses)
			settings.PUT("/statuses", handler.SetStatuses)
			settings.GET("/:key", handler.GetSetting)
			settings.PUT("/:key", handler.SetSetting)
		}

		api.GET("/stats", handler.GetStats)
	}
}
