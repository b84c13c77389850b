package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/opportunity-map-go/internal/config"
	"github.com/jengzang/opportunity-map-go/internal/handler"
	"github.com/jengzang/opportunity-map-go/internal/logging"
	"github.com/jengzang/opportunity-map-go/internal/metrics"
	"github.com/jengzang/opportunity-map-go/internal/middleware"
	"github.com/jengzang/opportunity-map-go/internal/service"
)

// Deps 路由依赖
type Deps struct {
	Config  *config.Config
	Service *service.MapService
	Logger  logging.Logger
	Metrics *metrics.Metrics
	Limiter *middleware.RateLimiter
}

// SetupRouter 设置路由
func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Logger(d.Logger))
	r.Use(d.Metrics.Middleware())

	auth := middleware.NewAuth(d.Config.Auth.JWTSecret, d.Config.Auth.Issuer, d.Logger)
	if !auth.Enabled() {
		d.Logger.Warn("auth.jwt_secret is empty; write routes are unauthenticated")
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Opportunity Map API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	mapHandler := handler.NewMapHandler(d.Service)
	entityHandler := handler.NewEntityHandler(d.Service)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(d.Limiter))
	{
		// 地图展示接口
		m := api.Group("/map")
		{
			m.GET("/clusters", mapHandler.GetClusters)
			m.GET("/legend", mapHandler.GetLegend)
			m.GET("/color", mapHandler.GetColor)
			m.GET("/gradient", mapHandler.GetGradient)
		}

		// 实体接口
		entities := api.Group("/entities")
		{
			entities.GET("", entityHandler.ListEntities)
			entities.GET("/:id", entityHandler.GetEntity)
			entities.POST("", auth.Required(), entityHandler.CreateEntities)
			entities.DELETE("/:id", auth.Required(), entityHandler.DeleteEntity)
		}
	}

	return r
}
