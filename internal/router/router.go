package router

import (
	"fmt"
	"strings"

	"github.com/weipos/internal/cache"
	"github.com/weipos/internal/config"
	"github.com/weipos/internal/constants"
	poshandlers "github.com/weipos/internal/http/handlers/pos"
	"github.com/weipos/internal/logger"
	"github.com/weipos/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	posHandler := poshandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:write", redisPrefix),
		WindowSeconds: cfg.Security.WriteRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WriteRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API 路由组
	apiV1 := r.Group("/api/v1")
	pos := apiV1.Group("/pos")
	pos.Use(StaffContextMiddleware())
	{
		// 读接口不限流
		pos.GET("/orders", posHandler.ListOrders)
		pos.GET("/orders/:id", posHandler.GetOrder)
		pos.GET("/orders/:id/totals", posHandler.GetTotals)
		pos.GET("/orders/:id/items", posHandler.ListItems)
		pos.GET("/orders/:id/events", posHandler.ListOrderEvents)
		pos.GET("/orders/:id/lock", posHandler.GetLockStatus)

		// 写接口按租户+员工限流
		write := pos.Group("")
		write.Use(RateLimitMiddleware(redisClient, writeRule, KeyByStaff))
		{
			write.POST("/orders", posHandler.CreateOrder)
			write.DELETE("/orders/:id", posHandler.DeleteOrder)
			write.POST("/orders/:id/status", posHandler.TransitionOrder)
			write.POST("/orders/:id/items", posHandler.AddItem)
			write.PUT("/items/:item_id", posHandler.UpdateItem)
			write.DELETE("/items/:item_id", posHandler.DeleteItem)
			write.POST("/items/:item_id/state", posHandler.TransitionItem)
			write.POST("/orders/:id/fire", posHandler.FireItems)
			write.POST("/orders/:id/discounts", posHandler.ApplyDiscount)
			write.DELETE("/orders/:id/discounts/:discount_id", posHandler.RemoveDiscount)
			write.POST("/orders/:id/lock", posHandler.AcquireLock)
			write.DELETE("/orders/:id/lock", posHandler.ReleaseLock)
			write.POST("/orders/:id/lock/force-release", posHandler.ForceReleaseLock)
		}
	}

	return r
}
