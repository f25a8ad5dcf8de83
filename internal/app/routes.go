package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rollcall/core/internal/middleware"
	"github.com/rollcall/core/internal/modules/assistant"
	"github.com/rollcall/core/internal/modules/auth"
	"github.com/rollcall/core/internal/modules/checkin"
	"github.com/rollcall/core/internal/modules/session"
	"github.com/rollcall/core/internal/modules/stats"
	"github.com/rollcall/core/internal/modules/user"
	pkgredis "github.com/rollcall/core/internal/pkg/redis"
	"github.com/rollcall/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes(rc *pkgredis.Client) error {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	api := r.Group(apiPrefix)
	// Identity resolves before the limiter so its authenticated bypass
	// actually sees the caller. Both limiters require Redis.
	api.Use(middleware.OptionalAuth(db))
	api.Use(middleware.RateLimit(rc.Raw()))
	api.Use(middleware.Idempotence(rc.Raw()))

	api.GET("/ping", func(c *gin.Context) {
		response.OK(c, gin.H{"message": "pong"})
	})
	api.GET("/uptime", func(c *gin.Context) {
		response.OK(c, gin.H{
			"uptime": time.Since(processStart).Truncate(time.Second).String(),
		})
	})

	// Shared services
	sessionSvc := session.NewService(db, a.cfg)
	checkinSvc := checkin.NewService(db, a.cfg, sessionSvc)
	userSvc := user.NewService(db)
	authSvc := auth.NewService(db)
	statsSvc := stats.NewService(db, a.cfg)

	auth.NewHandler(authSvc).RegisterRoutes(api)
	session.NewHandler(sessionSvc).RegisterRoutes(api, authMW)
	checkin.NewHandler(checkinSvc).RegisterRoutes(api, authMW)
	user.NewHandler(userSvc).RegisterRoutes(api, authMW)
	stats.NewHandler(statsSvc).RegisterRoutes(api, authMW)

	if a.cfg.Assistant.Enable {
		assistantSvc := assistant.NewService(db, a.cfg)
		assistant.NewHandler(assistantSvc).RegisterRoutes(api, authMW)
	}

	return nil
}
