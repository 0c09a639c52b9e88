package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claira-social/internal/bootstrap"
	"claira-social/internal/transport/http/handler"
	"claira-social/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(app.Log), gin.Recovery())

	healthHandler := handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, app.StartedAt, healthChecks(app)...)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Storage.Driver == "local" {
		router.Static(cfg.Storage.LocalBaseURL, cfg.Storage.LocalPath)
	}

	svc := app.Services
	authHandler := handler.NewAuthHandler(svc.Auth, app.Log)
	chatHandler := handler.NewChatHandler(svc.Chat, app.Log)
	cycleHandler := handler.NewCycleHandler(svc.Cycles, app.Log)
	postHandler := handler.NewPostHandler(svc.Posts, app.Log)
	socialHandler := handler.NewSocialHandler(svc.Social, app.Log)
	dashboardHandler := handler.NewDashboardHandler(svc.Dashboard, app.Log)
	uploadHandler := handler.NewUploadHandler(svc.Upload, cfg.Upload.MaxFiles, app.Log)

	authJWT := middleware.AuthJWT(cfg.Auth.JWTSecret)
	chatLimiter := middleware.NewOwnerLimiter(cfg.RateLimit.ChatPerMinute, cfg.RateLimit.ChatBurst)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authJWT, authHandler.Me)

	protected := v1.Group("")
	protected.Use(authJWT)

	protected.POST("/chat", middleware.RateLimit(chatLimiter), chatHandler.Stream)
	protected.GET("/chat/history", chatHandler.History)

	protected.POST("/cycles", cycleHandler.Record)
	protected.GET("/cycles/latest", cycleHandler.Latest)

	protected.POST("/posts", postHandler.Create)
	protected.GET("/posts", postHandler.List)
	protected.POST("/posts/schedule", postHandler.Schedule)
	protected.GET("/posts/:id", postHandler.Get)
	protected.PUT("/posts/:id", postHandler.Update)
	protected.DELETE("/posts/:id", postHandler.Delete)

	protected.GET("/social/accounts", socialHandler.ListAccounts)
	protected.POST("/social/accounts", socialHandler.LinkAccount)
	protected.POST("/social/connect", socialHandler.Connect)
	protected.DELETE("/social/connect", socialHandler.Disconnect)

	protected.GET("/analytics/dashboard", dashboardHandler.Get)
	protected.POST("/upload", uploadHandler.Upload)

	return router
}

func healthChecks(app *bootstrap.App) []handler.HealthCheck {
	var checks []handler.HealthCheck
	if app.MySQL != nil {
		checks = append(checks, handler.HealthCheck{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := app.MySQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}})
	}
	if app.Redis != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		}})
	}
	if app.MQConn != nil {
		checks = append(checks, handler.HealthCheck{Name: "rabbitmq", Check: func(context.Context) error {
			if app.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}})
	}
	if app.Storage != nil {
		checks = append(checks, handler.HealthCheck{Name: "storage", Check: app.Storage.Health})
	}
	return checks
}
