package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/wavesignals/internal/handler"
)

// Options 配置路由所需的中间件参数。
type Options struct {
	SessionSecret string
	CORSOrigins   []string
	Logger        *slog.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	// 没有会话密钥时不挂载会话中间件，管理接口只接受 X-Admin-Key。
	if opts.SessionSecret != "" {
		store := cookie.NewStore([]byte(opts.SessionSecret))
		store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 7 * 24 * 3600})
		r.Use(sessions.Sessions("wavesignals_session", store))
	} else {
		logger.Warn("SESSION_SECRET not configured, session login disabled")
	}

	r.GET("/", api.Index)
	r.GET("/health", api.HealthCheck)
	r.GET("/sitemap.xml", api.Sitemap)

	public := r.Group("/api")
	{
		public.POST("/auth/login", api.Login)
		public.POST("/auth/logout", api.Logout)
		public.GET("/posts", api.ListPosts)
		public.GET("/posts/:id", api.GetPost)
		public.GET("/settings", api.GetSettings)
		public.GET("/bot-status", api.BotStatus)
		public.POST("/subscribers", api.Subscribe)
	}

	// 需要管理员权限的接口
	admin := r.Group("/api", api.AdminRequired())
	{
		admin.POST("/auth/verify", api.VerifyAdmin)
		admin.POST("/posts", api.CreatePost)
		admin.PUT("/posts/:id", api.UpdatePost)
		admin.DELETE("/posts/:id", api.DeletePost)
		admin.PUT("/settings", api.UpdateSettings)
		admin.POST("/generate-post", api.GeneratePost)
		admin.POST("/test-ai", api.TestAI)
		admin.GET("/events", api.ListEvents)
		admin.GET("/subscribers", api.ListSubscribers)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = append(cfg.AllowHeaders, handler.AdminKeyHeader, "Authorization")

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
