package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/foodeat/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger, handler.views),
	)

	router.GET("/healthz", handler.Healthz)
	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, analysisPath) })

	authGroup := router.Group("/api/auth")
	{
		authGroup.GET("/signin", markPage(), handler.SignIn)
		authGroup.GET("/callback", markPage(), handler.Callback)
		authGroup.POST("/token", rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger), handler.DirectSignIn)
		authGroup.POST("/signout", handler.SignOut)
	}

	pages := router.Group(analysisPath, markPage(), handler.sessionGuard(guardPage))
	{
		pages.GET("", handler.AnalysisPage)
		pages.GET("/photo", handler.Photo)
	}

	api := router.Group("/api", handler.sessionGuard(guardAPI))
	{
		api.POST("/diet/selection", rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger), handler.ChooseSelection)
		api.DELETE("/diet/selection", handler.ClearSelection)
		api.GET("/analysis", handler.AnalysisView)
		api.GET("/analysis/stream", handler.AnalysisStream)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
