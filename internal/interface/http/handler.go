package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/foodeat/internal/domain/analysis"
	"github.com/yanqian/foodeat/internal/domain/auth"
	"github.com/yanqian/foodeat/internal/domain/selection"
	"github.com/yanqian/foodeat/internal/infra/config"
)

const analysisPath = "/analysis"

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc           auth.Service
	selectionSvc      selection.Service
	analysisSvc       analysis.Service
	views             *renderer
	messages          analysis.Messages
	cookies           cookieSettings
	signInPath        string
	postLoginRedirect string
	maxPhotoBytes     int64
	logger            *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, authSvc auth.Service, selectionSvc selection.Service, analysisSvc analysis.Service, logger *slog.Logger) (*Handler, error) {
	log := logger.With("component", "http.handler")
	views, err := newRenderer(log)
	if err != nil {
		return nil, err
	}
	redirect := cfg.Auth.PostLoginRedirect
	if redirect == "" {
		redirect = analysisPath
	}
	return &Handler{
		authSvc:      authSvc,
		selectionSvc: selectionSvc,
		analysisSvc:  analysisSvc,
		views:        views,
		messages:     analysis.DefaultMessages(),
		cookies: cookieSettings{
			name:     cfg.Auth.CookieName,
			forceTLS: cfg.Auth.CookieSecure,
			lifetime: cfg.Auth.SessionTTL,
		},
		signInPath:        cfg.Auth.SignInPath,
		postLoginRedirect: redirect,
		maxPhotoBytes:     cfg.Selection.MaxPhotoBytes,
		logger:            log,
	}, nil
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") || c.ContentType() == "application/json"
}
