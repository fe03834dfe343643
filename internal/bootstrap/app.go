package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/foodeat/internal/domain/analysis"
	"github.com/yanqian/foodeat/internal/infra/config"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server lifecycle and the in-memory analysis state behind it.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	analysis analysis.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, analysisSvc analysis.Service) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, analysis: analysisSvc}
}

// Run starts the HTTP server and blocks until shutdown. In-flight analyses are
// cancelled once the server stops accepting requests.
func (a *App) Run(ctx context.Context) error {
	defer a.analysis.Close()

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
