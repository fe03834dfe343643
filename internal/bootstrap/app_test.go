package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/foodeat/internal/domain/analysis"
	"github.com/yanqian/foodeat/internal/infra/config"
)

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	svc := &closingAnalysis{}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.Equal(t, int32(1), svc.closed.Load())
}

func TestApp_RunReturnsListenError(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "invalid-address"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	svc := &closingAnalysis{}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, svc)

	require.Error(t, app.Run(context.Background()))
	require.Equal(t, int32(1), svc.closed.Load())
}

type closingAnalysis struct {
	closed atomic.Int32
}

func (s *closingAnalysis) Load(ctx context.Context, viewer analysis.Viewer) (analysis.Snapshot, error) {
	return analysis.Snapshot{}, nil
}

func (s *closingAnalysis) Watch(viewerID string) (<-chan analysis.State, func(), error) {
	return nil, func() {}, nil
}

func (s *closingAnalysis) ConsumeRedirect(viewerID string) bool { return false }
func (s *closingAnalysis) Release(viewerID string)              {}
func (s *closingAnalysis) Close()                               { s.closed.Add(1) }
