package analysis

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/foodeat/internal/domain/selection"
	apperrors "github.com/yanqian/foodeat/pkg/errors"
	"github.com/yanqian/foodeat/pkg/util"
)

const (
	photoFilename    = "photo.jpg"
	statusOK         = 200
	defaultFallback  = "사진 분석 중 오류가 발생했습니다."
	defaultIdleTTL   = 30 * time.Minute
	defaultSubmitTTL = 30 * time.Second
)

// Service drives the photo submission flow for each viewer.
type Service interface {
	// Load reads the viewer's selection, starts a submission if the inputs changed, and
	// returns what should be rendered now.
	Load(ctx context.Context, viewer Viewer) (Snapshot, error)
	// Watch streams state changes of a viewer that has been loaded at least once.
	Watch(viewerID string) (<-chan State, func(), error)
	// ConsumeRedirect reports once that the last submission was rejected as unauthorized.
	ConsumeRedirect(viewerID string) bool
	Release(viewerID string)
	Close()
}

type service struct {
	cfg       Config
	selection selection.Reader
	photos    PhotoResolver
	client    Client
	tracker   *Tracker
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg Config, reader selection.Reader, photos PhotoResolver, client Client, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.FallbackError) == "" {
		cfg.FallbackError = defaultFallback
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSubmitTTL
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.IdleTTL == 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	s := &service{
		cfg:       cfg,
		selection: reader,
		photos:    photos,
		client:    client,
		logger:    logger.With("component", "analysis.service"),
		now:       util.NowUTC,
	}
	s.tracker = NewTracker(func() *Flow {
		return newFlow(s.submit, s.cfg.Timeout, s.now, s.logger)
	}, cfg.IdleTTL)
	return s
}

func (s *service) Load(ctx context.Context, viewer Viewer) (Snapshot, error) {
	if viewer.ID == "" {
		return Snapshot{}, apperrors.Wrap("unauthorized", "viewer is required", nil)
	}
	sel, err := s.selection.Current(ctx, viewer.ID)
	if err != nil {
		return Snapshot{}, err
	}
	flow := s.tracker.Acquire(viewer.ID)
	if flow.Trigger(Trigger{
		PhotoRef:    sel.PhotoRef,
		Type:        strings.TrimSpace(sel.Type),
		AccessToken: viewer.AccessToken,
	}) {
		s.logger.Info("analysis submitted", "viewer", viewer.ID, "type", sel.Type)
	}
	return Snapshot{Selection: sel, State: flow.State()}, nil
}

func (s *service) Watch(viewerID string) (<-chan State, func(), error) {
	flow, ok := s.tracker.Lookup(viewerID)
	if !ok {
		return nil, nil, apperrors.Wrap("not_found", "no analysis for viewer", nil)
	}
	ch, stop := flow.Subscribe()
	return ch, stop, nil
}

func (s *service) ConsumeRedirect(viewerID string) bool {
	flow, ok := s.tracker.Lookup(viewerID)
	if !ok {
		return false
	}
	return flow.ConsumeRedirect()
}

func (s *service) Release(viewerID string) {
	s.tracker.Release(viewerID)
}

func (s *service) Close() {
	s.tracker.Close()
}

// submit runs one attempt. It never retries.
func (s *service) submit(ctx context.Context, t Trigger) outcome {
	photo, err := s.photos.Resolve(ctx, t.PhotoRef)
	if err != nil {
		s.logger.Warn("failed to resolve photo", "ref", t.PhotoRef, "error", err)
		return outcome{phase: PhaseFailed, message: s.cfg.FallbackError}
	}

	resp, err := s.client.Analyze(ctx, t.AccessToken, Envelope{
		Image:    photo.Data,
		Filename: photoFilename,
		Type:     t.Type,
		Date:     util.CompactDate(s.now(), s.cfg.Location),
	})
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.StatusCode == http.StatusUnauthorized {
			s.logger.Warn("diet api rejected access token")
			return outcome{phase: PhaseUnauthorized}
		}
		if errors.Is(err, context.Canceled) {
			return outcome{phase: PhaseFailed, message: s.cfg.FallbackError}
		}
		s.logger.Warn("diet api request failed", "error", err)
		message := s.cfg.FallbackError
		if upstream != nil && strings.TrimSpace(upstream.Message) != "" {
			message = upstream.Message
		}
		return outcome{phase: PhaseFailed, message: message}
	}

	if resp.Status != statusOK || resp.Data == nil {
		s.logger.Warn("diet api reported failure", "status", resp.Status, "msg", resp.Msg)
		message := s.cfg.FallbackError
		if strings.TrimSpace(resp.Msg) != "" {
			message = resp.Msg
		}
		return outcome{phase: PhaseFailed, message: message}
	}
	result := *resp.Data
	return outcome{phase: PhaseSucceeded, result: &result}
}
