package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/foodeat/pkg/errors"
)

// Service resolves and issues viewer sessions.
type Service interface {
	// Resolve classifies the session cookie. pending reports a sign-in round trip in flight.
	Resolve(ctx context.Context, cookie string, pending bool) (Session, Status)
	SignInURL(ctx context.Context, state, codeChallenge string) (string, error)
	Callback(ctx context.Context, code, codeVerifier string) (Issued, error)
	DirectSignIn(ctx context.Context, req DirectSignInRequest) (Issued, error)
	OAuthEnabled() bool
	DirectSignInEnabled() bool
}

type service struct {
	cfg    Config
	key    []byte
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	provider *oidc.Provider
}

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) (Service, error) {
	key, err := deriveTokenKey(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &service{
		cfg:    cfg,
		key:    key,
		logger: logger.With("component", "auth.service"),
		now:    time.Now,
	}, nil
}

func (s *service) Resolve(ctx context.Context, cookie string, pending bool) (Session, Status) {
	if strings.TrimSpace(cookie) == "" {
		if pending {
			return Session{}, StatusLoading
		}
		return Session{}, StatusUnauthenticated
	}
	session, err := s.decode(cookie)
	if err != nil {
		s.logger.Debug("session cookie rejected", "error", err)
		if pending {
			return Session{}, StatusLoading
		}
		return Session{}, StatusUnauthenticated
	}
	return session, StatusAuthenticated
}

func (s *service) DirectSignIn(ctx context.Context, req DirectSignInRequest) (Issued, error) {
	if !s.cfg.DirectSignIn {
		return Issued{}, apperrors.Wrap("auth_not_configured", "direct sign-in is disabled", nil)
	}
	token := strings.TrimSpace(req.AccessToken)
	if token == "" {
		return Issued{}, apperrors.Wrap("invalid_input", "access token cannot be empty", nil)
	}
	return s.issue(token, strings.TrimSpace(req.Nickname), strings.TrimSpace(req.Email))
}

func (s *service) DirectSignInEnabled() bool {
	return s.cfg.DirectSignIn
}

func (s *service) issue(accessToken, nickname, email string) (Issued, error) {
	session := Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		Nickname:    nickname,
		Email:       email,
		Expires:     s.now().Add(s.cfg.SessionTTL).UTC().Truncate(time.Second),
	}
	encoded, err := s.encode(session)
	if err != nil {
		return Issued{}, err
	}
	s.logger.Info("session issued", "session", session.ID)
	return Issued{Session: session, Token: encoded}, nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
	AccessToken string `json:"at"`
	Nickname    string `json:"nick,omitempty"`
	Email       string `json:"email,omitempty"`
}

func (s *service) encode(session Session) (string, error) {
	sealed, err := encryptToken(s.key, session.AccessToken)
	if err != nil {
		return "", apperrors.Wrap("auth_error", "failed to seal access token", err)
	}
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(session.Expires),
		},
		AccessToken: sealed,
		Nickname:    session.Nickname,
		Email:       session.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap("auth_error", "failed to sign session", err)
	}
	return signed, nil
}

func (s *service) decode(raw string) (Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, apperrors.Wrap("invalid_token", "session expired", err)
		}
		return Session{}, apperrors.Wrap("invalid_token", "invalid session", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Session{}, apperrors.Wrap("invalid_token", "invalid session", nil)
	}
	accessToken, err := decryptToken(s.key, claims.AccessToken)
	if err != nil {
		return Session{}, apperrors.Wrap("invalid_token", "invalid session payload", err)
	}
	if accessToken == "" {
		return Session{}, apperrors.Wrap("invalid_token", "session has no access token", nil)
	}
	session := Session{
		ID:          claims.Subject,
		AccessToken: accessToken,
		Nickname:    claims.Nickname,
		Email:       claims.Email,
	}
	if claims.ExpiresAt != nil {
		session.Expires = claims.ExpiresAt.Time
	}
	return session, nil
}
