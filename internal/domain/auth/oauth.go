package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	apperrors "github.com/yanqian/foodeat/pkg/errors"
)

type idTokenClaims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	GivenName string `json:"given_name"`
	Nickname  string `json:"nickname"`
}

func (s *service) OAuthEnabled() bool {
	p := s.cfg.Provider
	if strings.TrimSpace(p.ClientID) == "" || strings.TrimSpace(p.RedirectURL) == "" {
		return false
	}
	if strings.TrimSpace(p.IssuerURL) != "" {
		return true
	}
	return strings.TrimSpace(p.AuthURL) != "" && strings.TrimSpace(p.TokenURL) != ""
}

func (s *service) SignInURL(ctx context.Context, state, codeChallenge string) (string, error) {
	cfg, err := s.oauthConfig(ctx)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

func (s *service) Callback(ctx context.Context, code, codeVerifier string) (Issued, error) {
	cfg, err := s.oauthConfig(ctx)
	if err != nil {
		return Issued{}, err
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(codeVerifier) == "" {
		return Issued{}, apperrors.Wrap("invalid_input", "missing oauth code or verifier", nil)
	}
	token, err := cfg.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	if err != nil {
		return Issued{}, apperrors.Wrap("oauth_exchange_failed", "failed to exchange oauth code", err)
	}
	if token.AccessToken == "" {
		return Issued{}, apperrors.Wrap("oauth_exchange_failed", "provider returned no access token", nil)
	}

	var claims idTokenClaims
	if rawIDToken, ok := token.Extra("id_token").(string); ok && rawIDToken != "" && s.cfg.Provider.IssuerURL != "" {
		claims, err = s.verifyIDToken(ctx, rawIDToken)
		if err != nil {
			return Issued{}, err
		}
	}
	return s.issue(token.AccessToken, nicknameFrom(claims), strings.TrimSpace(claims.Email))
}

func (s *service) oauthConfig(ctx context.Context) (*oauth2.Config, error) {
	if !s.OAuthEnabled() {
		return nil, apperrors.Wrap("auth_not_configured", "oauth sign-in is not configured", nil)
	}
	p := s.cfg.Provider
	endpoint := oauth2.Endpoint{AuthURL: p.AuthURL, TokenURL: p.TokenURL}
	if p.IssuerURL != "" {
		provider, err := s.oidcProvider(ctx)
		if err != nil {
			return nil, err
		}
		endpoint = provider.Endpoint()
	}
	scopes := p.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}, nil
}

// oidcProvider runs discovery once and reuses the result.
func (s *service) oidcProvider(ctx context.Context) (*oidc.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider != nil {
		return s.provider, nil
	}
	provider, err := oidc.NewProvider(ctx, s.cfg.Provider.IssuerURL)
	if err != nil {
		return nil, apperrors.Wrap("auth_error", "failed to initialize oidc provider", err)
	}
	s.provider = provider
	return provider, nil
}

func (s *service) verifyIDToken(ctx context.Context, rawToken string) (idTokenClaims, error) {
	provider, err := s.oidcProvider(ctx)
	if err != nil {
		return idTokenClaims{}, err
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: s.cfg.Provider.ClientID})
	idToken, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return idTokenClaims{}, apperrors.Wrap("invalid_token", "failed to verify id token", err)
	}
	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return idTokenClaims{}, apperrors.Wrap("invalid_token", "failed to parse id token claims", err)
	}
	return claims, nil
}

func nicknameFrom(claims idTokenClaims) string {
	for _, candidate := range []string{claims.Nickname, claims.GivenName, claims.Name} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	if local, _, ok := strings.Cut(claims.Email, "@"); ok {
		return local
	}
	return ""
}

func randomString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CodeChallengeFromVerifier computes the PKCE code challenge for a verifier.
func CodeChallengeFromVerifier(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// NewOAuthState returns a state, code verifier, and code challenge for PKCE.
func NewOAuthState() (state string, codeVerifier string, codeChallenge string, err error) {
	state, err = randomString(32)
	if err != nil {
		return "", "", "", err
	}
	codeVerifier, err = randomString(32)
	if err != nil {
		return "", "", "", err
	}
	return state, codeVerifier, CodeChallengeFromVerifier(codeVerifier), nil
}
