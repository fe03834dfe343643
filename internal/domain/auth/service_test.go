package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/foodeat/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestService_DirectSignInAndResolve(t *testing.T) {
	svc := newTestService(t, Config{Secret: testSecret, SessionTTL: time.Hour, DirectSignIn: true})

	issued, err := svc.DirectSignIn(context.Background(), DirectSignInRequest{
		AccessToken: " tok1 ",
		Nickname:    "민지",
	})
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.Session.ID)
	require.Equal(t, "tok1", issued.Session.AccessToken)

	session, status := svc.Resolve(context.Background(), issued.Token, false)
	require.Equal(t, StatusAuthenticated, status)
	require.Equal(t, issued.Session.ID, session.ID)
	require.Equal(t, "tok1", session.AccessToken)
	require.Equal(t, "민지", session.Nickname)
	require.WithinDuration(t, time.Now().Add(time.Hour), session.Expires, time.Minute)
}

func TestService_ResolveStatuses(t *testing.T) {
	svc := newTestService(t, Config{Secret: testSecret, SessionTTL: time.Hour, DirectSignIn: true})

	_, status := svc.Resolve(context.Background(), "", false)
	require.Equal(t, StatusUnauthenticated, status)

	_, status = svc.Resolve(context.Background(), "", true)
	require.Equal(t, StatusLoading, status)

	_, status = svc.Resolve(context.Background(), "not-a-jwt", false)
	require.Equal(t, StatusUnauthenticated, status)

	issued, err := svc.DirectSignIn(context.Background(), DirectSignInRequest{AccessToken: "tok1"})
	require.NoError(t, err)

	other := newTestService(t, Config{Secret: "ffffffffffffffffffffffffffffffff", DirectSignIn: true})
	_, status = other.Resolve(context.Background(), issued.Token, false)
	require.Equal(t, StatusUnauthenticated, status)
}

func TestService_ExpiredSession(t *testing.T) {
	svc := newTestService(t, Config{Secret: testSecret, SessionTTL: time.Minute, DirectSignIn: true})
	issued, err := svc.DirectSignIn(context.Background(), DirectSignInRequest{AccessToken: "tok1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, status := svc.Resolve(context.Background(), issued.Token, false)
	require.Equal(t, StatusUnauthenticated, status)

	_, err = svc.decode(issued.Token)
	require.True(t, apperrors.IsCode(err, "invalid_token"))
}

func TestService_DirectSignInValidation(t *testing.T) {
	disabled := newTestService(t, Config{Secret: testSecret})
	_, err := disabled.DirectSignIn(context.Background(), DirectSignInRequest{AccessToken: "tok1"})
	require.True(t, apperrors.IsCode(err, "auth_not_configured"))

	enabled := newTestService(t, Config{Secret: testSecret, DirectSignIn: true})
	_, err = enabled.DirectSignIn(context.Background(), DirectSignInRequest{AccessToken: "  "})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_OAuthCodeExchange(t *testing.T) {
	var gotVerifier string
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotVerifier = r.PostForm.Get("code_verifier")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	svc := newTestService(t, Config{
		Secret: testSecret,
		Provider: ProviderConfig{
			ClientID:    "client",
			AuthURL:     tokenServer.URL + "/authorize",
			TokenURL:    tokenServer.URL + "/token",
			RedirectURL: "http://localhost:3000/api/auth/callback",
		},
	})
	require.True(t, svc.OAuthEnabled())

	state, verifier, challenge, err := NewOAuthState()
	require.NoError(t, err)

	raw, err := svc.SignInURL(context.Background(), state, challenge)
	require.NoError(t, err)
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, state, parsed.Query().Get("state"))
	require.Equal(t, challenge, parsed.Query().Get("code_challenge"))
	require.Equal(t, "S256", parsed.Query().Get("code_challenge_method"))

	issued, err := svc.Callback(context.Background(), "auth-code", verifier)
	require.NoError(t, err)
	require.Equal(t, verifier, gotVerifier)
	require.Equal(t, "provider-token", issued.Session.AccessToken)

	session, status := svc.Resolve(context.Background(), issued.Token, false)
	require.Equal(t, StatusAuthenticated, status)
	require.Equal(t, "provider-token", session.AccessToken)
}

func TestService_OAuthNotConfigured(t *testing.T) {
	svc := newTestService(t, Config{Secret: testSecret})
	require.False(t, svc.OAuthEnabled())

	_, err := svc.SignInURL(context.Background(), "state", "challenge")
	require.True(t, apperrors.IsCode(err, "auth_not_configured"))
}

func TestTokenCryptoRoundTrip(t *testing.T) {
	key, err := deriveTokenKey(testSecret)
	require.NoError(t, err)
	require.Len(t, key, 32)

	sealed, err := encryptToken(key, "tok1")
	require.NoError(t, err)
	require.NotContains(t, sealed, "tok1")

	plain, err := decryptToken(key, sealed)
	require.NoError(t, err)
	require.Equal(t, "tok1", plain)

	otherKey, err := deriveTokenKey("another secret value entirely!!")
	require.NoError(t, err)
	_, err = decryptToken(otherKey, sealed)
	require.Error(t, err)
}

func TestNicknameFrom(t *testing.T) {
	require.Equal(t, "nick", nicknameFrom(idTokenClaims{Nickname: "nick", Name: "Full"}))
	require.Equal(t, "Full", nicknameFrom(idTokenClaims{Name: " Full "}))
	require.Equal(t, "jo", nicknameFrom(idTokenClaims{Email: "jo@example.com"}))
	require.Equal(t, "", nicknameFrom(idTokenClaims{}))
}

func newTestService(t *testing.T, cfg Config) *service {
	t.Helper()
	svc, err := NewService(cfg, newTestLogger())
	require.NoError(t, err)
	return svc.(*service)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}
