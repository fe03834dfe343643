package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	Secret       string
	SessionTTL   time.Duration
	DirectSignIn bool
	Provider     ProviderConfig
}

// ProviderConfig holds the OAuth2 authorization server settings.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	IssuerURL    string
	Scopes       []string
}

// Status is the authentication state of the current viewer.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Session is the signed-in viewer. ID is minted per sign-in and keys the viewer's
// selection and analysis state.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"-"`
	Nickname    string    `json:"nickname,omitempty"`
	Email       string    `json:"email,omitempty"`
	Expires     time.Time `json:"expires"`
}

// Issued pairs a fresh session with its encoded cookie value.
type Issued struct {
	Session Session
	Token   string
}

// DirectSignInRequest carries an access token already issued by the diet backend.
type DirectSignInRequest struct {
	AccessToken string `json:"accessToken" form:"accessToken"`
	Nickname    string `json:"nickname" form:"nickname"`
	Email       string `json:"email" form:"email"`
}
