package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	oauthStateCookieName = "oauth_state"
	oauthStateMaxAge     = 300
)

type oauthStateCookie struct {
	State        string `json:"state"`
	CodeVerifier string `json:"verifier"`
}

func (h *Handler) setOAuthStateCookie(c *gin.Context, state, codeVerifier string) {
	data, _ := json.Marshal(oauthStateCookie{State: state, CodeVerifier: codeVerifier})
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookieName, base64.RawURLEncoding.EncodeToString(data), oauthStateMaxAge, "/", "", h.cookies.secure(c), true)
}

func (h *Handler) clearOAuthStateCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookieName, "", -1, "/", "", h.cookies.secure(c), true)
}

func readOAuthStateCookie(c *gin.Context) (oauthStateCookie, bool) {
	value, err := c.Cookie(oauthStateCookieName)
	if err != nil || value == "" {
		return oauthStateCookie{}, false
	}
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return oauthStateCookie{}, false
	}
	var payload oauthStateCookie
	if err := json.Unmarshal(data, &payload); err != nil {
		return oauthStateCookie{}, false
	}
	if payload.State == "" || payload.CodeVerifier == "" {
		return oauthStateCookie{}, false
	}
	return payload, true
}

// signInPending reports an OAuth round trip that has started but not yet returned.
func signInPending(c *gin.Context) bool {
	_, ok := readOAuthStateCookie(c)
	return ok
}
