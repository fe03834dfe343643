package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/foodeat/internal/domain/auth"
)

const authSessionKey = "auth_session"

func setSession(c *gin.Context, session auth.Session) {
	c.Set(authSessionKey, session)
}

func getSession(c *gin.Context) (auth.Session, bool) {
	value, ok := c.Get(authSessionKey)
	if !ok {
		return auth.Session{}, false
	}
	session, ok := value.(auth.Session)
	return session, ok
}

// cookieSettings describes the session cookie.
type cookieSettings struct {
	name     string
	forceTLS bool
	lifetime time.Duration
}

func (s cookieSettings) secure(c *gin.Context) bool {
	return s.forceTLS || c.Request.TLS != nil
}

func (h *Handler) setSessionCookie(c *gin.Context, issued auth.Issued) {
	maxAge := int(time.Until(issued.Session.Expires).Seconds())
	if maxAge <= 0 {
		maxAge = int(h.cookies.lifetime.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookies.name, issued.Token, maxAge, "/", "", h.cookies.secure(c), true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookies.name, "", -1, "/", "", h.cookies.secure(c), true)
}

func (h *Handler) sessionCookie(c *gin.Context) string {
	value, err := c.Cookie(h.cookies.name)
	if err != nil {
		return ""
	}
	return value
}
