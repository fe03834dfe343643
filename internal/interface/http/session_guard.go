package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/foodeat/internal/domain/auth"
)

type guardMode int

const (
	guardPage guardMode = iota
	guardAPI
)

const loadingRefreshSeconds = 2

// sessionGuard admits authenticated viewers. Page routes send everyone else to sign-in,
// API routes answer 401. A sign-in still in flight only shows the loading placeholder.
func (h *Handler) sessionGuard(mode guardMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie := h.sessionCookie(c)
		session, status := h.authSvc.Resolve(c.Request.Context(), cookie, signInPending(c))
		switch status {
		case auth.StatusAuthenticated:
			setSession(c, session)
			c.Next()
		case auth.StatusLoading:
			if mode == guardPage {
				h.views.render(c, http.StatusOK, "loading", pageData{Placeholder: h.messages.Loading, Refresh: loadingRefreshSeconds})
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": string(auth.StatusLoading)})
		default:
			if cookie != "" {
				h.clearSessionCookie(c)
			}
			if mode == guardPage {
				c.Redirect(http.StatusSeeOther, h.signInPath)
				c.Abort()
				return
			}
			c.Header("Location", h.signInPath)
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "sign-in required", nil))
		}
	}
}
