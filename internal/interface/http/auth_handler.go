package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/foodeat/internal/domain/auth"
)

const directSignInPath = "/api/auth/token"

// SignIn starts the OAuth round trip, or shows the direct token form when that is the only option.
func (h *Handler) SignIn(c *gin.Context) {
	form := signInForm{Action: directSignInPath, Direct: h.authSvc.DirectSignInEnabled()}

	if h.authSvc.OAuthEnabled() {
		state, verifier, challenge, err := auth.NewOAuthState()
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_error", "failed to start sign-in", err))
			return
		}
		url, err := h.authSvc.SignInURL(c.Request.Context(), state, challenge)
		if err != nil {
			abortWithError(c, fromDomainError(err))
			return
		}
		h.setOAuthStateCookie(c, state, verifier)
		if !form.Direct {
			c.Redirect(http.StatusFound, url)
			return
		}
		form.OAuthURL = url
	}

	if !form.Direct && form.OAuthURL == "" {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "auth_not_configured", "sign-in is not configured", nil))
		return
	}
	h.views.render(c, http.StatusOK, "signin", pageData{SignIn: form})
}

// Callback completes the OAuth round trip and issues the session cookie.
func (h *Handler) Callback(c *gin.Context) {
	stored, ok := readOAuthStateCookie(c)
	h.clearOAuthStateCookie(c)
	if !ok || stored.State != c.Query("state") {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_state", "sign-in state mismatch", nil))
		return
	}
	if reason := c.Query("error"); reason != "" {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "oauth_denied", "sign-in was cancelled", nil))
		return
	}
	issued, err := h.authSvc.Callback(c.Request.Context(), c.Query("code"), stored.CodeVerifier)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	h.setSessionCookie(c, issued)
	c.Redirect(http.StatusFound, h.postLoginRedirect)
}

// DirectSignIn accepts an access token issued by the diet backend.
func (h *Handler) DirectSignIn(c *gin.Context) {
	var req auth.DirectSignInRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	issued, err := h.authSvc.DirectSignIn(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	h.clearOAuthStateCookie(c)
	h.setSessionCookie(c, issued)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"session": issued.Session})
		return
	}
	c.Redirect(http.StatusSeeOther, h.postLoginRedirect)
}

// SignOut clears the cookie and tears down the viewer's selection and analysis.
func (h *Handler) SignOut(c *gin.Context) {
	session, status := h.authSvc.Resolve(c.Request.Context(), h.sessionCookie(c), false)
	if status == auth.StatusAuthenticated {
		h.teardownViewer(c, session.ID)
	}
	h.clearSessionCookie(c)
	h.clearOAuthStateCookie(c)
	if wantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, h.signInPath)
}

func (h *Handler) teardownViewer(c *gin.Context, viewerID string) {
	h.analysisSvc.Release(viewerID)
	if err := h.selectionSvc.Clear(c.Request.Context(), viewerID); err != nil {
		h.logger.Warn("failed to clear selection", "viewer", viewerID, "error", err)
	}
}
