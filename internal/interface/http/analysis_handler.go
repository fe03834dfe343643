package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/foodeat/internal/domain/analysis"
	"github.com/yanqian/foodeat/internal/domain/auth"
)

const photoPath = "/analysis/photo"

func (h *Handler) load(c *gin.Context) (auth.Session, analysis.Snapshot, bool) {
	session, _ := getSession(c)
	snap, err := h.analysisSvc.Load(c.Request.Context(), analysis.Viewer{ID: session.ID, AccessToken: session.AccessToken})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return session, analysis.Snapshot{}, false
	}
	return session, snap, true
}

// consumeRejection handles a 401 from the diet backend: the viewer is torn down and must
// sign in again. It reports true at most once per rejection.
func (h *Handler) consumeRejection(c *gin.Context, session auth.Session, snap analysis.Snapshot) bool {
	if snap.State.Phase != analysis.PhaseUnauthorized || !h.analysisSvc.ConsumeRedirect(session.ID) {
		return false
	}
	h.logger.Info("diet api rejected session", "viewer", session.ID)
	h.teardownViewer(c, session.ID)
	return true
}

func setDeviceHeaders(c *gin.Context) {
	c.Header("Accept-CH", "Sec-CH-UA-Mobile")
	c.Writer.Header().Add("Vary", "Sec-CH-UA-Mobile, User-Agent")
}

// AnalysisPage renders the analysis screen.
func (h *Handler) AnalysisPage(c *gin.Context) {
	session, snap, ok := h.load(c)
	if !ok {
		return
	}
	if h.consumeRejection(c, session, snap) {
		h.clearSessionCookie(c)
		c.Redirect(http.StatusSeeOther, h.signInPath)
		return
	}

	setDeviceHeaders(c)
	view := analysis.BuildView(snap, deviceFromRequest(c.Request), h.messages)
	if view.Loading {
		h.views.render(c, http.StatusOK, "loading", pageData{Placeholder: view.Placeholder, Refresh: loadingRefreshSeconds})
		return
	}
	h.views.render(c, http.StatusOK, "analysis", pageData{
		SignedIn: true,
		Nickname: session.Nickname,
		View:     view,
		PhotoURL: photoPath,
		Upload:   uploadForm{Action: selectionPath, MaxSize: h.maxPhotoBytes},
	})
}

// AnalysisView returns the same screen as JSON.
func (h *Handler) AnalysisView(c *gin.Context) {
	session, snap, ok := h.load(c)
	if !ok {
		return
	}
	if h.consumeRejection(c, session, snap) {
		h.clearSessionCookie(c)
		c.Header("Location", h.signInPath)
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "sign-in required", nil))
		return
	}
	setDeviceHeaders(c)
	c.JSON(http.StatusOK, analysis.BuildView(snap, deviceFromRequest(c.Request), h.messages))
}

// AnalysisStream pushes the view as Server-Sent Events until the submission settles.
func (h *Handler) AnalysisStream(c *gin.Context) {
	session, snap, ok := h.load(c)
	if !ok {
		return
	}
	updates, stop, err := h.analysisSvc.Watch(session.ID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	defer stop()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	device := deviceFromRequest(c.Request)
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case state, open := <-updates:
			if !open {
				return
			}
			snap.State = state
			if h.consumeRejection(c, session, snap) {
				h.writeEvent(c, "redirect", gin.H{"location": h.signInPath})
				flusher.Flush()
				return
			}
			view := analysis.BuildView(snap, device, h.messages)
			h.writeEvent(c, "", view)
			flusher.Flush()
			if !view.Loading {
				return
			}
		}
	}
}

func (h *Handler) writeEvent(c *gin.Context, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal event failed", "error", err)
		return
	}
	if event != "" {
		c.Writer.Write([]byte("event: " + event + "\n"))
	}
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(data)
	c.Writer.Write([]byte("\n\n"))
}
