package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/foodeat/internal/domain/selection"
)

const (
	selectionPath     = "/api/diet/selection"
	multipartOverhead = 1 << 20
)

// ChooseSelection stores the picked photo and meal type for the viewer.
func (h *Handler) ChooseSelection(c *gin.Context) {
	session, _ := getSession(c)
	if h.maxPhotoBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxPhotoBytes+multipartOverhead)
	}

	header, err := c.FormFile("image")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "image file is required", err))
		return
	}
	if h.maxPhotoBytes > 0 && header.Size > h.maxPhotoBytes {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "payload_too_large", "image exceeds size limit", nil))
		return
	}
	file, err := header.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()

	var reader io.Reader = file
	if h.maxPhotoBytes > 0 {
		reader = io.LimitReader(file, h.maxPhotoBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}

	sel, err := h.selectionSvc.Choose(c.Request.Context(), session.ID, selection.ChooseRequest{
		Image:    data,
		MimeType: header.Header.Get("Content-Type"),
		Type:     c.PostForm("type"),
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, sel)
		return
	}
	c.Redirect(http.StatusSeeOther, analysisPath)
}

// ClearSelection drops the viewer's photo and meal type.
func (h *Handler) ClearSelection(c *gin.Context) {
	session, _ := getSession(c)
	if err := h.selectionSvc.Clear(c.Request.Context(), session.ID); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Photo serves the selected photo bytes.
func (h *Handler) Photo(c *gin.Context) {
	session, _ := getSession(c)
	photo, err := h.selectionSvc.Photo(c.Request.Context(), session.ID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, photo.MimeType, photo.Data)
}
