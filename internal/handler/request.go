package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body into dst, replying 400 on malformed input.
func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.badRequest(c, "Invalid request body")
		return false
	}
	return true
}

// formFile opens an optional multipart file. A missing file yields a nil
// reader and no error.
func formFile(c *gin.Context, field string) (io.ReadCloser, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fh.Open()
}

func closeFile(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}
