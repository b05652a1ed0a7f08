package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SinaHo/investment-backend/internal/service"
)

func (h *Handler) updateProfile(c *gin.Context) {
	var req service.ProfileUpdate
	if !h.bindJSON(c, &req) {
		return
	}
	u, err := h.svc.Profile.Update(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	photo, err := formFile(c, "photo")
	if err != nil {
		h.badRequest(c, "Invalid upload")
		return
	}
	defer closeFile(photo)

	var in io.Reader
	if photo != nil {
		in = photo
	}
	path, err := h.svc.Profile.UploadPhoto(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoPath": path})
}

func (h *Handler) updatePayout(c *gin.Context) {
	var req service.PayoutUpdate
	if !h.bindJSON(c, &req) {
		return
	}
	u, err := h.svc.Profile.UpdatePayout(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment methods updated successfully", "user": u})
}
