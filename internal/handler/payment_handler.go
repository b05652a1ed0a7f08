package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SinaHo/investment-backend/internal/service"
)

type telegramRequest struct {
	TelegramGroupLink string `json:"telegramGroupLink"`
}

func (h *Handler) listActiveMethods(c *gin.Context) {
	h.listMethods(c, true)
}

func (h *Handler) adminListMethods(c *gin.Context) {
	h.listMethods(c, false)
}

func (h *Handler) listMethods(c *gin.Context, activeOnly bool) {
	methods, err := h.svc.Payments.ListMethods(c.Request.Context(), activeOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, methods)
}

// bindMethod reads a payment method from JSON or from a multipart form
// carrying an optional qrCode file. The returned closer must be called.
func (h *Handler) bindMethod(c *gin.Context) (service.MethodInput, io.ReadCloser, bool) {
	var in service.MethodInput
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, nil, h.bindJSON(c, &in)
	}
	if err := c.ShouldBind(&in); err != nil {
		h.badRequest(c, "Invalid request body")
		return in, nil, false
	}
	qr, err := formFile(c, "qrCode")
	if err != nil {
		h.badRequest(c, "Invalid upload")
		return in, nil, false
	}
	return in, qr, true
}

func (h *Handler) adminCreateMethod(c *gin.Context) {
	in, qr, ok := h.bindMethod(c)
	if !ok {
		return
	}
	defer closeFile(qr)

	var file io.Reader
	if qr != nil {
		file = qr
	}
	m, err := h.svc.Payments.CreateMethod(c.Request.Context(), in, file)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) adminUpdateMethod(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	in, qr, ok := h.bindMethod(c)
	if !ok {
		return
	}
	defer closeFile(qr)

	var file io.Reader
	if qr != nil {
		file = qr
	}
	m, err := h.svc.Payments.UpdateMethod(c.Request.Context(), id, in, file)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) adminDeleteMethod(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Payments.DeleteMethod(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted successfully"})
}

func (h *Handler) getPaymentConfig(c *gin.Context) {
	cfg, err := h.svc.Payments.GetConfig(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) adminSavePaymentConfig(c *gin.Context) {
	var in service.ConfigInput
	if !h.bindJSON(c, &in) {
		return
	}
	if _, err := h.svc.Payments.SaveConfig(c.Request.Context(), in); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment configuration updated successfully"})
}

func (h *Handler) getTelegramLink(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"telegramGroupLink": h.svc.Payments.TelegramLink(c.Request.Context())})
}

func (h *Handler) adminSetTelegramLink(c *gin.Context) {
	var req telegramRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.svc.Payments.SetTelegramLink(c.Request.Context(), req.TelegramGroupLink); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Telegram group link updated successfully"})
}
