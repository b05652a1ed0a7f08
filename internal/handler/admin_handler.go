package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/service"
)

type addBalanceRequest struct {
	UserID string              `json:"userId"`
	Amount decimal.NullDecimal `json:"amount"`
}

type reviewRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"adminNotes"`
}

func (h *Handler) adminListUsers(c *gin.Context) {
	users, err := h.svc.Admin.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) adminGetUser(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.Admin.UserDetails(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d.User)
}

func (h *Handler) adminUserDetails(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.Admin.UserDetails(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) adminUpdateUser(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var in service.UserUpdate
	if !h.bindJSON(c, &in) {
		return
	}
	if err := h.svc.Admin.UpdateUser(c.Request.Context(), id, in); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func (h *Handler) adminSetActive(active bool) gin.HandlerFunc {
	msg := "User banned successfully"
	if active {
		msg = "User unbanned successfully"
	}
	return func(c *gin.Context) {
		id, ok := h.uuidParam(c, "id")
		if !ok {
			return
		}
		if err := h.svc.Admin.SetActive(c.Request.Context(), id, active); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Admin.DeleteUser(c.Request.Context(), currentUser(c).ID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *Handler) adminAddBalance(c *gin.Context) {
	var req addBalanceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id, err := uuid.Parse(req.UserID)
	if err != nil {
		h.badRequest(c, "Valid user ID is required")
		return
	}
	u, err := h.svc.Admin.AddBalance(c.Request.Context(), id, req.Amount.Decimal)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Balance added successfully", "newBalance": u.Balance})
}

func (h *Handler) adminListTransactions(c *gin.Context) {
	txs, err := h.svc.Admin.ListTransactions(c.Request.Context(), c.Query("type"), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *Handler) adminReviewTransaction(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tx, err := h.svc.Admin.ReviewTransaction(c.Request.Context(), id, req.Status, req.AdminNotes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Transaction " + string(tx.Status) + " successfully",
		"transaction": tx,
	})
}

func (h *Handler) adminDashboard(c *gin.Context) {
	stats, err := h.svc.Admin.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) adminDashboardDetailed(c *gin.Context) {
	stats, err := h.svc.Admin.DashboardDetailed(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) adminResetDatabase(c *gin.Context) {
	if err := h.svc.Admin.ResetDatabase(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Warnw("database reset", "admin_id", currentUser(c).ID)
	c.JSON(http.StatusOK, gin.H{"message": "Database reset successfully - All users retained with clean slate"})
}
