package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type purchaseRequest struct {
	PlanID int `json:"planId"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) listPlans(c *gin.Context) {
	plans, err := h.svc.Investments.ListPlans(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *Handler) listInvestments(c *gin.Context) {
	invs, err := h.svc.Investments.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}

func (h *Handler) purchase(c *gin.Context) {
	var req purchaseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.PlanID <= 0 {
		h.badRequest(c, "Plan ID is required")
		return
	}
	res, err := h.svc.Investments.Purchase(c.Request.Context(), currentUser(c).ID, req.PlanID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) listDailyReturns(c *gin.Context) {
	returns, err := h.svc.Accrual.ListDailyReturns(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, returns)
}

func (h *Handler) adminCancelInvestment(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req cancelRequest
	// The body is optional.
	_ = c.ShouldBindJSON(&req)
	if err := h.svc.Investments.Cancel(c.Request.Context(), id, req.Reason); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Investment cancelled successfully"})
}

func (h *Handler) adminRunDailyReturns(c *gin.Context) {
	summary, ran, err := h.svc.Runner.RunOnce(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ran {
		c.JSON(http.StatusConflict, gin.H{"message": "Daily returns are already being processed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Daily returns processed", "summary": summary})
}
