package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/SinaHo/investment-backend/internal/service"
)

type withdrawalRequest struct {
	Amount        decimal.NullDecimal `json:"amount"`
	PaymentMethod string              `json:"paymentMethod"`
}

func (h *Handler) listTransactions(c *gin.Context) {
	txs, err := h.svc.Wallet.ListTransactions(c.Request.Context(), currentUser(c).ID, c.Query("type"), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// deposit accepts multipart form fields amount, paymentMethod,
// transactionNumber and the screenshot file.
func (h *Handler) deposit(c *gin.Context) {
	shot, err := formFile(c, "screenshot")
	if err != nil {
		h.badRequest(c, "Invalid upload")
		return
	}
	defer closeFile(shot)

	in := service.DepositInput{
		Amount:            c.PostForm("amount"),
		PaymentMethod:     c.PostForm("paymentMethod"),
		TransactionNumber: c.PostForm("transactionNumber"),
	}
	if shot != nil {
		in.Screenshot = shot
	}
	tx, err := h.svc.Wallet.RequestDeposit(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) withdraw(c *gin.Context) {
	var req withdrawalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Wallet.RequestWithdrawal(c.Request.Context(), currentUser(c).ID, req.Amount.Decimal, req.PaymentMethod)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) withdrawableBalance(c *gin.Context) {
	bal, err := h.svc.Wallet.WithdrawableBalance(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

func (h *Handler) listReferrals(c *gin.Context) {
	refs, err := h.svc.Wallet.ListReferrals(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, refs)
}
