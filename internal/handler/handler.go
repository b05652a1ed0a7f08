// Package handler exposes the services over the REST API.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/middleware"
	"github.com/SinaHo/investment-backend/internal/model"
	"github.com/SinaHo/investment-backend/internal/service"
)

// AccrualRunner runs one accrual cycle on demand.
type AccrualRunner interface {
	RunOnce(ctx context.Context) (*service.AccrualSummary, bool, error)
}

// Services bundles everything the handlers call.
type Services struct {
	Auth        service.AuthService
	Investments service.InvestmentService
	Accrual     service.AccrualService
	Wallet      service.WalletService
	Profile     service.ProfileService
	Support     service.SupportService
	Payments    service.PaymentService
	Admin       service.AdminService
	Runner      AccrualRunner
}

type Handler struct {
	svc    Services
	logger *zap.SugaredLogger
}

func New(svc Services, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts every route under api.
func (h *Handler) Register(api *gin.RouterGroup) {
	auth := middleware.RequireAuth(h.logger, h.svc.Auth)

	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	api.GET("/payment-methods", h.listActiveMethods)
	api.GET("/payment-config", h.getPaymentConfig)
	api.GET("/config/telegram", h.getTelegramLink)

	user := api.Group("", auth)
	{
		user.GET("/auth/me", h.me)
		user.GET("/investment-plans", h.listPlans)
		user.GET("/investments", h.listInvestments)
		user.POST("/investments", h.purchase)
		user.GET("/transactions", h.listTransactions)
		user.POST("/deposit", h.deposit)
		user.POST("/withdrawal", h.withdraw)
		user.GET("/withdrawal/balance", h.withdrawableBalance)
		user.GET("/referrals", h.listReferrals)
		user.GET("/daily-returns", h.listDailyReturns)

		user.PUT("/profile", h.updateProfile)
		user.PUT("/profile/password", h.changePassword)
		user.POST("/profile/photo", h.uploadPhoto)
		user.PUT("/profile/payment-methods", h.updatePayout)

		user.POST("/support/chat", h.createChat)
		user.GET("/support/chats", h.listChats)
		user.GET("/support/chat/:chatId", h.openChat)
		user.POST("/support/chat/:chatId/message", h.postMessage)
	}

	admin := api.Group("/admin", auth, middleware.RequireAdmin())
	{
		admin.GET("/users", h.adminListUsers)
		admin.GET("/users/:id", h.adminGetUser)
		admin.GET("/users/:id/details", h.adminUserDetails)
		admin.PUT("/users/:id", h.adminUpdateUser)
		admin.PUT("/users/:id/ban", h.adminSetActive(false))
		admin.PUT("/users/:id/unban", h.adminSetActive(true))
		admin.DELETE("/users/:id", h.adminDeleteUser)
		admin.PUT("/change-password", h.adminChangePassword)
		admin.POST("/add-balance", h.adminAddBalance)

		admin.GET("/transactions", h.adminListTransactions)
		admin.PUT("/transactions/:id", h.adminReviewTransaction)
		admin.GET("/dashboard", h.adminDashboard)
		admin.GET("/dashboard-detailed", h.adminDashboardDetailed)

		admin.GET("/payment-methods", h.adminListMethods)
		admin.POST("/payment-methods", h.adminCreateMethod)
		admin.PUT("/payment-methods/:id", h.adminUpdateMethod)
		admin.DELETE("/payment-methods/:id", h.adminDeleteMethod)
		admin.GET("/payment-config", h.getPaymentConfig)
		admin.PUT("/payment-config", h.adminSavePaymentConfig)
		admin.PUT("/config/telegram", h.adminSetTelegramLink)

		admin.GET("/support/chats", h.adminListChats)
		admin.GET("/support/messages/:chatId", h.openChat)
		admin.POST("/support/messages/:chatId", h.postMessage)
		admin.PUT("/support/chat/:chatId/status", h.adminSetChatStatus)

		admin.PUT("/investments/:id/cancel", h.adminCancelInvestment)
		admin.POST("/daily-returns/run", h.adminRunDailyReturns)
		admin.POST("/reset-database", h.adminResetDatabase)
	}
}

// fail writes err as {"message": ...}. Errors without a domain code are
// logged and hidden behind a generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	code := apperr.GetCode(err)
	if code == apperr.CodeUnknown {
		h.logger.Errorw("request failed", "route", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(code.HTTPStatus(), gin.H{"message": apperr.Message(err, "")})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}

func currentUser(c *gin.Context) *model.User {
	return middleware.CurrentUser(c)
}

// uuidParam parses a path parameter, replying 400 when it is malformed.
func (h *Handler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.badRequest(c, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}
