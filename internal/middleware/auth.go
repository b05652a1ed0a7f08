package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/model"
)

const currentUserKey = "currentUser"

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved user on the gin context.
func RequireAuth(logger *zap.SugaredLogger, auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			abort(c, http.StatusUnauthorized, "Access token required")
			return
		}

		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			code := apperr.GetCode(err)
			if code == apperr.CodeUnknown {
				logger.Errorw("authenticate request", "error", err)
			} else {
				logger.Debugw("rejected token", "path", c.FullPath(), "code", code)
			}
			abort(c, code.HTTPStatus(), apperr.Message(err, "Internal server error"))
			return
		}
		c.Set(currentUserKey, u)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin() {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// SetCurrentUser is used by tests that bypass token handling.
func SetCurrentUser(c *gin.Context, u *model.User) {
	c.Set(currentUserKey, u)
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}
