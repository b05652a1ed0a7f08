package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/middleware"
	"github.com/SinaHo/investment-backend/internal/model"
)

type authFunc func(ctx context.Context, token string) (*model.User, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (*model.User, error) {
	return f(ctx, token)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(auth middleware.Authenticator, admin bool) *gin.Engine {
	r := gin.New()
	chain := []gin.HandlerFunc{middleware.RequireAuth(zap.NewNop().Sugar(), auth)}
	if admin {
		chain = append(chain, middleware.RequireAdmin())
	}
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": middleware.CurrentUser(c).Username})
	})
	r.GET("/p", chain...)
	return r
}

func do(r http.Handler, header string) (int, map[string]string) {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	body := map[string]string{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestRequireAuth(t *testing.T) {
	alice := &model.User{ID: uuid.New(), Username: "alice", Role: model.RoleUser}
	auth := authFunc(func(_ context.Context, token string) (*model.User, error) {
		switch token {
		case "good":
			return alice, nil
		case "banned":
			return nil, apperr.New(apperr.CodeAccountDisabled, "Account has been suspended")
		default:
			return nil, apperr.New(apperr.CodePermissionDenied, "Invalid or expired token")
		}
	})
	r := newRouter(auth, false)

	code, body := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Access token required", body["message"])

	code, _ = do(r, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = do(r, "Bearer nope")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Invalid or expired token", body["message"])

	code, body = do(r, "Bearer banned")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Account has been suspended", body["message"])

	code, body = do(r, "Bearer good")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", body["username"])
}

func TestRequireAdmin(t *testing.T) {
	role := model.RoleUser
	auth := authFunc(func(context.Context, string) (*model.User, error) {
		return &model.User{ID: uuid.New(), Username: "root", Role: role}, nil
	})
	r := newRouter(auth, true)

	code, body := do(r, "Bearer t")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", body["message"])

	role = model.RoleAdmin
	code, _ = do(r, "Bearer t")
	assert.Equal(t, http.StatusOK, code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(middleware.RequestLogger(zap.New(core).Sugar()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", entries[0].ContextMap()["route"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.EqualValues(t, 500, entries[1].ContextMap()["status"])
}

func TestUnaryLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	intercept := middleware.UnaryLoggingInterceptor(zap.New(core).Sugar())
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := intercept(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.Unavailable, "draining")
	})
	require.Error(t, err)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/grpc.health.v1.Health/Check", fields["method"])
	assert.Equal(t, "Unavailable", fields["code"])
}
