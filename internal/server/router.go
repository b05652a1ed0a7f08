package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SinaHo/investment-backend/internal/handler"
	"github.com/SinaHo/investment-backend/internal/middleware"
	"github.com/SinaHo/investment-backend/internal/upload"
)

// NewRouter mounts the API, the uploaded files and the liveness probe.
// ping reports whether the database is reachable.
func NewRouter(h *handler.Handler, uploadsDir string, ping func(context.Context) error, logger *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	r.Static(strings.TrimSuffix(upload.PublicPrefix, "/"), uploadsDir)
	r.GET("/healthz", func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				logger.Warnw("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.Register(r.Group("/api"))
	return r
}
