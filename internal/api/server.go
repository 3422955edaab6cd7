package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/server"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// NewServer creates the HTTP server with the full route table mounted.
func NewServer(deps Dependencies) *server.Server {
	cfg := deps.Config

	return server.NewBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(deps.Logger).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(defaultReadTimeout, defaultWriteTimeout, defaultIdleTimeout).
		WithHealthCheck("store", server.StoreHealthChecker(deps.Store.Ping)).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, deps)
		}).
		Build()
}
