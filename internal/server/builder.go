package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
)

// Builder provides a fluent API for assembling the HTTP server.
type Builder struct {
	config       *Config
	logger       logger.Logger
	setupRoutes  func(*gin.Engine)
	healthChecks map[string]HealthChecker
}

// NewBuilder creates a server builder for the given service name and port.
func NewBuilder(serviceName string, port int) *Builder {
	return &Builder{
		config:       NewConfig(serviceName, port),
		healthChecks: make(map[string]HealthChecker),
	}
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.logger = log
	return b
}

// WithDebug enables or disables debug mode.
func (b *Builder) WithDebug(debug bool) *Builder {
	b.config.Debug = debug
	return b
}

// WithVersion sets the service version.
func (b *Builder) WithVersion(version string) *Builder {
	b.config.ServiceVersion = version
	return b
}

// WithTimeouts sets all timeout values for the HTTP server.
func (b *Builder) WithTimeouts(read, write, idle time.Duration) *Builder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithHealthCheck adds a named health check.
func (b *Builder) WithHealthCheck(name string, checker HealthChecker) *Builder {
	b.healthChecks[name] = checker
	return b
}

// WithRoutes sets the route setup function.
func (b *Builder) WithRoutes(setupRoutes func(*gin.Engine)) *Builder {
	b.setupRoutes = setupRoutes
	return b
}

// Build creates the server with all configured options.
func (b *Builder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.Must(logger.Config{
			Level:       "info",
			Development: b.config.Debug,
		})
	}

	wrappedSetup := func(router *gin.Engine) {
		registerHealthRoutes(router, b.config.ServiceName, b.config.ServiceVersion, b.healthChecks)
		if b.setupRoutes != nil {
			b.setupRoutes(router)
		}
	}

	return NewServer(b.config, b.logger, wrappedSetup)
}
