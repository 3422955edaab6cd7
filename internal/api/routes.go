// Package api assembles the HTTP surface: it wires the handlers, the rate
// limiter, and the crawler filter onto the router and builds the server.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/config"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/deeplink"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/handler"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/metrics"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/middleware"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/service"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/storage"
)

// Dependencies carries everything route registration needs.
type Dependencies struct {
	Config   *config.Config
	Logger   logger.Logger
	Store    *storage.FileStore
	Shares   *service.ShareService
	Metadata *service.MetadataService
	Resolver *deeplink.Resolver

	// Done stops the rate limiter's background cleanup when closed.
	Done <-chan struct{}
}

// SetupRoutes configures all routes.
// Health routes are registered by the server builder.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	dl := handler.NewDeepLinkHandler(deps.Shares, deps.Metadata, deps.Resolver, cfg.Service.Domain, deps.Logger)
	productAPI := handler.NewProductAPIHandler(deps.Shares, deps.Metadata, deps.Logger)
	debug := handler.NewDebugHandler(deps.Store)
	wellKnown := handler.NewWellKnownHandler(
		cfg.App.IOSTeamID+"."+cfg.App.IOSBundleID,
		cfg.App.Package,
		cfg.App.AndroidCertSHA256,
	)

	router.NoRoute(handler.NotFound())

	// Redirect surface. The crawler filter runs first so link previews get
	// the interstitial without polluting attribution statistics.
	redirects := router.Group("")
	redirects.Use(middleware.BotFilter())
	redirects.GET("/share", dl.Share)
	redirects.GET("/invite", dl.Invite)
	redirects.GET("/product/:productId", dl.Product)
	redirects.GET("/s/:shareId", dl.ShortLink)

	router.GET("/open", dl.Open)
	router.GET("/referrer/:id", dl.Referrer)

	// JSON API behind admission control.
	api := router.Group("/api")
	api.Use(middleware.RateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, deps.Done))
	product := api.Group("/product")
	product.POST("/generate-share-link", productAPI.GenerateShareLink)
	product.GET("/stats/:productId", productAPI.Stats)
	product.GET("/click/:clickId", productAPI.Click)
	product.POST("/update-metadata", productAPI.UpdateMetadata)

	// App-link association documents.
	router.GET("/.well-known/apple-app-site-association", wellKnown.AppleAppSiteAssociation)
	router.GET("/apple-app-site-association", wellKnown.AppleAppSiteAssociation)
	router.GET("/.well-known/assetlinks.json", wellKnown.AssetLinks)

	router.GET("/debug/referrals", debug.Referrals)
	router.GET("/debug/stats", debug.Stats)

	router.GET("/metrics", metrics.Handler())
}
