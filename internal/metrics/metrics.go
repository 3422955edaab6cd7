// Package metrics exposes prometheus counters for the attribution flows and
// the /metrics scrape endpoint.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ClicksRecorded counts captured click records by platform.
	ClicksRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deeplink_clicks_recorded_total",
		Help: "Number of attribution click records captured, by platform.",
	}, []string{"platform"})

	// ShareLinksGenerated counts generated share links.
	ShareLinksGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deeplink_share_links_generated_total",
		Help: "Number of share links generated.",
	})

	// RateLimited counts requests rejected by the admission controller.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deeplink_rate_limited_total",
		Help: "Number of requests rejected by the rate limiter.",
	})
)

// Handler returns the /metrics scrape handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
