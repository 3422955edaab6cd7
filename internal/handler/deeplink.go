package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/deeplink"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
	apperrors "github.com/chuthuong2004/selfhost-deeplink-demo/internal/errors"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/middleware"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/probe"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/service"
)

// DeepLinkHandler serves the redirect surface: share clicks, invites,
// universal-link product opens, the probe page, and referral lookup.
type DeepLinkHandler struct {
	shares   *service.ShareService
	meta     *service.MetadataService
	resolver *deeplink.Resolver
	domain   string
	log      logger.Logger
}

// NewDeepLinkHandler creates a DeepLinkHandler. domain is the externally
// visible host, used for canonical URLs on the interstitial.
func NewDeepLinkHandler(shares *service.ShareService, meta *service.MetadataService, resolver *deeplink.Resolver, domain string, log logger.Logger) *DeepLinkHandler {
	return &DeepLinkHandler{
		shares:   shares,
		meta:     meta,
		resolver: resolver,
		domain:   domain,
		log:      log,
	}
}

// campaignTags collects the utm_* query parameters.
func campaignTags(c *gin.Context) domain.CampaignTags {
	return domain.CampaignTags{
		Source:   c.Query("utm_source"),
		Medium:   c.Query("utm_medium"),
		Campaign: c.Query("utm_campaign"),
		Content:  c.Query("utm_content"),
		Term:     c.Query("utm_term"),
	}
}

// capture records the click unless the request came from a known crawler,
// returning the click id ("" for crawlers).
func (h *DeepLinkHandler) capture(c *gin.Context, resID string) string {
	if middleware.IsBot(c) {
		return ""
	}
	rec := h.shares.ProcessClick(service.ClickInput{
		ResourceID:       resID,
		ShareID:          c.Query("shareId"),
		ReferralCode:     c.Query("ref"),
		UserID:           c.Query("userId"),
		ClientIdentifier: c.Request.UserAgent(),
		SourceAddress:    c.ClientIP(),
		CampaignTags:     campaignTags(c),
	})
	return rec.ID
}

// Share handles GET /share: records the click, then serves an interstitial
// carrying social-preview meta tags and an immediate client-side redirect to
// the platform target. Crawlers get the same page without a click record.
func (h *DeepLinkHandler) Share(c *gin.Context) {
	resID := resourceID(c)
	if resID == "" {
		respondError(c, apperrors.NewValidation("id", "is required"))
		return
	}

	ref := c.Query("ref")
	platform := domain.DetectPlatform(c.Request.UserAgent())
	clickID := h.capture(c, resID)

	redirectURL := h.resolver.RedirectURL(platform, clickID, ref, resID)

	page, err := renderInterstitial(interstitialData{
		Meta:        h.meta.Get(resID),
		RedirectURL: redirectURL,
		PageURL:     "https://" + h.domain + c.Request.URL.RequestURI(),
	})
	if err != nil {
		h.log.Error("Interstitial render failed", logger.Error(err))
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Invite handles GET /invite: a generic referral entry point with no resource
// behind it. The click is recorded and the user is sent straight to the
// platform target.
func (h *DeepLinkHandler) Invite(c *gin.Context) {
	ref := c.Query("ref")
	platform := domain.DetectPlatform(c.Request.UserAgent())
	clickID := h.capture(c, "")

	c.Redirect(http.StatusFound, h.resolver.RedirectURL(platform, clickID, ref, ""))
}

// Product handles GET /product/:productId, the path claimed by the app's
// universal/app links. A browser landing here means the app is not installed;
// a click is recorded unless the caller already carries one, then the probe
// page takes over.
func (h *DeepLinkHandler) Product(c *gin.Context) {
	resID := c.Param("productId")
	ref := c.Query("ref")

	clickID := c.Query("clickId")
	if clickID == "" {
		clickID = h.capture(c, resID)
	}

	params := url.Values{}
	params.Set("id", resID)
	if clickID != "" {
		params.Set("clickId", clickID)
	}
	if ref != "" {
		params.Set("ref", ref)
	}
	c.Redirect(http.StatusFound, "/open?"+params.Encode())
}

// Open handles GET /open: serves the probe page that attempts to open the
// app and falls back to the store.
func (h *DeepLinkHandler) Open(c *gin.Context) {
	clickID := c.Query("clickId")
	ref := c.Query("ref")
	resID := resourceID(c)
	platform := domain.DetectPlatform(c.Request.UserAgent())

	page, err := probe.RenderPage(probe.PageParams{
		Platform:   platform,
		Links:      h.resolver.Links(clickID, ref, resID),
		StoreURL:   h.resolver.StoreURL(platform),
		ResourceID: resID,
	})
	if err != nil {
		h.log.Error("Probe page render failed", logger.Error(err))
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Referrer handles GET /referrer/:id: the endpoint the app calls after
// install to retrieve the deferred deep-link context for a click id.
func (h *DeepLinkHandler) Referrer(c *gin.Context) {
	rec, err := h.shares.GetClick(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, rec)
}

// ShortLink handles GET /s/:shareId: expands a short link into the full
// /share URL and redirects there.
func (h *DeepLinkHandler) ShortLink(c *gin.Context) {
	rec, err := h.shares.GetClick(c.Param("shareId"))
	if err != nil || rec.Kind != domain.KindShareLink {
		respondError(c, apperrors.NewNotFound("share link", c.Param("shareId")))
		return
	}

	params := url.Values{}
	params.Set("id", rec.ResourceID)
	params.Set("shareId", rec.ShareID)
	if rec.ReferralCode != "" {
		params.Set("ref", rec.ReferralCode)
	}
	if rec.UserID != "" {
		params.Set("userId", rec.UserID)
	}
	c.Redirect(http.StatusFound, "/share?"+params.Encode())
}
