package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WellKnownHandler serves the app-link association documents the platforms
// fetch to verify this domain's universal/app link claims.
type WellKnownHandler struct {
	appleAppID string
	appPackage string
	certSHA256 string
}

// NewWellKnownHandler creates a WellKnownHandler. appleAppID is the
// TeamID.BundleID pair; certSHA256 is the Android signing certificate
// fingerprint and may be empty during development.
func NewWellKnownHandler(appleAppID, appPackage, certSHA256 string) *WellKnownHandler {
	return &WellKnownHandler{
		appleAppID: appleAppID,
		appPackage: appPackage,
		certSHA256: certSHA256,
	}
}

// AppleAppSiteAssociation handles GET /.well-known/apple-app-site-association
// (and the legacy root path). The claimed paths match the routes the probe
// page and share links use.
func (h *WellKnownHandler) AppleAppSiteAssociation(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"applinks": gin.H{
			"apps": []string{},
			"details": []gin.H{{
				"appID": h.appleAppID,
				"paths": []string{"/product/*", "/invite", "/share"},
			}},
		},
	})
}

// AssetLinks handles GET /.well-known/assetlinks.json for Android App Links.
func (h *WellKnownHandler) AssetLinks(c *gin.Context) {
	fingerprints := []string{}
	if h.certSHA256 != "" {
		fingerprints = append(fingerprints, h.certSHA256)
	}

	c.JSON(http.StatusOK, []gin.H{{
		"relation": []string{"delegate_permission/common.handle_all_urls"},
		"target": gin.H{
			"namespace":                "android_app",
			"package_name":             h.appPackage,
			"sha256_cert_fingerprints": fingerprints,
		},
	}})
}
