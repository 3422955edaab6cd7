// Package deeplink computes navigation targets for captured clicks: the
// platform-aware store redirect and the deep-link URL set embedded in the
// app-open probe page. Everything here is pure given its configuration; no
// I/O happens at resolve time.
package deeplink

import (
	"net/url"
	"strings"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
)

// Config carries the link-building parameters.
type Config struct {
	// Domain is the externally visible host of this server.
	Domain string
	// AppScheme is the custom URL scheme registered by the app.
	AppScheme string
	// AppPackage is the Android application id used in intent URLs.
	AppPackage string

	AndroidStoreURL string
	IOSStoreURL     string
	LandingPage     string
}

// Resolver produces redirect targets from platform and attribution identity.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// RedirectURL returns the next navigation target for a captured click.
//
// Android targets the store listing with an install-referrer payload; iOS
// targets this server's /open probe page (there is no install-referrer
// equivalent, so state round-trips through a page the app can query later);
// web and unknown platforms go to the plain landing page.
func (r *Resolver) RedirectURL(platform domain.Platform, clickID, ref, resourceID string) string {
	switch platform {
	case domain.PlatformAndroid:
		return r.androidStoreURL(clickID, ref, resourceID)
	case domain.PlatformIOS:
		return r.probePageURL(clickID, ref, resourceID)
	default:
		return r.cfg.LandingPage
	}
}

// androidStoreURL builds the Play listing URL with a referrer query
// parameter. The payload is key=value pairs with `=` and `&` pre-encoded as
// %3D and %26; setting it as a query parameter adds one more percent-encoding
// layer, which the install-referrer mechanism strips back off after install.
func (r *Resolver) androidStoreURL(clickID, ref, resourceID string) string {
	u, err := url.Parse(r.cfg.AndroidStoreURL)
	if err != nil {
		return r.cfg.AndroidStoreURL
	}

	pairs := []string{"click_id%3D" + url.QueryEscape(clickID)}
	if ref != "" {
		pairs = append(pairs, "ref%3D"+url.QueryEscape(ref))
	}
	if resourceID != "" {
		pairs = append(pairs, "id%3D"+url.QueryEscape(resourceID))
	}

	q := u.Query()
	q.Set("referrer", strings.Join(pairs, "%26"))
	u.RawQuery = q.Encode()

	return u.String()
}

// probePageURL builds this server's /open page URL with plain query
// parameters.
func (r *Resolver) probePageURL(clickID, ref, resourceID string) string {
	params := url.Values{}
	params.Set("clickId", clickID)
	if ref != "" {
		params.Set("ref", ref)
	}
	if resourceID != "" {
		params.Set("id", resourceID)
	}
	return "https://" + r.cfg.Domain + "/open?" + params.Encode()
}

// Links is the deep-link URL set a probe page attempts, in its three forms.
type Links struct {
	// CustomScheme is the app's own scheme URL, e.g. myapp://product/1.
	CustomScheme string
	// AndroidIntent is the Android intent: URL naming scheme and package.
	AndroidIntent string
	// UniversalLink is the same-origin https URL claimed by the app.
	UniversalLink string
}

// Links builds the deep-link URL set for a click. A resource id routes into
// the product path; without one the generic invite path is used.
func (r *Resolver) Links(clickID, ref, resourceID string) Links {
	path := "invite"
	if resourceID != "" {
		path = "product/" + resourceID
	}

	params := url.Values{}
	if clickID != "" {
		params.Set("clickId", clickID)
	}
	if ref != "" {
		params.Set("ref", ref)
	}
	query := params.Encode()

	suffix := ""
	if query != "" {
		suffix = "?" + query
	}

	return Links{
		CustomScheme:  r.cfg.AppScheme + "://" + path + suffix,
		AndroidIntent: "intent://" + path + "?" + query + "#Intent;scheme=" + r.cfg.AppScheme + ";package=" + r.cfg.AppPackage + ";end",
		UniversalLink: "https://" + r.cfg.Domain + "/" + path + suffix,
	}
}

// StoreURL returns the store listing for a platform, or the landing page when
// the platform has no store.
func (r *Resolver) StoreURL(platform domain.Platform) string {
	switch platform {
	case domain.PlatformAndroid:
		return r.cfg.AndroidStoreURL
	case domain.PlatformIOS:
		return r.cfg.IOSStoreURL
	default:
		return r.cfg.LandingPage
	}
}
