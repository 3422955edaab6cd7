package deeplink_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/deeplink"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
)

func testResolver() *deeplink.Resolver {
	return deeplink.NewResolver(deeplink.Config{
		Domain:          "links.example.com",
		AppScheme:       "faix",
		AppPackage:      "com.nfc.faix",
		AndroidStoreURL: "https://play.google.com/store/apps/details?id=com.nfc.faix",
		IOSStoreURL:     "https://apps.apple.com/us/app/fai-x/id6737755560",
		LandingPage:     "https://fai-x.com/",
	})
}

func TestRedirectURL_AndroidReferrerPayload(t *testing.T) {
	r := testResolver()

	got := r.RedirectURL(domain.PlatformAndroid, "click-1", "USER1", "P1")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse redirect URL: %v", err)
	}
	if u.Host != "play.google.com" {
		t.Errorf("host: got %q, want play.google.com", u.Host)
	}
	if appID := u.Query().Get("id"); appID != "com.nfc.faix" {
		t.Errorf("store id param: got %q", appID)
	}

	// One decode layer off, the referrer payload still carries pre-encoded
	// separators for the install-referrer mechanism to strip.
	referrer := u.Query().Get("referrer")
	want := "click_id%3Dclick-1%26ref%3DUSER1%26id%3DP1"
	if referrer != want {
		t.Errorf("referrer payload: got %q, want %q", referrer, want)
	}

	// On the wire the payload is therefore doubly percent-encoded.
	if !strings.Contains(got, "click_id%253Dclick-1") {
		t.Errorf("raw URL missing doubly-encoded click_id: %q", got)
	}
}

func TestRedirectURL_AndroidOmitsEmptyParts(t *testing.T) {
	r := testResolver()

	got := r.RedirectURL(domain.PlatformAndroid, "click-1", "", "")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse redirect URL: %v", err)
	}
	if referrer := u.Query().Get("referrer"); referrer != "click_id%3Dclick-1" {
		t.Errorf("referrer payload: got %q", referrer)
	}
}

func TestRedirectURL_IOSProbePage(t *testing.T) {
	r := testResolver()

	got := r.RedirectURL(domain.PlatformIOS, "click-1", "USER1", "P1")
	want := "https://links.example.com/open?clickId=click-1&id=P1&ref=USER1"
	if got != want {
		t.Errorf("iOS redirect: got %q, want %q", got, want)
	}
}

func TestRedirectURL_WebLandsOnLandingPage(t *testing.T) {
	r := testResolver()

	if got := r.RedirectURL(domain.PlatformWeb, "click-1", "", "P1"); got != "https://fai-x.com/" {
		t.Errorf("web redirect: got %q", got)
	}
}

func TestLinks_Product(t *testing.T) {
	r := testResolver()

	links := r.Links("click-1", "USER1", "P1")

	if want := "faix://product/P1?clickId=click-1&ref=USER1"; links.CustomScheme != want {
		t.Errorf("custom scheme: got %q, want %q", links.CustomScheme, want)
	}
	if want := "intent://product/P1?clickId=click-1&ref=USER1#Intent;scheme=faix;package=com.nfc.faix;end"; links.AndroidIntent != want {
		t.Errorf("android intent: got %q, want %q", links.AndroidIntent, want)
	}
	if want := "https://links.example.com/product/P1?clickId=click-1&ref=USER1"; links.UniversalLink != want {
		t.Errorf("universal link: got %q, want %q", links.UniversalLink, want)
	}
}

func TestLinks_InviteWithoutResource(t *testing.T) {
	r := testResolver()

	links := r.Links("click-1", "", "")

	if want := "faix://invite?clickId=click-1"; links.CustomScheme != want {
		t.Errorf("custom scheme: got %q, want %q", links.CustomScheme, want)
	}
	if !strings.HasPrefix(links.UniversalLink, "https://links.example.com/invite") {
		t.Errorf("universal link: got %q", links.UniversalLink)
	}
}

func TestStoreURL(t *testing.T) {
	r := testResolver()

	tests := []struct {
		platform domain.Platform
		want     string
	}{
		{domain.PlatformAndroid, "https://play.google.com/store/apps/details?id=com.nfc.faix"},
		{domain.PlatformIOS, "https://apps.apple.com/us/app/fai-x/id6737755560"},
		{domain.PlatformWeb, "https://fai-x.com/"},
	}
	for _, tt := range tests {
		if got := r.StoreURL(tt.platform); got != tt.want {
			t.Errorf("StoreURL(%s): got %q, want %q", tt.platform, got, tt.want)
		}
	}
}
