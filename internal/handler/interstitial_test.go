package handler

import (
	"strings"
	"testing"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/service"
)

func TestRenderInterstitial(t *testing.T) {
	page, err := renderInterstitial(interstitialData{
		Meta: service.ProductMetadata{
			ResourceID:  "P1",
			Title:       "Red Sneakers",
			Description: "Limited edition.",
			Image:       "https://fai-x.com/images/p1.jpg",
		},
		RedirectURL: "https://play.google.com/store/apps/details?id=com.nfc.faix&referrer=click_id%253Dc1",
		PageURL:     "https://links.example.com/share?id=P1",
	})
	if err != nil {
		t.Fatalf("renderInterstitial: %v", err)
	}

	html := string(page)
	for _, want := range []string{
		`property="og:title" content="Red Sneakers"`,
		`property="og:description" content="Limited edition."`,
		`property="og:image" content="https://fai-x.com/images/p1.jpg"`,
		`name="twitter:card" content="summary_large_image"`,
		"click_id%253Dc1",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("interstitial missing %q", want)
		}
	}
}

func TestRenderInterstitial_EscapesMetadata(t *testing.T) {
	page, err := renderInterstitial(interstitialData{
		Meta: service.ProductMetadata{
			Title: `"/><script>alert(1)</script>`,
		},
		RedirectURL: "https://fai-x.com/",
		PageURL:     "https://links.example.com/share?id=P1",
	})
	if err != nil {
		t.Fatalf("renderInterstitial: %v", err)
	}

	if strings.Contains(string(page), "<script>alert(1)</script>") {
		t.Error("metadata was not escaped")
	}
}
