package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/api"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/config"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/deeplink"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/service"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/storage"
)

const (
	testDomain = "links.example.com"
	androidUA  = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36"
	iosUA      = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	crawlerUA  = "facebookexternalhit/1.1"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Service: config.ServiceConfig{
			Name:    "deeplink-server",
			Version: "test",
			Port:    8080,
			Domain:  testDomain,
		},
		App: config.AppConfig{
			Scheme:      "faix",
			Package:     "com.nfc.faix",
			IOSTeamID:   "EAYXYBF4LF",
			IOSBundleID: "com.82fai.faix",
		},
		Store: config.StoreConfig{
			AndroidURL:  "https://play.google.com/store/apps/details?id=com.nfc.faix",
			IOSURL:      "https://apps.apple.com/us/app/fai-x/id6737755560",
			LandingPage: "https://fai-x.com/",
		},
		Database: config.DatabaseConfig{
			Path:            filepath.Join(t.TempDir(), "referrals.json"),
			ClickExpiryDays: 30,
			CleanupInterval: 24 * time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			Window:      time.Minute,
			MaxRequests: 100,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *storage.FileStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	store, err := storage.NewFileStore(cfg.Database.Path, log)
	require.NoError(t, err)

	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	router := gin.New()
	api.SetupRoutes(router, api.Dependencies{
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Shares:   service.NewShareService(store, cfg.Service.Domain, log),
		Metadata: service.NewMetadataService(cfg.Store.LandingPage),
		Resolver: deeplink.NewResolver(deeplink.Config{
			Domain:          cfg.Service.Domain,
			AppScheme:       cfg.App.Scheme,
			AppPackage:      cfg.App.Package,
			AndroidStoreURL: cfg.Store.AndroidURL,
			IOSStoreURL:     cfg.Store.IOSURL,
			LandingPage:     cfg.Store.LandingPage,
		}),
		Done: done,
	})
	return router, store
}

func doRequest(router *gin.Engine, method, target, userAgent string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestGenerateShareLinkAndExpandShortLink(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodPost, "/api/product/generate-share-link", "",
		`{"productId":"P1","ref":"USER1","userId":"u-42"}`)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var link struct {
		ShareID   string `json:"shareId"`
		ShortLink string `json:"shortLink"`
		ShareLink string `json:"shareLink"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &link))
	require.NotEmpty(t, link.ShareID)
	assert.Equal(t, "https://"+testDomain+"/s/"+link.ShareID, link.ShortLink)

	w = doRequest(router, http.MethodGet, "/s/"+link.ShareID, androidUA, "")
	require.Equal(t, http.StatusFound, w.Code)

	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/share?"), "location: %s", location)
	assert.Contains(t, location, "id=P1")
	assert.Contains(t, location, "ref=USER1")
	assert.Contains(t, location, "shareId="+link.ShareID)
}

func TestGenerateShareLink_MissingProductID(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodPost, "/api/product/generate-share-link", "", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestShare_RecordsAndroidClick(t *testing.T) {
	router, store := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/share?id=P1&ref=USER1", androidUA, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "play.google.com")
	assert.Contains(t, body, "click_id%253D")

	records := store.All()
	require.Len(t, records, 1)
	assert.Equal(t, domain.KindProductShare, records[0].Kind)
	assert.Equal(t, domain.PlatformAndroid, records[0].Platform)
	assert.Equal(t, "P1", records[0].ResourceID)
	assert.Equal(t, "USER1", records[0].ReferralCode)
}

func TestShare_AcceptsLegacyProductIDParam(t *testing.T) {
	router, store := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/share?productId=P1", androidUA, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.Count())
}

func TestShare_MissingID(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/share", androidUA, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
}

func TestShare_CrawlerGetsPageWithoutRecord(t *testing.T) {
	router, store := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/share?id=P1", crawlerUA, "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Body.String(), "og:title")
	assert.Equal(t, 0, store.Count())
}

func TestInvite_RedirectsAndRecords(t *testing.T) {
	router, store := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/invite?ref=USER1", iosUA, "")
	require.Equal(t, http.StatusFound, w.Code)

	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "https://"+testDomain+"/open?"), "location: %s", location)

	records := store.All()
	require.Len(t, records, 1)
	assert.Equal(t, domain.PlatformIOS, records[0].Platform)
	assert.Empty(t, records[0].ResourceID)
}

func TestProduct_RedirectsToProbePage(t *testing.T) {
	router, store := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/product/P1", androidUA, "")
	require.Equal(t, http.StatusFound, w.Code)

	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/open?"), "location: %s", location)
	assert.Contains(t, location, "id=P1")
	assert.Contains(t, location, "clickId=")

	require.Equal(t, 1, store.Count())
}

func TestProduct_ReusesExistingClickID(t *testing.T) {
	router, store := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/product/P1?clickId=existing-click", androidUA, "")
	require.Equal(t, http.StatusFound, w.Code)

	assert.Contains(t, w.Header().Get("Location"), "clickId=existing-click")
	assert.Equal(t, 0, store.Count())
}

func TestOpen_RendersProbePage(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/open?clickId=c1&id=P1", iosUA, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "/product/P1")
	assert.Contains(t, body, "openAppBtn")
	assert.Contains(t, body, "visibilitychange")
}

func TestReferrerLookup(t *testing.T) {
	router, store := newTestRouter(t, testConfig(t))

	doRequest(router, http.MethodGet, "/share?id=P1&ref=USER1", androidUA, "")
	records := store.All()
	require.Len(t, records, 1)

	w := doRequest(router, http.MethodGet, "/referrer/"+records[0].ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var rec domain.AttributionRecord
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, records[0].ID, rec.ID)
	assert.Equal(t, "USER1", rec.ReferralCode)
}

func TestReferrerLookup_Unknown(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/referrer/nope", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
}

func TestClickLookupAPI(t *testing.T) {
	router, store := newTestRouter(t, testConfig(t))

	doRequest(router, http.MethodGet, "/share?id=P1", androidUA, "")
	records := store.All()
	require.Len(t, records, 1)

	w := doRequest(router, http.MethodGet, "/api/product/click/"+records[0].ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	doRequest(router, http.MethodGet, "/share?id=P1", androidUA, "")
	doRequest(router, http.MethodGet, "/share?id=P1", iosUA, "")

	w := doRequest(router, http.MethodGet, "/api/product/stats/P1", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var stats struct {
		TotalClicks int `json:"totalClicks"`
		ByPlatform  struct {
			Android int `json:"android"`
			IOS     int `json:"ios"`
		} `json:"byPlatform"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.TotalClicks)
	assert.Equal(t, 1, stats.ByPlatform.Android)
	assert.Equal(t, 1, stats.ByPlatform.IOS)
}

func TestUpdateMetadataFlowsIntoInterstitial(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodPost, "/api/product/update-metadata", "",
		`{"productId":"P1","title":"Red Sneakers","description":"Limited edition."}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/share?id=P1", crawlerUA, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Red Sneakers")
	assert.Contains(t, w.Body.String(), "Limited edition.")
}

func TestRateLimitOnAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.MaxRequests = 2
	router, _ := newTestRouter(t, cfg)

	for i := 0; i < 2; i++ {
		w := doRequest(router, http.MethodGet, "/api/product/stats/P1", "", "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/product/stats/P1", "", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRedirectSurfaceNotRateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.MaxRequests = 1
	router, _ := newTestRouter(t, cfg)

	for i := 0; i < 5; i++ {
		w := doRequest(router, http.MethodGet, "/share?id=P1", androidUA, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Error)
}

func TestWellKnownAssetLinks(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/.well-known/assetlinks.json", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "com.nfc.faix")
}

func TestWellKnownAppleAppSiteAssociation(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	w := doRequest(router, http.MethodGet, "/.well-known/apple-app-site-association", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "EAYXYBF4LF.com.82fai.faix")
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	doRequest(router, http.MethodGet, "/share?id=P1", androidUA, "")

	w := doRequest(router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deeplink_clicks_recorded_total")
}

func TestDebugEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, testConfig(t))

	doRequest(router, http.MethodGet, "/share?id=P1", androidUA, "")

	w := doRequest(router, http.MethodGet, "/debug/referrals", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)

	w = doRequest(router, http.MethodGet, "/debug/stats", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	var stats storage.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByPlatform.Android)
}
