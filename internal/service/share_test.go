package service_test

import (
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
	apperrors "github.com/chuthuong2004/selfhost-deeplink-demo/internal/errors"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/service"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/storage"
)

const testDomain = "links.example.com"

const androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36"

func newTestService(t *testing.T) (*service.ShareService, *storage.FileStore) {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "referrals.json"), logger.NewNop())
	require.NoError(t, err)
	return service.NewShareService(store, testDomain, logger.NewNop()), store
}

func TestGenerateShareLink_RequiresProductID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GenerateShareLink(service.GenerateShareLinkInput{})
	require.Error(t, err)

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "productId: is required", err.Error())
}

func TestGenerateShareLink_RejectsOverlongProductID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GenerateShareLink(service.GenerateShareLinkInput{
		ResourceID: strings.Repeat("x", 101),
	})

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestGenerateShareLink_BuildsLinksAndPersists(t *testing.T) {
	svc, store := newTestService(t)

	link, err := svc.GenerateShareLink(service.GenerateShareLinkInput{
		ResourceID:   "P1",
		ReferralCode: "USER1",
		UserID:       "u-42",
		Metadata:     map[string]string{"utm_source": "newsletter"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, link.ShareID)

	assert.Equal(t, "https://"+testDomain+"/s/"+link.ShareID, link.ShortLink)

	u, err := url.Parse(link.ShareLink)
	require.NoError(t, err)
	assert.Equal(t, testDomain, u.Host)
	assert.Equal(t, "/share", u.Path)
	assert.Equal(t, "P1", u.Query().Get("id"))
	assert.Equal(t, link.ShareID, u.Query().Get("shareId"))
	assert.Equal(t, "USER1", u.Query().Get("ref"))
	assert.Equal(t, "u-42", u.Query().Get("userId"))
	assert.Equal(t, "newsletter", u.Query().Get("utm_source"))

	rec, ok := store.FindByID(link.ShareID)
	require.True(t, ok)
	assert.Equal(t, domain.KindShareLink, rec.Kind)
	assert.Equal(t, "P1", rec.ResourceID)
	assert.Equal(t, link.ShortLink, rec.ShortLink)
	assert.Equal(t, link.ShareLink, rec.FullLink)
}

func TestProcessClick_DetectsPlatformAndPersists(t *testing.T) {
	svc, store := newTestService(t)

	rec := svc.ProcessClick(service.ClickInput{
		ResourceID:       "P1",
		ShareID:          "share-1",
		ReferralCode:     "USER1",
		ClientIdentifier: androidUA,
		SourceAddress:    "203.0.113.7",
		CampaignTags:     domain.CampaignTags{Source: "newsletter"},
	})

	require.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.KindProductShare, rec.Kind)
	assert.Equal(t, domain.PlatformAndroid, rec.Platform)
	assert.Equal(t, "P1", rec.Metadata["productId"])
	assert.Equal(t, "share-1", rec.Metadata["shareId"])
	assert.Equal(t, "newsletter", rec.CampaignTags.Source)

	stored, ok := store.FindByID(rec.ID)
	require.True(t, ok)
	assert.Equal(t, rec.ID, stored.ID)
}

func TestProcessClick_NoResourceLeavesMetadataEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	rec := svc.ProcessClick(service.ClickInput{
		ReferralCode:     "USER1",
		ClientIdentifier: androidUA,
	})

	assert.Empty(t, rec.Metadata)
}

func TestGetClick_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetClick("missing")
	require.Error(t, err)

	var nf *apperrors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestProductStatistics(t *testing.T) {
	svc, store := newTestService(t)

	iosUA := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	svc.ProcessClick(service.ClickInput{ResourceID: "P1", ClientIdentifier: androidUA, SourceAddress: "1.1.1.1"})
	svc.ProcessClick(service.ClickInput{ResourceID: "P1", ClientIdentifier: androidUA, SourceAddress: "1.1.1.1"})
	svc.ProcessClick(service.ClickInput{ResourceID: "P1", ClientIdentifier: iosUA, SourceAddress: "2.2.2.2"})
	svc.ProcessClick(service.ClickInput{ResourceID: "other", ClientIdentifier: iosUA, SourceAddress: "3.3.3.3"})

	// Share-link records never count as clicks.
	store.Create(domain.AttributionRecord{
		ID:         "share-1",
		Kind:       domain.KindShareLink,
		ResourceID: "P1",
		CreatedAt:  time.Now(),
	})

	stats := svc.ProductStatistics("P1")
	assert.Equal(t, "P1", stats.ResourceID)
	assert.Equal(t, 3, stats.TotalClicks)
	assert.Equal(t, 2, stats.UniqueClients)
	assert.Equal(t, 2, stats.ByPlatform.Android)
	assert.Equal(t, 1, stats.ByPlatform.IOS)
	assert.Len(t, stats.RecentClicks, 3)
}

func TestProductStatistics_Empty(t *testing.T) {
	svc, _ := newTestService(t)

	stats := svc.ProductStatistics("nothing")
	assert.Equal(t, 0, stats.TotalClicks)
	assert.Equal(t, 0, stats.UniqueClients)
	assert.Empty(t, stats.RecentClicks)
}
