// Package service implements the click attribution service: share-link
// generation, click capture, and per-resource statistics on top of the
// referral store.
package service

import (
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
	apperrors "github.com/chuthuong2004/selfhost-deeplink-demo/internal/errors"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/metrics"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/storage"
)

// maxResourceIDLength is the longest accepted resource identifier.
const maxResourceIDLength = 100

// recentClickLimit caps the recentClicks list in product statistics.
const recentClickLimit = 10

// ShareService creates and looks up attribution records.
type ShareService struct {
	store  *storage.FileStore
	domain string
	log    logger.Logger
}

// NewShareService creates a ShareService. domain is the externally visible
// host embedded in generated links.
func NewShareService(store *storage.FileStore, domain string, log logger.Logger) *ShareService {
	return &ShareService{store: store, domain: domain, log: log}
}

// GenerateShareLinkInput carries the parameters for share-link generation.
type GenerateShareLinkInput struct {
	ResourceID   string
	ReferralCode string
	UserID       string
	Metadata     map[string]string
}

// ShareLink is the public payload returned for a generated share link.
type ShareLink struct {
	ShareID      string            `json:"shareId"`
	ShareLink    string            `json:"shareLink"`
	ShortLink    string            `json:"shortLink"`
	ResourceID   string            `json:"productId"`
	ReferralCode string            `json:"ref,omitempty"`
	UserID       string            `json:"userId,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// GenerateShareLink builds the canonical long-form share URL and the short
// `/s/<shareId>` form, persists a share_link_generated record keyed by the
// fresh share id, and returns the public payload.
func (s *ShareService) GenerateShareLink(in GenerateShareLinkInput) (ShareLink, error) {
	if in.ResourceID == "" {
		return ShareLink{}, apperrors.NewValidation("productId", "is required")
	}
	if len(in.ResourceID) > maxResourceIDLength {
		return ShareLink{}, apperrors.NewValidation("productId", "must be at most 100 characters")
	}

	shareID := uuid.NewString()
	now := time.Now()

	params := url.Values{}
	params.Set("id", in.ResourceID)
	params.Set("shareId", shareID)
	if in.ReferralCode != "" {
		params.Set("ref", in.ReferralCode)
	}
	if in.UserID != "" {
		params.Set("userId", in.UserID)
	}
	for key, value := range in.Metadata {
		if value != "" {
			params.Set(key, value)
		}
	}

	fullLink := "https://" + s.domain + "/share?" + params.Encode()
	shortLink := "https://" + s.domain + "/s/" + shareID

	s.store.Create(domain.AttributionRecord{
		ID:           shareID,
		Kind:         domain.KindShareLink,
		ResourceID:   in.ResourceID,
		ShareID:      shareID,
		ReferralCode: in.ReferralCode,
		UserID:       in.UserID,
		Metadata:     in.Metadata,
		CreatedAt:    now,
		ShortLink:    shortLink,
		FullLink:     fullLink,
	})

	metrics.ShareLinksGenerated.Inc()
	s.log.Info("Generated share link",
		logger.String("share_id", shareID),
		logger.String("product_id", in.ResourceID),
		logger.String("short_link", shortLink),
	)

	return ShareLink{
		ShareID:      shareID,
		ShareLink:    fullLink,
		ShortLink:    shortLink,
		ResourceID:   in.ResourceID,
		ReferralCode: in.ReferralCode,
		UserID:       in.UserID,
		Metadata:     in.Metadata,
		CreatedAt:    now,
	}, nil
}

// ClickInput carries the context captured for a click/open event. Only
// ResourceID is required; this is an attribution capture path and records
// whatever optional context is available.
type ClickInput struct {
	ResourceID       string
	ShareID          string
	ReferralCode     string
	UserID           string
	ClientIdentifier string
	SourceAddress    string
	CampaignTags     domain.CampaignTags
}

// ProcessClick persists a product_share record for the click and returns it.
// Platform is derived from the client identifier.
func (s *ShareService) ProcessClick(in ClickInput) domain.AttributionRecord {
	clickID := uuid.NewString()

	meta := make(map[string]string, 2)
	if in.ResourceID != "" {
		meta["productId"] = in.ResourceID
	}
	if in.ShareID != "" {
		meta["shareId"] = in.ShareID
	}
	if len(meta) == 0 {
		meta = nil
	}

	rec := s.store.Create(domain.AttributionRecord{
		ID:               clickID,
		Kind:             domain.KindProductShare,
		ResourceID:       in.ResourceID,
		ShareID:          in.ShareID,
		ReferralCode:     in.ReferralCode,
		UserID:           in.UserID,
		ClientIdentifier: in.ClientIdentifier,
		SourceAddress:    in.SourceAddress,
		Platform:         domain.DetectPlatform(in.ClientIdentifier),
		CreatedAt:        time.Now(),
		CampaignTags:     in.CampaignTags,
		Metadata:         meta,
	})

	metrics.ClicksRecorded.WithLabelValues(string(rec.Platform)).Inc()
	s.log.Info("Captured share click",
		logger.String("click_id", rec.ID),
		logger.String("product_id", rec.ResourceID),
		logger.String("platform", string(rec.Platform)),
	)

	return rec
}

// GetClick looks up a prior click or share record by id.
func (s *ShareService) GetClick(id string) (domain.AttributionRecord, error) {
	rec, ok := s.store.FindByID(id)
	if !ok {
		return domain.AttributionRecord{}, apperrors.NewNotFound("click", id)
	}
	return rec, nil
}

// ProductStats summarizes captured clicks for one resource.
//
// UniqueClients counts distinct source addresses, which undercounts behind
// shared NAT; it is a coarse proxy for unique visitors, not an exact figure.
type ProductStats struct {
	ResourceID    string                     `json:"productId"`
	TotalClicks   int                        `json:"totalClicks"`
	UniqueClients int                        `json:"uniqueClients"`
	ByPlatform    storage.PlatformCounts     `json:"byPlatform"`
	RecentClicks  []domain.AttributionRecord `json:"recentClicks"`
}

// ProductStatistics computes click statistics for the given resource id.
func (s *ShareService) ProductStatistics(resourceID string) ProductStats {
	clicks := s.store.Filter(func(r domain.AttributionRecord) bool {
		return r.Kind == domain.KindProductShare && r.ResourceID == resourceID
	})

	stats := ProductStats{ResourceID: resourceID, TotalClicks: len(clicks)}

	addrs := make(map[string]struct{}, len(clicks))
	for _, c := range clicks {
		if c.SourceAddress != "" {
			addrs[c.SourceAddress] = struct{}{}
		}
		switch c.Platform {
		case domain.PlatformAndroid:
			stats.ByPlatform.Android++
		case domain.PlatformIOS:
			stats.ByPlatform.IOS++
		default:
			stats.ByPlatform.Web++
		}
	}
	stats.UniqueClients = len(addrs)

	sort.Slice(clicks, func(i, j int) bool {
		return clicks[i].CreatedAt.After(clicks[j].CreatedAt)
	})
	if len(clicks) > recentClickLimit {
		clicks = clicks[:recentClickLimit]
	}
	stats.RecentClicks = clicks

	return stats
}
