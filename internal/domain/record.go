// Package domain holds the attribution record model shared by the store,
// the attribution service, and the HTTP handlers.
package domain

import "time"

// Kind tags the two record variants that share the AttributionRecord shape.
type Kind string

const (
	// KindShareLink marks a record created when a share link is generated.
	KindShareLink Kind = "share_link_generated"
	// KindProductShare marks a record created when a share link is clicked
	// or a product/invite endpoint is opened.
	KindProductShare Kind = "product_share"
)

// CampaignTags carries the optional UTM-style campaign fields attached to a
// click record.
type CampaignTags struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Content  string `json:"utm_content,omitempty"`
	Term     string `json:"utm_term,omitempty"`
}

// IsZero reports whether no campaign tag is set.
func (t CampaignTags) IsZero() bool {
	return t == CampaignTags{}
}

// AttributionRecord is the single persisted entity. Share-link records and
// click records share this shape, distinguished by Kind.
//
// ID is generated at creation and never reused; CreatedAt is set once and
// drives expiry. ShortLink and FullLink are computed at creation for
// share-link records only.
type AttributionRecord struct {
	ID           string `json:"id"`
	Kind         Kind   `json:"kind"`
	ResourceID   string `json:"resourceId,omitempty"`
	ShareID      string `json:"shareId,omitempty"`
	ReferralCode string `json:"referralCode,omitempty"`
	UserID       string `json:"userId,omitempty"`

	// ClientIdentifier is the raw client identification string the click
	// arrived with; Platform is derived from it at capture time.
	ClientIdentifier string   `json:"clientIdentifier,omitempty"`
	SourceAddress    string   `json:"sourceAddress,omitempty"`
	Platform         Platform `json:"platform,omitempty"`

	CreatedAt    time.Time         `json:"createdAt"`
	CampaignTags CampaignTags      `json:"campaignTags,omitzero"`
	Metadata     map[string]string `json:"metadata,omitempty"`

	ShortLink string `json:"shortLink,omitempty"`
	FullLink  string `json:"fullLink,omitempty"`
}

// ExpiredBy reports whether the record falls outside the retention window
// ending at now.
func (r AttributionRecord) ExpiredBy(now time.Time, retention time.Duration) bool {
	return r.CreatedAt.Before(now.Add(-retention))
}
