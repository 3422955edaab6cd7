package service

import (
	"sync"
	"time"
)

// ProductMetadata holds the social-preview fields rendered into the share
// interstitial for one resource.
type ProductMetadata struct {
	ResourceID  string    `json:"productId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// MetadataService serves per-resource social preview metadata. Entries are
// kept in memory only and are lost on restart; callers that need durable
// metadata should treat this as a cache in front of their own catalog.
type MetadataService struct {
	landingPage string

	mu   sync.RWMutex
	byID map[string]ProductMetadata
}

// NewMetadataService creates a MetadataService. landingPage is used as the
// default preview image host context.
func NewMetadataService(landingPage string) *MetadataService {
	return &MetadataService{
		landingPage: landingPage,
		byID:        make(map[string]ProductMetadata),
	}
}

// Get returns the metadata for a resource, falling back to generated
// defaults when nothing has been stored.
func (m *MetadataService) Get(resourceID string) ProductMetadata {
	m.mu.RLock()
	meta, ok := m.byID[resourceID]
	m.mu.RUnlock()
	if ok {
		return meta
	}

	return ProductMetadata{
		ResourceID:  resourceID,
		Title:       "Product #" + resourceID,
		Description: "View details for product " + resourceID + " in the app.",
		Image:       m.landingPage + "images/default-share.jpg",
	}
}

// Update stores custom metadata for a resource. Empty fields keep their
// generated defaults.
func (m *MetadataService) Update(resourceID, title, description, image string) ProductMetadata {
	meta := m.Get(resourceID)
	if title != "" {
		meta.Title = title
	}
	if description != "" {
		meta.Description = description
	}
	if image != "" {
		meta.Image = image
	}
	meta.UpdatedAt = time.Now()

	m.mu.Lock()
	m.byID[resourceID] = meta
	m.mu.Unlock()

	return meta
}
