// Package storage implements the referral store: a durable keyed collection
// of attribution records backed by a single JSON array file.
//
// The access pattern is read-whole/modify-whole/write-whole. A single writer
// lock serializes mutations so concurrent requests cannot lose updates;
// reads take the shared lock. Read or parse failures degrade to an empty
// store, and write failures against a non-writable medium are logged and
// swallowed so attribution capture stays best-effort instead of failing the
// user's redirect.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
	apperrors "github.com/chuthuong2004/selfhost-deeplink-demo/internal/errors"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
)

// filePerm is the mode for the store file and its directory.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileStore is a JSON-file-backed referral store.
type FileStore struct {
	path string
	log  logger.Logger

	mu sync.RWMutex
}

// NewFileStore opens (or creates) the store file at path. Unlike the
// read/write paths, a failure here is returned to the caller: an unusable
// medium at initialization must abort startup.
func NewFileStore(path string, log logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, apperrors.WrapPersistence("init", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if writeErr := os.WriteFile(path, []byte("[]"), filePerm); writeErr != nil {
			return nil, apperrors.WrapPersistence("init", writeErr)
		}
	} else if err != nil {
		return nil, apperrors.WrapPersistence("init", err)
	}

	return &FileStore{path: path, log: log}, nil
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Create appends a new record. Records are keyed by a caller-generated id
// assumed collision-free; an id that is somehow already present is left
// untouched and the existing record is returned.
func (s *FileStore) Create(rec domain.AttributionRecord) domain.AttributionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readAll()
	for _, existing := range records {
		if existing.ID == rec.ID {
			s.log.Warn("Duplicate record id, keeping existing record",
				logger.String("id", rec.ID),
			)
			return existing
		}
	}

	records = append(records, rec)
	s.writeAll(records)
	return rec
}

// FindByID returns the record with the given id, if present.
func (s *FileStore) FindByID(id string) (domain.AttributionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.readAll() {
		if rec.ID == id {
			return rec, true
		}
	}
	return domain.AttributionRecord{}, false
}

// Filter returns all records matching the predicate, in insertion order.
func (s *FileStore) Filter(pred func(domain.AttributionRecord) bool) []domain.AttributionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.AttributionRecord
	for _, rec := range s.readAll() {
		if pred(rec) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// Update applies mutate to the record with the given id and persists the
// result as an atomic whole-record write. Returns the updated record, or
// false if the id is unknown.
func (s *FileStore) Update(id string, mutate func(*domain.AttributionRecord)) (domain.AttributionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readAll()
	for i := range records {
		if records[i].ID == id {
			mutate(&records[i])
			s.writeAll(records)
			return records[i], true
		}
	}
	return domain.AttributionRecord{}, false
}

// Delete removes the record with the given id. Returns false if not found.
func (s *FileStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readAll()
	filtered := records[:0:0]
	for _, rec := range records {
		if rec.ID != id {
			filtered = append(filtered, rec)
		}
	}
	if len(filtered) == len(records) {
		return false
	}

	s.writeAll(filtered)
	return true
}

// SweepExpired deletes records older than the retention window and returns
// the number deleted. Idempotent: a second sweep with no new writes deletes
// nothing. No record younger than the window is ever removed.
func (s *FileStore) SweepExpired(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	records := s.readAll()
	kept := records[:0:0]
	for _, rec := range records {
		if !rec.ExpiredBy(now, retention) {
			kept = append(kept, rec)
		}
	}

	deleted := len(records) - len(kept)
	if deleted > 0 {
		s.writeAll(kept)
		s.log.Info("Cleaned up expired referrals",
			logger.Int("deleted", deleted),
			logger.Int("remaining", len(kept)),
		)
	}
	return deleted
}

// Count returns the number of records in the store.
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readAll())
}

// All returns every record in insertion order.
func (s *FileStore) All() []domain.AttributionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readAll()
}

// PlatformCounts breaks a record count down by platform tag.
type PlatformCounts struct {
	Android int `json:"android"`
	IOS     int `json:"ios"`
	Web     int `json:"web"`
}

// Stats summarizes the whole store for the debug endpoints.
type Stats struct {
	Total      int            `json:"total"`
	ByPlatform PlatformCounts `json:"byPlatform"`
	Recent24h  int            `json:"recent24h"`
}

// Statistics computes store-wide totals.
func (s *FileStore) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{}
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, rec := range s.readAll() {
		stats.Total++
		switch rec.Platform {
		case domain.PlatformAndroid:
			stats.ByPlatform.Android++
		case domain.PlatformIOS:
			stats.ByPlatform.IOS++
		default:
			stats.ByPlatform.Web++
		}
		if rec.CreatedAt.After(cutoff) {
			stats.Recent24h++
		}
	}
	return stats
}

// Ping reports whether the backing file is readable. Used by the health check.
func (s *FileStore) Ping() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.ReadFile(s.path); err != nil {
		return apperrors.WrapPersistence("ping", err)
	}
	return nil
}

// readAll loads the full record collection. The caller must hold s.mu. A
// read or parse failure degrades to an empty store.
func (s *FileStore) readAll() []domain.AttributionRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn("Failed to read referral store, treating as empty",
			logger.String("path", s.path),
			logger.Error(err),
		)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var records []domain.AttributionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("Failed to parse referral store, treating as empty",
			logger.String("path", s.path),
			logger.Error(err),
		)
		return nil
	}
	return records
}

// writeAll persists the full record collection. The caller must hold s.mu.
// A write failure (read-only deployment target) is logged and swallowed:
// persistence is best-effort after startup.
func (s *FileStore) writeAll(records []domain.AttributionRecord) {
	if records == nil {
		records = []domain.AttributionRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		s.log.Warn("Failed to encode referral store", logger.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, filePerm); err != nil {
		s.log.Warn("Failed to write referral store, attribution is best-effort",
			logger.String("path", s.path),
			logger.Error(fmt.Errorf("write store: %w", err)),
		)
	}
}
