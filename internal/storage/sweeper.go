package storage

import (
	"sync"
	"time"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
)

// Sweeper periodically removes expired records from a FileStore. It takes
// the store's writer lock through SweepExpired, so it never runs concurrently
// with a request-driven write.
type Sweeper struct {
	store     *FileStore
	log       logger.Logger
	interval  time.Duration
	retention time.Duration

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewSweeper creates a sweeper that prunes records older than retention
// every interval.
func NewSweeper(store *FileStore, log logger.Logger, interval, retention time.Duration) *Sweeper {
	return &Sweeper{
		store:     store,
		log:       log,
		interval:  interval,
		retention: retention,
		done:      make(chan struct{}),
	}
}

// Start launches the background sweep goroutine.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()

	s.log.Info("Expiry sweep scheduled",
		logger.Duration("interval", s.interval),
		logger.Duration("retention", s.retention),
	)
}

// Stop signals the sweep goroutine and waits for it to exit. Safe to call
// multiple times.
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.store.SweepExpired(s.retention)
		case <-s.done:
			return
		}
	}
}
