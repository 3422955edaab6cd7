// Package probe implements the app-open probe protocol: the timed sequence a
// landing page runs to invoke the native app and fall back to the store when
// the app does not claim the navigation.
//
// Machine is the canonical state machine; the rendered probe page mirrors it
// in client-side script with the same timing constants. Keeping the machine
// in Go makes the timing contract unit-testable without a browser runtime.
package probe

import (
	"time"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/deeplink"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
)

// Timing constants for the probe sequence. The ceiling bounds the whole
// attempt: a fallback timer that fires outside it (device suspended and
// resumed) must not redirect.
const (
	// PaintDelay is the pause after page load before the first attempt, so
	// the page can render.
	PaintDelay = 300 * time.Millisecond
	// SchemeRetryDelay is when the iOS custom-scheme retry fires. Universal
	// links silently no-op when no app is registered, so a second attempt is
	// required.
	SchemeRetryDelay = 500 * time.Millisecond
	// StoreFallbackDelay is when the fallback-to-store check fires.
	StoreFallbackDelay = 1500 * time.Millisecond
	// FallbackCeiling is the wall-clock bound on the whole attempt.
	FallbackCeiling = 2000 * time.Millisecond
)

// State is a probe machine state.
type State int

const (
	// StateInit is the initial state; the page has loaded but no attempt has
	// started.
	StateInit State = iota
	// StateAttempting means navigation attempts are in flight.
	StateAttempting
	// StateAppOpened is terminal: the page observed the app taking over.
	StateAppOpened
	// StateStoreFallback is terminal: the user was sent to the store.
	StateStoreFallback
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAttempting:
		return "attempting"
	case StateAppOpened:
		return "app_opened"
	case StateStoreFallback:
		return "store_fallback"
	default:
		return "unknown"
	}
}

// Navigator receives navigation requests from the machine.
type Navigator func(url string)

// Scheduler queues fn to run after delay. Implementations need not support
// cancellation: queued actions are gated by the machine's opened flag, which
// is the only (best-effort) cancellation mechanism.
type Scheduler func(delay time.Duration, fn func())

// Config assembles a Machine's collaborators.
type Config struct {
	Platform domain.Platform
	Links    deeplink.Links
	// StoreURL is the fallback target: the platform store listing, or the
	// landing page for unrecognized platforms.
	StoreURL string

	Navigate Navigator
	Schedule Scheduler
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Machine drives the probe sequence. It models a single-threaded client
// runtime that suspends only at its own scheduled timers, and is therefore
// not safe for concurrent use from multiple goroutines.
type Machine struct {
	platform domain.Platform
	links    deeplink.Links
	storeURL string

	navigate Navigator
	schedule Scheduler
	now      func() time.Time

	state     State
	opened    bool
	startedAt time.Time
}

// NewMachine creates a Machine in StateInit.
func NewMachine(cfg Config) *Machine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Machine{
		platform: cfg.Platform,
		links:    cfg.Links,
		storeURL: cfg.StoreURL,
		navigate: cfg.Navigate,
		schedule: cfg.Schedule,
		now:      now,
		state:    StateInit,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Opened reports whether the guard flag is set.
func (m *Machine) Opened() bool {
	return m.opened
}

// Start schedules the automatic attempt after the paint delay.
func (m *Machine) Start() {
	m.schedule(PaintDelay, m.Attempt)
}

// Attempt enters StateAttempting and fires the platform-specific navigation
// sequence. It is the manual-trigger entry point as well: a user tapping the
// on-page control re-runs the same sequence with a fresh start time and a
// cleared guard flag.
func (m *Machine) Attempt() {
	m.state = StateAttempting
	m.startedAt = m.now()
	m.opened = false

	switch m.platform {
	case domain.PlatformAndroid:
		// The intent URL is the most reliable single-shot invocation on
		// Android; no secondary attempt is scheduled.
		m.navigate(m.links.AndroidIntent)
	case domain.PlatformIOS:
		m.navigate(m.links.UniversalLink)
		m.schedule(SchemeRetryDelay, m.schemeRetry)
	default:
		m.navigate(m.links.CustomScheme)
	}

	m.schedule(StoreFallbackDelay, m.storeFallback)
}

// MarkHidden records a page-visibility change to hidden. Before a fallback
// timer fires, this means the app claimed the navigation: the guard flag
// gates every still-queued timer.
func (m *Machine) MarkHidden() {
	m.opened = true
	if m.state == StateAttempting {
		m.state = StateAppOpened
	}
}

// schemeRetry is the iOS secondary attempt via the custom scheme.
func (m *Machine) schemeRetry() {
	if m.opened {
		return
	}
	m.navigate(m.links.CustomScheme)
}

// storeFallback transitions to StateStoreFallback unless the app opened or
// the attempt is stale. Elapsed time is measured from ATTEMPTING entry with
// the wall clock, so a timer that was queued before a device suspend does
// not fire outside the intended window; negative or absurdly large values
// are clamped out.
func (m *Machine) storeFallback() {
	if m.opened {
		return
	}

	elapsed := m.now().Sub(m.startedAt)
	if elapsed < 0 || elapsed >= FallbackCeiling {
		return
	}

	m.state = StateStoreFallback
	m.navigate(m.storeURL)
}
