// Package profiling starts an optional pprof server for debugging.
package profiling

import (
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
)

// StartPprofServer starts the pprof server on a separate localhost-only port.
// It is enabled only when ENABLE_PROFILING=true; PPROF_PORT overrides the
// default port 6060.
func StartPprofServer() {
	if os.Getenv("ENABLE_PROFILING") != "true" {
		return
	}

	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = "6060"
	}

	// Bind to localhost only so profiles are never reachable externally.
	addr := "localhost:" + port

	go func() {
		log.Printf("Starting pprof server on %s", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Printf("pprof server error: %v", err)
		}
	}()
}
