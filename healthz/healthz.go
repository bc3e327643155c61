// Package healthz serves liveness/readiness endpoints on the debug
// listener.
package healthz

import (
	"fmt"
	"net/http"
	"sync"
)

// Check reports whether one dependency is usable.
type Check func() error

type Handler struct {
	mu     sync.Mutex
	checks map[string]Check
}

func New() *Handler {
	return &Handler{checks: map[string]Check{}}
}

// AddCheck registers a named dependency check.  A handler with no checks
// is always healthy.
func (h *Handler) AddCheck(name string, c Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = c
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name, c := range h.checks {
		if err := c(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "check %s failed: %v", name, err)
			return
		}
	}

	w.Write([]byte("200 OK"))
}
