package healthz

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func readyzStatus(t *testing.T, h *Handler) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return w
}

func TestEmptyHandlerIsHealthy(t *testing.T) {
	w := readyzStatus(t, New())
	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestFailingCheckReportsUnavailable(t *testing.T) {
	h := New()
	h.AddCheck("firestore", func() error {
		return errors.New("deadline exceeded")
	})

	w := readyzStatus(t, h)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if !strings.Contains(w.Body.String(), "firestore") {
		t.Errorf("Body %q does not name the failed check", w.Body.String())
	}
}

func TestPassingCheckIsHealthy(t *testing.T) {
	h := New()
	h.AddCheck("firestore", func() error { return nil })

	w := readyzStatus(t, h)
	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}
}
