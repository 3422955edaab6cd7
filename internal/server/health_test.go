package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func healthRouter(t *testing.T, checks map[string]HealthChecker) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoutes(r, "deeplink-server", "test", checks)
	return r
}

func getHealth(t *testing.T, r *gin.Engine) (int, HealthResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	r.ServeHTTP(w, req)

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	return w.Code, resp
}

func TestHealthEndpoint(t *testing.T) {
	r := healthRouter(t, map[string]HealthChecker{
		"store": StoreHealthChecker(func() error { return nil }),
	})

	code, resp := getHealth(t, r)
	if code != http.StatusOK {
		t.Fatalf("status code: got %d, want 200", code)
	}
	if resp.Status != HealthStatusHealthy {
		t.Errorf("status: got %s, want healthy", resp.Status)
	}
	if resp.Service != "deeplink-server" {
		t.Errorf("service: got %s", resp.Service)
	}
	if resp.Checks["store"].Status != HealthStatusHealthy {
		t.Errorf("store check: got %s", resp.Checks["store"].Status)
	}
}

func TestHealthEndpoint_DegradedStore(t *testing.T) {
	r := healthRouter(t, map[string]HealthChecker{
		"store": StoreHealthChecker(func() error { return errors.New("unreadable") }),
	})

	code, resp := getHealth(t, r)
	if code != http.StatusOK {
		t.Fatalf("status code: got %d, want 200 for degraded", code)
	}
	if resp.Status != HealthStatusDegraded {
		t.Errorf("status: got %s, want degraded", resp.Status)
	}
}

func TestHealthEndpoint_Head(t *testing.T) {
	r := healthRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodHead, "/health", http.NoBody)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("HEAD status: got %d, want 200", w.Code)
	}
}
