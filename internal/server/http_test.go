package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freestream-server/internal/deps"
	"freestream-server/internal/server"
)

func testRouter(corsOrigins []string) http.Handler {
	d := deps.ServerDeps{
		Name:      "freestream-server-test",
		StartedAt: time.Now().Add(-3 * time.Second),
	}
	return server.New(d, corsOrigins).Router()
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(testRouter(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status        string `json:"status"`
		Service       string `json:"service"`
		UptimeSeconds int64  `json:"uptime_seconds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Service != "freestream-server-test" {
		t.Errorf("unexpected health body: %+v", body)
	}
	if body.UptimeSeconds < 3 {
		t.Errorf("expected uptime of at least 3s, got %d", body.UptimeSeconds)
	}
}

func TestCorrelationIDIsEchoed(t *testing.T) {
	srv := httptest.NewServer(testRouter(nil))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Correlation-Id", "abc123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Correlation-Id"); got != "abc123" {
		t.Errorf("expected correlation id echoed, got %q", got)
	}
}

func TestCorrelationIDIsGenerated(t *testing.T) {
	srv := httptest.NewServer(testRouter(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Correlation-Id") == "" {
		t.Error("expected a generated correlation id on the response")
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := httptest.NewServer(testRouter(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := resp.Header.Get(header); got != want {
			t.Errorf("%s: expected %q, got %q", header, want, got)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := httptest.NewServer(testRouter([]string{"https://app.example.com"}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/movies", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected configured origin echoed, got %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS headers for an unconfigured origin")
	}
}
