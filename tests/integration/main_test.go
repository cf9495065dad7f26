//go:build integration
// +build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	var body map[string]string
	if status := doJSON(t, http.MethodGet, "/healthz", "", nil, &body); status != http.StatusOK {
		t.Fatalf("unexpected status code: %d", status)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRootOnline(t *testing.T) {
	var body map[string]string
	if status := doJSON(t, http.MethodGet, "/", "", nil, &body); status != http.StatusOK {
		t.Fatalf("unexpected status code: %d", status)
	}
	if body["message"] != "API Online" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestReadyz(t *testing.T) {
	if status := doJSON(t, http.MethodGet, "/readyz", "", nil, nil); status != http.StatusOK {
		t.Fatalf("dependencies not ready: %d", status)
	}
}
