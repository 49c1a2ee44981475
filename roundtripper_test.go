package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSessionRoundTripperAttachesCredentials(t *testing.T) {
	var gotAuth, gotID atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		gotID.Store(r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client, store, _ := newTestClient(t, http.NewServeMux(), nil)
	seedSession(t, store, "tok-rt", "ref-1")

	hc := &http.Client{Transport: NewSessionRoundTripper(client, nil)}
	req, err := http.NewRequestWithContext(WithRequestID(context.Background(), "req-7"), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := hc.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if gotAuth.Load() != "Bearer tok-rt" {
		t.Fatalf("expected bearer attached, got %v", gotAuth.Load())
	}
	if gotID.Load() != "req-7" {
		t.Fatalf("expected request id forwarded, got %v", gotID.Load())
	}
}

func TestSessionRoundTripperKeepsExistingAuthorization(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client, store, _ := newTestClient(t, http.NewServeMux(), nil)
	seedSession(t, store, "tok-rt", "ref-1")

	hc := &http.Client{Transport: NewSessionRoundTripper(client, nil)}
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set("Authorization", "Bearer caller-owned")
	resp, err := hc.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()

	if gotAuth.Load() != "Bearer caller-owned" {
		t.Fatalf("caller headers must win, got %v", gotAuth.Load())
	}
}
