package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gramseva/portal/session"
)

func TestLoginPersistsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"accessToken": "tok-1", "refreshToken": "ref-1",
			"user": map[string]string{"id": "u1", "fullName": "Alice", "email": "a@b.c", "role": "client"},
		}, "Login successful")
	})

	client, store, notices := newTestClient(t, mux, nil)

	state, err := client.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !state.IsAuthenticated || state.User == nil || state.User.ID != "u1" {
		t.Fatalf("unexpected state %+v", state)
	}

	rec, _ := store.Get(context.Background())
	if rec.AccessToken != "tok-1" || rec.RefreshToken != "ref-1" {
		t.Fatalf("unexpected persisted record %+v", rec)
	}
	if got := client.Metrics().Value(MetricLoginSuccess); got != 1 {
		t.Fatalf("expected login success metric, got %d", got)
	}
	if len(notices.all()) == 0 {
		t.Fatal("expected a success notice")
	}
}

func TestLoginRejectionLeavesStoreUntouched(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnauthorized, "Invalid credentials")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-old", "ref-old")

	_, err := client.Login(context.Background(), "a@b.c", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid credentials" {
		t.Fatalf("expected backend message, got %v", err)
	}

	rec, _ := store.Get(context.Background())
	if rec.AccessToken != "tok-old" {
		t.Fatal("a failed login must not clobber the stored session")
	}
	if got := client.Metrics().Value(MetricLoginFailure); got != 1 {
		t.Fatalf("expected login failure metric, got %d", got)
	}
}

func TestSeedRestoresPersistedSession(t *testing.T) {
	client, store, _ := newTestClient(t, http.NewServeMux(), nil)
	seedSession(t, store, "tok-1", "ref-1")

	state, err := client.Seed(context.Background())
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !state.IsAuthenticated || state.User == nil || state.User.FullName != "Alice" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestSeedCorruptRecordInitializesLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	store := session.NewFileStore(path)

	server := httptest.NewServer(http.NewServeMux())
	t.Cleanup(server.Close)

	client, err := New().
		WithBaseURL(server.URL).
		WithSessionStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)

	state, err := client.Seed(context.Background())
	if err != nil {
		t.Fatalf("corrupt record must not error: %v", err)
	}
	if state.IsAuthenticated {
		t.Fatal("expected logged-out state")
	}

	rec, err := store.Get(context.Background())
	if err != nil || !rec.Empty() {
		t.Fatalf("expected corrupt record cleared, got %+v err=%v", rec, err)
	}
}

func TestVerifySuccessRefreshesUserSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/verify", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"user": map[string]string{"id": "u1", "fullName": "Alice Renamed", "role": "admin"},
		}, "ok")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	state, err := client.Verify(context.Background())
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if state.User == nil || state.User.FullName != "Alice Renamed" || state.User.Role != RoleAdmin {
		t.Fatalf("expected refreshed summary, got %+v", state.User)
	}

	rec, _ := store.Get(context.Background())
	if rec.User == nil || rec.User.FullName != "Alice Renamed" {
		t.Fatal("expected refreshed summary persisted")
	}
}

func TestVerifyFailureCollapsesToLoggedOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnauthorized, "revoked")
	})
	mux.HandleFunc("GET /users/verify", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnauthorized, "forged token")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-forged", "ref-1")
	if _, err := client.Seed(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err := client.Verify(context.Background())
	if err == nil {
		t.Fatal("expected verify to fail")
	}
	if state := client.Current(); state.IsAuthenticated {
		t.Fatal("verification failure must collapse to logged-out")
	}
}

func TestVerifyRejectionClearsPersistedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/verify", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusForbidden, "token revoked")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-revoked", "ref-1")

	_, err := client.Verify(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an API error, got %v", err)
	}

	rec, _ := store.Get(context.Background())
	if !rec.Empty() {
		t.Fatalf("rejected token still persisted: %q", rec.AccessToken)
	}

	state, err := client.Seed(context.Background())
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if state.IsAuthenticated {
		t.Fatal("seed must not resurrect a server-rejected token")
	}
}

func TestVerifyNetworkFailureKeepsPersistedToken(t *testing.T) {
	server := httptest.NewServer(http.NewServeMux())
	server.Close()

	store := session.NewMemoryStore()
	client, err := New().
		WithBaseURL(server.URL).
		WithSessionStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)
	seedSession(t, store, "tok-1", "ref-1")

	_, err = client.Verify(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}

	rec, _ := store.Get(context.Background())
	if rec.AccessToken != "tok-1" {
		t.Fatal("a transport failure must not discard the stored session")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	client, store, _ := newTestClient(t, http.NewServeMux(), nil)
	seedSession(t, store, "tok-1", "ref-1")
	if _, err := client.Seed(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	rec, _ := store.Get(context.Background())
	if !rec.Empty() {
		t.Fatal("expected store cleared")
	}
	if state := client.Current(); state.IsAuthenticated || state.User != nil {
		t.Fatalf("expected logged-out state, got %+v", state)
	}
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	var gotBody atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/register", func(w http.ResponseWriter, r *http.Request) {
		gotBody.Store(r.Header.Get("Content-Type"))
		writeEnvelope(w, http.StatusCreated, nil, "Account created")
	})

	client, store, _ := newTestClient(t, mux, nil)

	err := client.Register(context.Background(), RegisterInput{
		FullName: "Alice", Email: "a@b.c", Password: "pw",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if gotBody.Load() != "application/json" {
		t.Fatalf("expected JSON body, got %v", gotBody.Load())
	}

	rec, _ := store.Get(context.Background())
	if !rec.Empty() {
		t.Fatal("register must not create a session")
	}
	if state := client.Current(); state.IsAuthenticated {
		t.Fatal("register must not authenticate")
	}
}
