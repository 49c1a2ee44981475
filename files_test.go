package portal

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestSignedFileURLRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /applications/files/app-1/file-9/signed-url", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]string{"url": "https://storage.local/signed/xyz"}, "ok")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	signed, err := client.SignedFileURL(context.Background(), KindFile, "app-1", "file-9")
	if err != nil {
		t.Fatalf("signed url failed: %v", err)
	}
	if signed.URL != "https://storage.local/signed/xyz" || signed.FileID != "file-9" {
		t.Fatalf("unexpected result %+v", signed)
	}
	if got := client.Metrics().Value(MetricSignedURLIssued); got != 1 {
		t.Fatalf("expected issued metric, got %d", got)
	}
}

func TestMissingFileReportsFileNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /applications/files/app-1/ghost/signed-url", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "no such file")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	_, err := client.SignedFileURL(context.Background(), KindFile, "app-1", "ghost")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if err.Error() != "File not found" {
		t.Fatalf("expected the file message, got %q", err.Error())
	}
}

func TestMissingCertificateReportsNotReady(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /applications/files/app-1/certificate/signed-url", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "certificate missing")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	_, err := client.SignedFileURL(context.Background(), KindCertificate, "app-1", "")
	if !errors.Is(err, ErrCertificateNotReady) {
		t.Fatalf("expected ErrCertificateNotReady, got %v", err)
	}
	if err.Error() != "Certificate not available yet" {
		t.Fatalf("expected the certificate message, got %q", err.Error())
	}
}

func TestSignedFileURLUnknownKindRejected(t *testing.T) {
	client, store, _ := newTestClient(t, http.NewServeMux(), nil)
	seedSession(t, store, "tok-1", "ref-1")

	_, err := client.SignedFileURL(context.Background(), FileKind("thumbnail"), "app-1", "file-1")
	if !IsValidationFailure(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestSignedFileURLsBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /applications/files/urls", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("applicationId"); got != "app-1" {
			t.Errorf("unexpected applicationId %q", got)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"urls": []map[string]string{
				{"fileId": "file-1", "url": "https://storage.local/signed/1"},
				{"fileId": "file-2", "url": "https://storage.local/signed/2"},
			},
		}, "ok")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	urls, err := client.SignedFileURLs(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(urls) != 2 || urls[1].FileID != "file-2" {
		t.Fatalf("unexpected urls %+v", urls)
	}
}
