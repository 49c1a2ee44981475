package portal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

func validSubmitInput() SubmitInput {
	return SubmitInput{
		DocumentType:   "birth-certificate",
		ApplicantName:  "Asha Sharma",
		WhatsAppNumber: "9876543210",
		AadhaarNumber:  "123412341234",
		Fields:         map[string]string{"childName": "Riya"},
		Payment:        PaymentDetails{UTRNumber: "UTR0042", Amount: 50},
		Receipt: &FileUpload{
			Name:        "receipt.jpg",
			ContentType: "image/jpeg",
			Reader:      strings.NewReader("fake-jpeg-bytes"),
		},
	}
}

func TestSubmitBirthCertificateRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /applications/birth-certificate", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart body: %v", err)
			writeFailure(w, http.StatusBadRequest, "bad form")
			return
		}
		if got := r.FormValue("aadhaarNumber"); got != "123412341234" {
			t.Errorf("unexpected aadhaar %q", got)
		}
		if got := r.FormValue("childName"); got != "Riya" {
			t.Errorf("unexpected form field %q", got)
		}
		file, header, err := r.FormFile("receipt")
		if err != nil {
			t.Errorf("expected receipt part: %v", err)
		} else {
			_ = file.Close()
			if header.Filename != "receipt.jpg" {
				t.Errorf("unexpected filename %q", header.Filename)
			}
		}
		writeEnvelope(w, http.StatusCreated, map[string]string{"applicationId": "app-1"}, "Application submitted")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	result, err := client.SubmitApplication(context.Background(), validSubmitInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !result.Submitted || result.ApplicationID != "app-1" {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := client.Metrics().Value(MetricSubmitSuccess); got != 1 {
		t.Fatalf("expected submit success metric, got %d", got)
	}
}

func TestSubmitValidationBlocksNetwork(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusCreated, nil, "ok")
	})

	client, store, _ := newTestClient(t, handler, nil)
	seedSession(t, store, "tok-1", "ref-1")

	cases := []struct {
		name string
		mut  func(*SubmitInput)
		want error
	}{
		{"missing document type", func(in *SubmitInput) { in.DocumentType = " " }, ErrDocumentTypeRequired},
		{"short aadhaar", func(in *SubmitInput) { in.AadhaarNumber = "1234" }, ErrAadhaarInvalid},
		{"alpha aadhaar", func(in *SubmitInput) { in.AadhaarNumber = "12341234123a" }, ErrAadhaarInvalid},
		{"short whatsapp", func(in *SubmitInput) { in.WhatsAppNumber = "98765" }, ErrWhatsAppInvalid},
		{"missing utr", func(in *SubmitInput) { in.Payment.UTRNumber = "" }, ErrUTRRequired},
		{"zero amount", func(in *SubmitInput) { in.Payment.Amount = 0 }, ErrAmountInvalid},
		{"missing receipt", func(in *SubmitInput) { in.Receipt = nil }, ErrReceiptRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSubmitInput()
			tc.mut(&in)

			_, err := client.SubmitApplication(context.Background(), in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !IsValidationFailure(err) {
				t.Fatalf("expected a validation failure, got %v", err)
			}
		})
	}

	if calls.Load() != 0 {
		t.Fatalf("validation failures must not reach the network, got %d calls", calls.Load())
	}
}

func TestSubmitOversizeReceiptRejected(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	client, store, _ := newTestClient(t, handler, func(cfg *Config) {
		cfg.Upload.MaxReceiptBytes = 4
	})
	seedSession(t, store, "tok-1", "ref-1")

	_, err := client.SubmitApplication(context.Background(), validSubmitInput())
	if !IsValidationFailure(err) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatal("oversize receipt must not reach the network")
	}
}

func TestReviewEmptyRemarksNeverIssuesNetworkCall(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	client, store, _ := newTestClient(t, handler, nil)
	seedSession(t, store, "tok-1", "ref-1")

	_, err := client.ReviewApplication(context.Background(), "app-1", DecisionApproved, "")
	if !errors.Is(err, ErrRemarksRequired) {
		t.Fatalf("expected ErrRemarksRequired, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no network calls, got %d", calls.Load())
	}
}

func TestReviewInvalidDecisionRejected(t *testing.T) {
	client, store, _ := newTestClient(t, http.NewServeMux(), nil)
	seedSession(t, store, "tok-1", "ref-1")

	_, err := client.ReviewApplication(context.Background(), "app-1", ReviewDecision("maybe"), "looks fine")
	if !errors.Is(err, ErrDecisionInvalid) {
		t.Fatalf("expected ErrDecisionInvalid, got %v", err)
	}
}

func TestReviewApproveRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /applications/admin/review/app-1", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := jsonDecode(r, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["status"] != "approved" || body["adminRemarks"] != "verified in person" {
			t.Errorf("unexpected body %+v", body)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"applicationId": "app-1", "status": "approved", "adminRemarks": "verified in person",
		}, "Review recorded")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	app, err := client.ReviewApplication(context.Background(), "app-1", DecisionApproved, "verified in person")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if app.Status != StatusApproved {
		t.Fatalf("unexpected status %q", app.Status)
	}
	if got := client.Metrics().Value(MetricReviewApproved); got != 1 {
		t.Fatalf("expected approved metric, got %d", got)
	}
}

func TestReviewTerminalApplicationPropagatesServerFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /applications/admin/review/app-9", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusConflict, "Application is not pending")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	_, err := client.ReviewApplication(context.Background(), "app-9", DecisionApproved, "late approval")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Application is not pending" {
		t.Fatalf("expected backend message verbatim, got %q", apiErr.Message)
	}
	if !errors.Is(err, ErrServer) {
		t.Fatal("expected server-failure classification")
	}
}

func TestAttachCertificateRequiresFile(t *testing.T) {
	client, store, _ := newTestClient(t, http.NewServeMux(), nil)
	seedSession(t, store, "tok-1", "ref-1")

	_, err := client.AttachCertificate(context.Background(), "app-1", nil)
	if !errors.Is(err, ErrCertificateFileRequired) {
		t.Fatalf("expected ErrCertificateFileRequired, got %v", err)
	}
}

func TestAttachCertificateRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /applications/admin/certificate/app-1", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart body: %v", err)
		}
		if _, _, err := r.FormFile("certificate"); err != nil {
			t.Errorf("expected certificate part: %v", err)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"applicationId": "app-1", "status": "certificate_generated",
			"generatedCertificate": map[string]string{"fileName": "cert.pdf"},
		}, "Certificate uploaded")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	app, err := client.AttachCertificate(context.Background(), "app-1", &FileUpload{
		Name:        "cert.pdf",
		ContentType: "application/pdf",
		Reader:      strings.NewReader("%PDF-fake"),
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if app.Status != StatusCertificateGenerated || app.GeneratedCertificate == nil {
		t.Fatalf("unexpected application %+v", app)
	}
}

func TestListApplicationsForwardsFilters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /applications", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "pending" || q.Get("page") != "2" || q.Get("limit") != "10" {
			t.Errorf("unexpected query %v", q)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"applications": []map[string]any{{"applicationId": "app-1", "status": "pending"}},
			"page":         2, "totalPages": 3, "totalCount": 25,
		}, "ok")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	result, err := client.ListApplications(context.Background(), ListOptions{
		Status: StatusPending, Page: 2, Limit: 10,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Applications) != 1 || result.TotalCount != 25 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestGetApplicationPassesFormDataThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /applications/app-1", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"application": map[string]any{"applicationId": "app-1", "status": "pending"},
			"formData":    map[string]any{"childName": "Riya", "weightKg": 3.2},
		}, "ok")
	})

	client, store, _ := newTestClient(t, mux, nil)
	seedSession(t, store, "tok-1", "ref-1")

	detail, err := client.GetApplication(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if detail.Application.ApplicationID != "app-1" {
		t.Fatalf("unexpected application %+v", detail.Application)
	}
	if string(detail.FormData["childName"]) != `"Riya"` {
		t.Fatalf("expected raw form data passthrough, got %s", detail.FormData["childName"])
	}
}

func TestApplicationStatusTransitions(t *testing.T) {
	if !StatusPending.CanReview() || StatusApproved.CanReview() {
		t.Fatal("only pending applications are reviewable")
	}
	if !StatusApproved.CanAttachCertificate() || StatusPending.CanAttachCertificate() {
		t.Fatal("only approved applications accept a certificate")
	}
	if !StatusRejected.Terminal() || !StatusCertificateGenerated.Terminal() || StatusPending.Terminal() {
		t.Fatal("unexpected terminal classification")
	}
	if ApplicationStatus("reopened").Valid() {
		t.Fatal("unknown status must not validate")
	}
}
