package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// SubmitApplication submits a new certificate application. Client-side
// validation (Aadhaar and WhatsApp formats, payment proof, mandatory
// receipt) runs first; a validation failure returns before any network
// call and satisfies [IsValidationFailure].
//
// The request is multipart: document-specific form fields plus the payment
// receipt image. The backend answers 201 with the new application ID.
func (c *Client) SubmitApplication(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	if c == nil {
		return SubmitResult{}, ErrClientNotReady
	}
	if err := c.validateSubmit(in); err != nil {
		c.metrics.Inc(MetricValidationFailure)
		return SubmitResult{}, err
	}

	fields := make(map[string]string, len(in.Fields)+5)
	for k, v := range in.Fields {
		fields[k] = v
	}
	fields["applicantName"] = in.ApplicantName
	fields["whatsappNumber"] = in.WhatsAppNumber
	fields["aadhaarNumber"] = in.AadhaarNumber
	fields["utrNumber"] = in.Payment.UTRNumber
	fields["amount"] = strconv.FormatFloat(in.Payment.Amount, 'f', -1, 64)

	body, contentType, err := buildMultipart(fields, "receipt", in.Receipt, c.cfg.Upload.MaxReceiptBytes)
	if err != nil {
		c.metrics.Inc(MetricValidationFailure)
		return SubmitResult{}, err
	}

	var payload struct {
		ApplicationID string `json:"applicationId"`
	}
	env, err := c.do(ctx, requestSpec{
		method:      http.MethodPost,
		path:        "/applications/" + url.PathEscape(in.DocumentType),
		body:        body,
		contentType: contentType,
		requireAuth: true,
		out:         &payload,
	})
	if err != nil {
		c.metrics.Inc(MetricSubmitFailure)
		c.emitAudit(ctx, auditEventSubmitApplication, false, err, func() map[string]string {
			return map[string]string{"document_type": in.DocumentType}
		})
		return SubmitResult{}, err
	}

	c.metrics.Inc(MetricSubmitSuccess)
	c.emitAudit(ctx, auditEventSubmitApplication, true, nil, func() map[string]string {
		return map[string]string{
			"document_type":  in.DocumentType,
			"application_id": payload.ApplicationID,
		}
	})
	c.notify(NoticeSuccess, "Application submitted successfully")

	return SubmitResult{
		ApplicationID: payload.ApplicationID,
		Submitted:     true,
		Message:       env.Message,
	}, nil
}

// ListApplications fetches one page of the caller's applications (all
// applications for an admin). Zero-valued options mean no filter and
// backend-default pagination.
//
// ListApplications may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) ListApplications(ctx context.Context, opts ListOptions) (ListResult, error) {
	if c == nil {
		return ListResult{}, ErrClientNotReady
	}
	query := url.Values{}
	if opts.Status != "" {
		if !opts.Status.Valid() {
			return ListResult{}, fmt.Errorf("%w: unknown status %q", ErrValidation, opts.Status)
		}
		query.Set("status", string(opts.Status))
	}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var result ListResult
	if _, err := c.do(ctx, requestSpec{
		method:      http.MethodGet,
		path:        "/applications",
		query:       query,
		requireAuth: true,
		out:         &result,
	}); err != nil {
		return ListResult{}, err
	}
	return result, nil
}

// GetApplication fetches one application with its document-specific form
// data. Form data is passed through verbatim; the client never interprets
// it.
//
// GetApplication may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) GetApplication(ctx context.Context, applicationID string) (ApplicationDetail, error) {
	if c == nil {
		return ApplicationDetail{}, ErrClientNotReady
	}
	if strings.TrimSpace(applicationID) == "" {
		return ApplicationDetail{}, fmt.Errorf("%w: application id is required", ErrValidation)
	}

	var detail ApplicationDetail
	if _, err := c.do(ctx, requestSpec{
		method:      http.MethodGet,
		path:        "/applications/" + url.PathEscape(applicationID),
		requireAuth: true,
		out:         &detail,
	}); err != nil {
		return ApplicationDetail{}, err
	}
	return detail, nil
}

// ReviewApplication records an admin decision on a pending application.
// Remarks are mandatory for both outcomes; an empty remarks string fails
// before any network call.
//
// The lifecycle is enforced server-side too; reviewing a non-pending
// application comes back as an [APIError].
func (c *Client) ReviewApplication(ctx context.Context, applicationID string, decision ReviewDecision, remarks string) (Application, error) {
	if c == nil {
		return Application{}, ErrClientNotReady
	}
	if strings.TrimSpace(applicationID) == "" {
		return Application{}, fmt.Errorf("%w: application id is required", ErrValidation)
	}
	if err := validateReview(decision, remarks); err != nil {
		c.metrics.Inc(MetricValidationFailure)
		return Application{}, err
	}

	body, err := json.Marshal(map[string]string{
		"status":       string(decision),
		"adminRemarks": remarks,
	})
	if err != nil {
		return Application{}, err
	}

	var app Application
	if _, err := c.do(ctx, requestSpec{
		method:      http.MethodPost,
		path:        "/applications/admin/review/" + url.PathEscape(applicationID),
		body:        body,
		contentType: "application/json",
		requireAuth: true,
		out:         &app,
	}); err != nil {
		c.emitAudit(ctx, auditEventReviewApplication, false, err, func() map[string]string {
			return map[string]string{"application_id": applicationID, "decision": string(decision)}
		})
		return Application{}, err
	}

	switch decision {
	case DecisionApproved:
		c.metrics.Inc(MetricReviewApproved)
	case DecisionRejected:
		c.metrics.Inc(MetricReviewRejected)
	}
	c.emitAudit(ctx, auditEventReviewApplication, true, nil, func() map[string]string {
		return map[string]string{"application_id": applicationID, "decision": string(decision)}
	})
	c.notify(NoticeSuccess, "Application "+string(decision))

	return app, nil
}

// AttachCertificate uploads the generated certificate for an approved
// application, moving it to its final lifecycle state.
//
// AttachCertificate may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) AttachCertificate(ctx context.Context, applicationID string, certificate *FileUpload) (Application, error) {
	if c == nil {
		return Application{}, ErrClientNotReady
	}
	if strings.TrimSpace(applicationID) == "" {
		return Application{}, fmt.Errorf("%w: application id is required", ErrValidation)
	}
	if certificate == nil || certificate.Reader == nil {
		c.metrics.Inc(MetricValidationFailure)
		return Application{}, ErrCertificateFileRequired
	}

	body, contentType, err := buildMultipart(nil, "certificate", certificate, c.cfg.Upload.MaxCertificateBytes)
	if err != nil {
		c.metrics.Inc(MetricValidationFailure)
		return Application{}, err
	}

	var app Application
	if _, err := c.do(ctx, requestSpec{
		method:      http.MethodPost,
		path:        "/applications/admin/certificate/" + url.PathEscape(applicationID),
		body:        body,
		contentType: contentType,
		requireAuth: true,
		out:         &app,
	}); err != nil {
		c.emitAudit(ctx, auditEventCertificateAttach, false, err, func() map[string]string {
			return map[string]string{"application_id": applicationID}
		})
		return Application{}, err
	}

	c.metrics.Inc(MetricCertificateAttached)
	c.emitAudit(ctx, auditEventCertificateAttach, true, nil, func() map[string]string {
		return map[string]string{"application_id": applicationID}
	})
	c.notify(NoticeSuccess, "Certificate uploaded")

	return app, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildMultipart renders form fields plus one file part into a buffered
// multipart body. Buffering keeps the request replayable after a token
// refresh. The file part carries its declared content type; size limits
// are enforced while copying (zero limit disables the check).
func buildMultipart(fields map[string]string, fileField string, file *FileUpload, maxBytes int64) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	if file != nil && file.Reader != nil {
		name := file.Name
		if name == "" {
			name = fileField
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(fileField), quoteEscaper.Replace(name)))
		if file.ContentType != "" {
			header.Set("Content-Type", file.ContentType)
		} else {
			header.Set("Content-Type", "application/octet-stream")
		}

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}

		src := file.Reader
		if maxBytes > 0 {
			src = io.LimitReader(src, maxBytes+1)
		}
		n, err := io.Copy(part, src)
		if err != nil {
			return nil, "", err
		}
		if maxBytes > 0 && n > maxBytes {
			return nil, "", oversizeError(fileField, maxBytes)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
