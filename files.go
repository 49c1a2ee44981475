package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SignedFileURL requests a fresh short-lived URL for one protected object.
// kind selects the object: [KindFile] addresses an uploaded document by
// fileID, [KindCertificate] addresses the application's generated
// certificate (fileID is ignored).
//
// The returned URL is a capability. It is never cached; request one per
// user action and use it immediately.
//
// A missing uploaded file maps to [ErrFileNotFound]; a certificate
// requested before one was attached maps to [ErrCertificateNotReady].
func (c *Client) SignedFileURL(ctx context.Context, kind FileKind, applicationID, fileID string) (SignedURL, error) {
	if c == nil {
		return SignedURL{}, ErrClientNotReady
	}
	if strings.TrimSpace(applicationID) == "" {
		return SignedURL{}, fmt.Errorf("%w: application id is required", ErrValidation)
	}

	var path string
	switch kind {
	case KindFile:
		if strings.TrimSpace(fileID) == "" {
			return SignedURL{}, fmt.Errorf("%w: file id is required", ErrValidation)
		}
		path = "/applications/files/" + url.PathEscape(applicationID) + "/" + url.PathEscape(fileID) + "/signed-url"
	case KindCertificate:
		path = "/applications/files/" + url.PathEscape(applicationID) + "/certificate/signed-url"
	default:
		return SignedURL{}, fmt.Errorf("%w: unknown file kind %q", ErrValidation, kind)
	}

	var payload struct {
		URL string `json:"url"`
	}
	_, err := c.do(ctx, requestSpec{
		method:      http.MethodGet,
		path:        path,
		requireAuth: true,
		out:         &payload,
	})
	if err != nil {
		c.metrics.Inc(MetricSignedURLFailure)
		if notFound(err) {
			if kind == KindCertificate {
				return SignedURL{}, ErrCertificateNotReady
			}
			return SignedURL{}, ErrFileNotFound
		}
		return SignedURL{}, err
	}

	c.metrics.Inc(MetricSignedURLIssued)
	c.emitAudit(ctx, auditEventSignedURLRequested, true, nil, func() map[string]string {
		return map[string]string{
			"application_id": applicationID,
			"kind":           string(kind),
		}
	})

	return SignedURL{FileID: fileID, URL: payload.URL}, nil
}

// SignedFileURLs requests fresh URLs for every uploaded document of one
// application in a single call.
//
// SignedFileURLs may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) SignedFileURLs(ctx context.Context, applicationID string) ([]SignedURL, error) {
	if c == nil {
		return nil, ErrClientNotReady
	}
	if strings.TrimSpace(applicationID) == "" {
		return nil, fmt.Errorf("%w: application id is required", ErrValidation)
	}

	query := url.Values{}
	query.Set("applicationId", applicationID)

	var payload struct {
		URLs []SignedURL `json:"urls"`
	}
	_, err := c.do(ctx, requestSpec{
		method:      http.MethodGet,
		path:        "/applications/files/urls",
		query:       query,
		requireAuth: true,
		out:         &payload,
	})
	if err != nil {
		c.metrics.Inc(MetricSignedURLFailure)
		if notFound(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	c.metrics.Inc(MetricSignedURLIssued)
	return payload.URLs, nil
}

func notFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
