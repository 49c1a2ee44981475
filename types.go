package portal

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gramseva/portal/session"
)

// UserSummary is the authenticated-user record held in the session store.
type UserSummary = session.UserSummary

const (
	// RoleClient is an exported constant or variable used by the portal client.
	RoleClient = "client"
	// RoleAdmin is an exported constant or variable used by the portal client.
	RoleAdmin = "admin"
)

// ApplicationStatus is the review lifecycle state of a certificate
// application. The lifecycle is finite and acyclic:
//
//	pending → approved → certificate_generated
//	pending → rejected
//
// rejected and certificate_generated are terminal.
type ApplicationStatus string

const (
	// StatusPending is an exported constant or variable used by the portal client.
	StatusPending ApplicationStatus = "pending"
	// StatusApproved is an exported constant or variable used by the portal client.
	StatusApproved ApplicationStatus = "approved"
	// StatusRejected is an exported constant or variable used by the portal client.
	StatusRejected ApplicationStatus = "rejected"
	// StatusCertificateGenerated is an exported constant or variable used by the portal client.
	StatusCertificateGenerated ApplicationStatus = "certificate_generated"
)

// Valid reports whether the status is one of the four lifecycle states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCertificateGenerated:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCertificateGenerated
}

// CanReview reports whether a review decision (approve/reject) is legal
// from s. Only pending applications are reviewable.
func (s ApplicationStatus) CanReview() bool {
	return s == StatusPending
}

// CanAttachCertificate reports whether a generated certificate may be
// attached from s. Only approved applications accept one.
func (s ApplicationStatus) CanAttachCertificate() bool {
	return s == StatusApproved
}

// ReviewDecision is the admin outcome of a pending application.
type ReviewDecision string

const (
	// DecisionApproved is an exported constant or variable used by the portal client.
	DecisionApproved ReviewDecision = "approved"
	// DecisionRejected is an exported constant or variable used by the portal client.
	DecisionRejected ReviewDecision = "rejected"
)

// UploadedFile references a document attached to an application. Files are
// immutable once attached and never carry a persistent URL — access goes
// through [Client.SignedFileURL].
type UploadedFile struct {
	FileID       string    `json:"fileId"`
	OriginalName string    `json:"originalName"`
	FileType     string    `json:"fileType"`
	FileSize     int64     `json:"fileSize"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// PaymentDetails carries the citizen-supplied fee payment proof.
type PaymentDetails struct {
	Status    string  `json:"status,omitempty"`
	UTRNumber string  `json:"utrNumber"`
	Amount    float64 `json:"amount"`
}

// GeneratedCertificate references the issued certificate document. It is
// populated exactly once, by [Client.AttachCertificate].
type GeneratedCertificate struct {
	FileName    string    `json:"fileName"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Application is a citizen's submitted request for a certificate or
// document, tracked through the review lifecycle.
type Application struct {
	ApplicationID        string                `json:"applicationId"`
	DocumentType         string                `json:"documentType"`
	Status               ApplicationStatus     `json:"status"`
	ApplicantName        string                `json:"applicantName,omitempty"`
	UploadedFiles        []UploadedFile        `json:"uploadedFiles,omitempty"`
	PaymentDetails       PaymentDetails        `json:"paymentDetails"`
	GeneratedCertificate *GeneratedCertificate `json:"generatedCertificate,omitempty"`
	AdminRemarks         string                `json:"adminRemarks,omitempty"`
	CreatedAt            time.Time             `json:"createdAt,omitempty"`
	UpdatedAt            time.Time             `json:"updatedAt,omitempty"`
}

// ApplicationDetail is returned by [Client.GetApplication]: the application
// plus its document-specific form data, which the client passes through
// without interpreting.
type ApplicationDetail struct {
	Application Application                `json:"application"`
	FormData    map[string]json.RawMessage `json:"formData,omitempty"`
}

// FileKind selects which protected object a signed URL is requested for.
type FileKind string

const (
	// KindFile is an exported constant or variable used by the portal client.
	KindFile FileKind = "file"
	// KindCertificate is an exported constant or variable used by the portal client.
	KindCertificate FileKind = "certificate"
)

// SignedURL is a short-lived capability URL for one stored object. It is
// never persisted or cached; request a fresh one per user action and use
// it immediately.
type SignedURL struct {
	FileID string `json:"fileId,omitempty"`
	URL    string `json:"url"`
}

// FileUpload is an in-memory or streamed file attached to a multipart
// request. Reader is consumed exactly once.
type FileUpload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// SubmitInput is the input for [Client.SubmitApplication].
//
// DocumentType selects the backend endpoint (for example
// "birth-certificate"); Fields carries the document-specific form values
// verbatim; Receipt is the mandatory payment-receipt image.
type SubmitInput struct {
	DocumentType   string
	ApplicantName  string
	WhatsAppNumber string
	AadhaarNumber  string
	Fields         map[string]string
	Payment        PaymentDetails
	Receipt        *FileUpload
}

// SubmitResult is returned by [Client.SubmitApplication] after a 201
// response.
type SubmitResult struct {
	ApplicationID string
	Submitted     bool
	Message       string
}

// ListOptions filters and paginates [Client.ListApplications]. Zero values
// mean "no filter" / backend defaults.
type ListOptions struct {
	Status   ApplicationStatus
	Category string
	Page     int
	Limit    int
}

// ListResult is one page of applications.
type ListResult struct {
	Applications []Application `json:"applications"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
	TotalCount   int           `json:"totalCount"`
}

// RegisterInput is the input for [Client.Register].
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionState is the app-visible authentication snapshot returned by
// [Client.Current].
//
// IsAuthenticated is true iff an access token is present and the most
// recent verification succeeded; there is no expired-but-cached state.
type SessionState struct {
	IsAuthenticated bool
	User            *UserSummary
}

// NoticeLevel classifies a user-visible notice.
type NoticeLevel int

const (
	// NoticeSuccess is an exported constant or variable used by the portal client.
	NoticeSuccess NoticeLevel = iota
	// NoticeError is an exported constant or variable used by the portal client.
	NoticeError
)

// Notice is a user-visible message produced as a presentation side effect
// (successful mutations, session expiry). It is layered on top of the core
// contract and not required for correctness.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// NoticeSink receives [Notice] values. Implementations must be fast and
// non-blocking; the client calls them inline on the request path.
type NoticeSink interface {
	Notify(notice Notice)
}

// NoOpNoticeSink is a [NoticeSink] that silently discards all notices.
type NoOpNoticeSink struct{}

// Notify describes the notify operation and its observable behavior.
//
// Notify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoOpNoticeSink) Notify(Notice) {}
