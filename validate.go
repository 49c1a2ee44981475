package portal

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	aadhaarPattern  = regexp.MustCompile(`^[0-9]{12}$`)
	whatsappPattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// validateSubmit runs the client-side checks for an application
// submission. Everything here fails before any network call.
func (c *Client) validateSubmit(in SubmitInput) error {
	if strings.TrimSpace(in.DocumentType) == "" {
		return ErrDocumentTypeRequired
	}
	if !aadhaarPattern.MatchString(in.AadhaarNumber) {
		return ErrAadhaarInvalid
	}
	if !whatsappPattern.MatchString(in.WhatsAppNumber) {
		return ErrWhatsAppInvalid
	}
	if strings.TrimSpace(in.Payment.UTRNumber) == "" {
		return ErrUTRRequired
	}
	if in.Payment.Amount <= 0 {
		return ErrAmountInvalid
	}
	if in.Receipt == nil || in.Receipt.Reader == nil {
		return ErrReceiptRequired
	}
	return nil
}

func validateReview(decision ReviewDecision, remarks string) error {
	if decision != DecisionApproved && decision != DecisionRejected {
		return ErrDecisionInvalid
	}
	if strings.TrimSpace(remarks) == "" {
		return ErrRemarksRequired
	}
	return nil
}

func oversizeError(field string, limit int64) error {
	return fmt.Errorf("%w: %s exceeds %d bytes", ErrValidation, field, limit)
}
