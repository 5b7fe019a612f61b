// Package apperrors defines the error taxonomy shared by the campaign core.
// Every dispatch-time failure is converted into one of these types so the
// HTTP layer can map them to status codes without string matching.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input. Surfaced as 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError reports a missing referenced resource. Surfaced as 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// NoEligibleRecipientsError means audience resolution produced an empty set.
// The campaign is recorded as FAILED; no outbound call is attempted.
type NoEligibleRecipientsError struct {
	CampaignID string
	Channel    string
}

func (e *NoEligibleRecipientsError) Error() string {
	return fmt.Sprintf("campaign %s has no eligible %s recipients", e.CampaignID, e.Channel)
}

func IsNoEligibleRecipients(err error) bool {
	var nre *NoEligibleRecipientsError
	return errors.As(err, &nre)
}

// ProviderError reports a failed outbound provider call. StatusCode is zero
// for transport-level failures where no HTTP response was received.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

func IsProvider(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
