package errors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/wekeepgrowing/workshop-backend/pkg/errors"
)

// AuthorizationSourceError reports a failure to read VHC authorizations
// from the remote source.
type AuthorizationSourceError struct {
	Type    string
	Message string
	JobID   uint
	Cause   error
}

func (e *AuthorizationSourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (job: %d) - %v", e.Type, e.Message, e.JobID, e.Cause)
	}
	return fmt.Sprintf("%s: %s (job: %d)", e.Type, e.Message, e.JobID)
}

func (e *AuthorizationSourceError) Unwrap() error {
	return e.Cause
}

const (
	ErrTypeSupabaseConnectionFailed = "SUPABASE_CONNECTION_FAILED"
	ErrTypeSupabaseUnauthorized     = "SUPABASE_UNAUTHORIZED"
	ErrTypeSupabaseBadResponse      = "SUPABASE_BAD_RESPONSE"
)

func NewSupabaseConnectionError(jobID uint, cause error) *AuthorizationSourceError {
	return &AuthorizationSourceError{
		Type:    ErrTypeSupabaseConnectionFailed,
		Message: "failed to reach supabase",
		JobID:   jobID,
		Cause:   cause,
	}
}

func NewSupabaseUnauthorizedError(jobID uint) *AuthorizationSourceError {
	return &AuthorizationSourceError{
		Type:    ErrTypeSupabaseUnauthorized,
		Message: "supabase rejected the api key",
		JobID:   jobID,
	}
}

func NewSupabaseBadResponseError(jobID uint, cause error) *AuthorizationSourceError {
	return &AuthorizationSourceError{
		Type:    ErrTypeSupabaseBadResponse,
		Message: "unexpected supabase response",
		JobID:   jobID,
		Cause:   cause,
	}
}

// IsAuthorizationSourceError checks if an error is an AuthorizationSourceError
func IsAuthorizationSourceError(err error) bool {
	var target *AuthorizationSourceError
	return errors.As(err, &target)
}

// FromAuthorizationSource turns a source failure into an UNAVAILABLE app error.
func FromAuthorizationSource(err error) error {
	if IsAuthorizationSourceError(err) {
		return pkgerrors.NewAppError(pkgerrors.ErrUnavailable, "authorization source unavailable", err)
	}
	return err
}
