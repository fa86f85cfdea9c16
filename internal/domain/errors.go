package domain

import "errors"

// Domain errors - these are business logic errors that should be translated
// to appropriate HTTP status codes by the handler layer

var (
	// Session errors
	ErrInvalidCredentials = errors.New("invalid username or token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotAuthenticated   = errors.New("please login to mark problems as solved")

	// Ledger errors
	ErrProblemNotTracked = errors.New("matching problem not found in backend")
	ErrLedgerUnavailable = errors.New("ledger service unavailable")
	ErrMarkFailed        = errors.New("failed to mark as solved, please try again")
	ErrUnmarkFailed      = errors.New("failed to unmark, please try again")

	// Feed errors
	ErrFeedUnavailable = errors.New("failed to load contest data")
	ErrFeedMalformed   = errors.New("feed response status is not OK")
	ErrFeedNotLoaded   = errors.New("feed snapshot not loaded yet")

	// Judge errors
	ErrHandleRequired   = errors.New("judge handle is required")
	ErrJudgeUnavailable = errors.New("judge status service unavailable")

	// General errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
)

// DomainError wraps an error with additional context
type DomainError struct {
	Err     error
	Message string
	Code    string
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &DomainError{
		Err:     err,
		Message: message,
	}
}
