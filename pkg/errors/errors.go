package errors

import (
	"errors"
	"fmt"
)

var (
	ErrOrganizationRequired = errors.New("organization id is required")
	ErrSnapshotNotLoaded    = errors.New("no tracking snapshot loaded for organization")

	ErrTractorQueryFailed    = errors.New("tractor query failed")
	ErrTrailerQueryFailed    = errors.New("trailer query failed")
	ErrFleetSetQueryFailed   = errors.New("fleet set query failed")
	ErrLiveStateQueryFailed  = errors.New("live state query failed")
	ErrCapabilityQueryFailed = errors.New("device capability query failed")
	ErrExecutionQueryFailed  = errors.New("dispatch execution query failed")
	ErrPartyQueryFailed      = errors.New("carrier/driver query failed")

	ErrNotifierNotConnected = errors.New("change notifier is not connected")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// QueryError ties a failed read to its sentinel: errors.Is matches the
// sentinel, errors.As surfaces the AppError with its code and message.
func QueryError(code string, sentinel, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: sentinel.Error(),
		Err:     errors.Join(sentinel, cause),
	}
}
