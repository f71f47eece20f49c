package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// NetworkError means the transport never produced an HTTP response
// (unreachable host, DNS failure, timeout).
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error: %s: %v", e.Message, e.Err)
	}
	return "network error: " + e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HttpError means the transport answered with a non-2xx status.
type HttpError struct {
	StatusCode int
	Message    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("http error %d: %s", e.StatusCode, e.Message)
}

// BusinessError means the transport answered 2xx but the payload carried a
// non-ok application code.
type BusinessError struct {
	Code    int
	Message string
	Details string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("business error %d: %s", e.Code, e.Message)
}

// LocalStoreError wraps a failure of the local persistence layer. Unlike remote
// errors it is fatal: there is no further fallback behind the local store.
type LocalStoreError struct {
	Op  string
	Err error
}

func (e *LocalStoreError) Error() string {
	return fmt.Sprintf("local store %s: %v", e.Op, e.Err)
}

func (e *LocalStoreError) Unwrap() error { return e.Err }

// ValidationError rejects caller-supplied data before any persistence attempt.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return "validation: " + e.Message
}

// IsRemoteError reports whether err belongs to the remote taxonomy
// (network / http / business), i.e. whether a local fallback applies.
func IsRemoteError(err error) bool {
	var ne *NetworkError
	var he *HttpError
	var be *BusinessError
	return errors.As(err, &ne) || errors.As(err, &he) || errors.As(err, &be)
}

// IsUnauthorized reports whether err is a 401, surfaced either as an HTTP
// status or as a business code.
func IsUnauthorized(err error) bool {
	var he *HttpError
	if errors.As(err, &he) && he.StatusCode == 401 {
		return true
	}
	var be *BusinessError
	if errors.As(err, &be) && be.Code == 401 {
		return true
	}
	return false
}

// IsRejectedInput reports whether err is a validation-class rejection from the
// server (4xx semantic, not auth). Falling back to the local store on these is
// pointless: the same payload would be rejected again at reconciliation.
func IsRejectedInput(err error) bool {
	var be *BusinessError
	if errors.As(err, &be) && be.Code >= 400 && be.Code < 500 && be.Code != 401 {
		return true
	}
	var he *HttpError
	if errors.As(err, &he) && (he.StatusCode == 400 || he.StatusCode == 422) {
		return true
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage renders err as a short user-facing string for transient
// notifications. The wording mirrors the messages the mobile client shows.
func UserMessage(err error) string {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return "Network connection failed, check your network settings"
	}
	var he *HttpError
	if errors.As(err, &he) {
		switch he.StatusCode {
		case 400:
			return "Invalid request parameters"
		case 401:
			return "Session expired, please log in again"
		case 403:
			return "Permission denied"
		case 404:
			return "The requested resource does not exist"
		case 500:
			return "Internal server error"
		case 502, 503, 504:
			return "Service temporarily unavailable"
		default:
			return "Request failed"
		}
	}
	var be *BusinessError
	if errors.As(err, &be) {
		if be.Code == 401 {
			return "Session expired, please log in again"
		}
		if be.Message != "" {
			return be.Message
		}
		return "Request rejected"
	}
	return "Request failed"
}
