// Package apperr defines the error taxonomy shared by the trail and weather
// pipeline: local validation failures, empty upstream results and upstream
// transport failures. Each error carries guidance to help a caller recover.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	// KindValidation is malformed input detected before any outbound call.
	KindValidation Kind = iota + 1
	// KindNotFound is a successful upstream call that yielded nothing usable.
	KindNotFound
	// KindUpstream is a failed outbound call: non-success status or timeout.
	KindUpstream
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Sentinels for use with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream error")
)

// Error is the error type returned by every pipeline component.
type Error struct {
	Kind       Kind
	Service    string // upstream service name, empty for local errors
	StatusCode int    // HTTP status from the upstream, 0 when none was received
	Message    string
	Guidance   string
	Err        error
}

// Error implements the error interface and provides a formatted error message.
func (e *Error) Error() string {
	msg := e.Message
	if e.Service != "" {
		if e.StatusCode != 0 {
			msg = fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
		} else {
			msg = fmt.Sprintf("%s API error: %s", e.Service, e.Message)
		}
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrUpstream:
		return e.Kind == KindUpstream
	}
	return false
}

// Common guidance messages
const (
	GuidanceValidation = "Please correct the parameters and try again."

	GuidanceGeocodeNoResults = "Try a nearby town or a better-known landmark in the region."
	GuidanceTrailNotFound    = "Try a shorter or more common form of the trail name, or pass coordinates near the trail."
	GuidanceNoTrails         = "Try a larger search radius or turn off the difficulty and surface filters."

	GuidanceTimeout         = "The request timed out. Try reducing the search area or simplifying the query."
	GuidanceOverpassTimeout = "Consider simplifying your query by reducing the search radius or adding more specific filters."
	GuidanceNetworkError    = "Check your internet connection and try again."
	GuidanceDataError       = "The data received was incomplete or malformed. Try different search parameters."
	GuidanceGeneral         = "Please try again later or modify your request parameters."
)

// Validation returns a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{
		Kind:     KindValidation,
		Message:  fmt.Sprintf(format, args...),
		Guidance: GuidanceValidation,
	}
}

// NotFound returns a KindNotFound error with the given guidance.
func NotFound(guidance, format string, args ...any) *Error {
	return &Error{
		Kind:     KindNotFound,
		Message:  fmt.Sprintf(format, args...),
		Guidance: guidance,
	}
}

// Upstream returns a KindUpstream error. When guidance is empty it is
// inferred from the status code.
func Upstream(service string, statusCode int, message, guidance string, cause error) *Error {
	if guidance == "" {
		guidance = guidanceForStatus(statusCode)
	}
	return &Error{
		Kind:       KindUpstream,
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
		Guidance:   guidance,
		Err:        cause,
	}
}

func guidanceForStatus(statusCode int) string {
	switch statusCode {
	case 0:
		return GuidanceNetworkError
	case http.StatusTooManyRequests:
		return "Rate limit exceeded. Please try again in a few moments."
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return GuidanceTimeout
	case http.StatusBadRequest:
		return "The request was invalid. Check your parameters and try again."
	case http.StatusInternalServerError:
		return "The server encountered an error. This is likely temporary, please try again later."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return GuidanceGeneral
	}
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// GuidanceOf returns the guidance attached to err, falling back to a
// generic message.
func GuidanceOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Guidance != "" {
		return e.Guidance
	}
	return GuidanceGeneral
}

// HTTPStatus maps err to the status code a JSON API should answer with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
