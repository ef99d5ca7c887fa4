package transloadit

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrMissingUploadURL is returned by AddFile when the file has no upload URL.
	ErrMissingUploadURL = errors.New("file does not have an upload URL")

	ErrMissingAssemblyURL   = errors.New("assembly does not have an assembly_ssl_url")
	ErrMissingStatusURL     = errors.New("status URL is required")
	ErrInvalidFileSize      = errors.New("file size must not be negative")
	ErrInvalidExpectedFiles = errors.New("expected files must not be negative")

	// ErrInvalidJSON marks a response body that is not valid JSON.
	ErrInvalidJSON = errors.New("response body is not valid JSON")
)

// AssemblyCreationError is returned when the service answers a create
// request with an "error" field. Reason keeps the "reason" value as sent,
// which may be a string or a structured object.
type AssemblyCreationError struct {
	Message  string
	Reason   gjson.Result
	Response Response
}

func (e *AssemblyCreationError) Error() string {
	return e.Message
}

// TransportError wraps network failures, non-2xx statuses and undecodable bodies.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsServerError reports whether err is a TransportError caused by a network
// failure or a 5xx status.
func IsServerError(err error) bool {
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	if te.StatusCode == 0 {
		return !errors.Is(te.Err, ErrInvalidJSON)
	}
	return te.StatusCode >= 500
}
