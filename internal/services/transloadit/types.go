package transloadit

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Assembly states reported in the "ok" field.
const (
	StatusUploading = "ASSEMBLY_UPLOADING"
	StatusExecuting = "ASSEMBLY_EXECUTING"
	StatusCompleted = "ASSEMBLY_COMPLETED"
	StatusCanceled  = "ASSEMBLY_CANCELED"
	StatusAborted   = "REQUEST_ABORTED"
)

// Response is a JSON response body from the assemblies API. It is passed
// through exactly as received.
type Response []byte

// Get returns the value at a gjson path.
func (r Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r, path)
}

// Map decodes the response into a generic map.
func (r Response) Map() (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(r, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// MarshalJSON returns the raw body so a Response can be embedded in other JSON documents.
func (r Response) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// Status returns the "ok" field.
func (r Response) Status() string {
	return r.Get("ok").String()
}

// ErrorCode returns the "error" field, or "" when it is absent or falsy
// (false, null, 0 or an empty string).
func (r Response) ErrorCode() string {
	return errorCode(r.Get("error"))
}

// Message returns the human readable "message" field.
func (r Response) Message() string {
	return r.Get("message").String()
}

// IsTerminal reports whether the assembly has stopped processing.
func (r Response) IsTerminal() bool {
	if r.ErrorCode() != "" {
		return true
	}
	switch r.Status() {
	case StatusCompleted, StatusCanceled, StatusAborted:
		return true
	}
	return false
}

// Assembly is the service's answer to a create request.
type Assembly struct {
	Response
}

// SSLURL returns the HTTPS callback base of the assembly.
func (a *Assembly) SSLURL() string {
	return a.Get("assembly_ssl_url").String()
}

// ID returns the assembly id.
func (a *Assembly) ID() string {
	return a.Get("assembly_id").String()
}

// Ref returns the handle reserve, add and cancel operate on.
func (a *Assembly) Ref() AssemblyRef {
	return AssemblyRef{SSLURL: a.SSLURL()}
}

// AssemblyRef identifies an existing assembly by its callback URL.
type AssemblyRef struct {
	SSLURL string
}

// FileRef describes a file known to the caller.
type FileRef struct {
	Name      string
	Size      int64
	UploadURL string
}

// AssemblyOptions holds the inputs of CreateAssembly.
type AssemblyOptions struct {
	// Params is sent verbatim when it is a string, []byte or json.RawMessage
	// and JSON-encoded otherwise.
	Params any

	// Fields are added to the form as-is, one part each.
	Fields map[string]string

	// Signature is only sent when non-empty.
	Signature string

	// ExpectedFiles is the number of files that will be registered with the assembly.
	ExpectedFiles int
}

func errorCode(v gjson.Result) string {
	switch v.Type {
	case gjson.Null, gjson.False:
		return ""
	case gjson.Number:
		if v.Num == 0 {
			return ""
		}
		return v.Raw
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}
