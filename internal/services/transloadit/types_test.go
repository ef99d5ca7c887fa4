package transloadit

import (
	"encoding/json"
	"testing"
)

func TestResponseAccessors(t *testing.T) {
	resp := Response(`{"ok":"ASSEMBLY_EXECUTING","error":"","message":"working","results":{"thumb":[{"ssl_url":"https://cdn/x.png"}]}}`)

	if resp.Status() != StatusExecuting {
		t.Errorf("unexpected status %q", resp.Status())
	}
	if resp.ErrorCode() != "" {
		t.Errorf("expected empty error code, got %q", resp.ErrorCode())
	}
	if resp.Message() != "working" {
		t.Errorf("unexpected message %q", resp.Message())
	}
	if got := resp.Get("results.thumb.0.ssl_url").String(); got != "https://cdn/x.png" {
		t.Errorf("unexpected nested value %q", got)
	}

	m, err := resp.Map()
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if m["ok"] != StatusExecuting {
		t.Errorf("unexpected map value %v", m["ok"])
	}
}

func TestResponseMapInvalid(t *testing.T) {
	if _, err := Response(`[1,2]`).Map(); err == nil {
		t.Fatal("expected error for non-object body")
	}
}

func TestResponseIsTerminal(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"ok":"ASSEMBLY_UPLOADING"}`, false},
		{`{"ok":"ASSEMBLY_EXECUTING"}`, false},
		{`{"ok":"ASSEMBLY_COMPLETED"}`, true},
		{`{"ok":"ASSEMBLY_CANCELED"}`, true},
		{`{"ok":"REQUEST_ABORTED"}`, true},
		{`{"error":"INTERNAL_COMMAND_ERROR"}`, true},
		{`{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			if got := Response(tt.body).IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResponseMarshalJSON(t *testing.T) {
	wrapped := struct {
		Assembly Response `json:"assembly"`
		Empty    Response `json:"empty"`
	}{
		Assembly: Response(`{"ok":"ASSEMBLY_COMPLETED"}`),
	}

	data, err := json.Marshal(wrapped)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"assembly":{"ok":"ASSEMBLY_COMPLETED"},"empty":null}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestResponseErrorCode(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":"INVALID_SIGNATURE"}`, "INVALID_SIGNATURE"},
		{`{"error":""}`, ""},
		{`{"error":false}`, ""},
		{`{"error":null}`, ""},
		{`{"error":0}`, ""},
		{`{"error":true}`, "true"},
		{`{"error":42}`, "42"},
		{`{"error":{"code":"X"}}`, `{"code":"X"}`},
		{`{"ok":"ASSEMBLY_COMPLETED"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			if got := Response(tt.body).ErrorCode(); got != tt.want {
				t.Errorf("ErrorCode = %q, want %q", got, tt.want)
			}
		})
	}
}
