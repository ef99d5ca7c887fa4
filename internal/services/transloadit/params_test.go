package transloadit

import (
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func TestBuildParams(t *testing.T) {
	expires := time.Date(2026, 10, 19, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	params, err := BuildParams(`{"steps":{"resize":{"robot":"/image/resize"}}}`, ParamsOptions{
		AuthKey:    "key123",
		Expires:    expires,
		TemplateID: "tpl",
		NotifyURL:  "https://example.com/notify",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := map[string]string{
		"auth.key":           "key123",
		"auth.expires":       "2026/10/19 10:30:00+00:00",
		"template_id":        "tpl",
		"notify_url":         "https://example.com/notify",
		"steps.resize.robot": "/image/resize",
	}
	for path, want := range checks {
		if got := gjson.Get(params, path).String(); got != want {
			t.Errorf("%s: expected %q, got %q", path, want, got)
		}
	}
}

func TestBuildParamsEmptyBase(t *testing.T) {
	params, err := BuildParams("", ParamsOptions{TemplateID: "tpl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params != `{"template_id":"tpl"}` {
		t.Errorf("unexpected params %s", params)
	}
}

func TestBuildParamsLeavesBaseUntouched(t *testing.T) {
	base := `{"auth":{"key":"existing"}}`
	params, err := BuildParams(base, ParamsOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params != base {
		t.Errorf("expected %s, got %s", base, params)
	}
}

func TestBuildParamsInvalidBase(t *testing.T) {
	for _, base := range []string{"not json", "[1,2]", `"str"`} {
		if _, err := BuildParams(base, ParamsOptions{}); err == nil {
			t.Errorf("expected error for base %q", base)
		}
	}
}
