package transloadit

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ExpiresLayout is the timestamp format used by auth.expires.
const ExpiresLayout = "2006/01/02 15:04:05+00:00"

// ParamsOptions are merged into a params document by BuildParams.
// Empty values leave the document untouched.
type ParamsOptions struct {
	AuthKey    string
	Expires    time.Time
	TemplateID string
	NotifyURL  string
}

// BuildParams sets the given options on base, a JSON object. An empty base
// starts from "{}".
func BuildParams(base string, opts ParamsOptions) (string, error) {
	doc := strings.TrimSpace(base)
	if doc == "" {
		doc = "{}"
	}
	if !gjson.Valid(doc) || !gjson.Parse(doc).IsObject() {
		return "", fmt.Errorf("params must be a JSON object")
	}

	sets := []struct {
		path  string
		value string
	}{
		{"auth.key", opts.AuthKey},
		{"template_id", opts.TemplateID},
		{"notify_url", opts.NotifyURL},
	}
	if !opts.Expires.IsZero() {
		sets = append(sets, struct {
			path  string
			value string
		}{"auth.expires", opts.Expires.UTC().Format(ExpiresLayout)})
	}

	var err error
	for _, s := range sets {
		if s.value == "" {
			continue
		}
		doc, err = sjson.Set(doc, s.path, s.value)
		if err != nil {
			return "", fmt.Errorf("set %s: %w", s.path, err)
		}
	}

	return doc, nil
}
