package utils

import (
	"fmt"
	"io"

	"github.com/ochronus/gotransloadit/internal/services/transloadit"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteResponse prints a service response as indented JSON or as YAML.
func WriteResponse(w io.Writer, resp transloadit.Response, format string) error {
	if len(resp) == 0 {
		resp = transloadit.Response("null")
	}
	if !gjson.ValidBytes(resp) {
		return transloadit.ErrInvalidJSON
	}

	switch format {
	case "", FormatJSON:
		_, err := w.Write(pretty.Pretty(resp))
		return err
	case FormatYAML:
		// Decoding into a yaml.Node keeps the response's key order.
		var node yaml.Node
		if err := yaml.Unmarshal(resp, &node); err != nil {
			return fmt.Errorf("failed to convert response: %w", err)
		}
		clearStyle(&node)

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// clearStyle drops the flow style and quoting that JSON input carries so
// the document renders as block YAML.
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}
