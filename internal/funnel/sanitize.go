package funnel

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips all markup. Policies are safe for concurrent use once
// built.
var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText removes HTML from user input and decodes the entities the
// policy leaves behind, so "Tom & Jerry" survives unchanged.
func sanitizeText(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// sanitizeValue applies sanitizeText to strings and string lists.
func sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return sanitizeText(t)
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = sanitizeText(s)
		}
		return out
	default:
		return v
	}
}
