// Package sanitize cleans editor-supplied HTML before it is stored.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// HTML sanitizes rich-text fields with the user-generated-content policy.
// Safe for concurrent use.
type HTML struct {
	policy *bluemonday.Policy
}

// NewHTML creates a sanitizer allowing formatting, links, images and tables,
// and dropping scripts, styles and event handlers.
func NewHTML() *HTML {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return &HTML{policy: p}
}

// HTML returns s with disallowed markup removed.
func (h *HTML) HTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return h.policy.Sanitize(s)
}
