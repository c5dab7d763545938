// Package sanitizer strips markup from user-supplied free-text fields before
// they are stored or echoed back in responses.
package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NameSanitizer removes all HTML from display names. Registration is the
// only write path for free text in this service.
type NameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer creates a sanitizer with the strict no-markup policy.
func NewNameSanitizer() *NameSanitizer {
	return &NameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize strips tags, unescapes the entities bluemonday introduced, and
// collapses runs of whitespace.
func (s *NameSanitizer) Sanitize(name string) string {
	clean := s.policy.Sanitize(name)
	clean = html.UnescapeString(clean)
	return strings.Join(strings.Fields(clean), " ")
}
