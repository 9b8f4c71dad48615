// Package stream assembles a model's streamed output into display-ready HTML.
//
// Models often wrap their answer in a markdown code fence even when told not
// to. The helpers here strip a single leading fence while the response is
// still arriving, and a trailing fence once it is complete.
package stream

import (
	"regexp"
	"strings"
)

var (
	// ```html, ```HTML, ```xml, or a bare ``` followed by any whitespace.
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*\\s*")
	trailingFence = regexp.MustCompile("```\\s*$")
)

// StripLeadingFence removes one optional code fence opener at the very
// start of s. Anything else is returned unchanged.
func StripLeadingFence(s string) string {
	loc := leadingFence.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[loc[1]:]
}

// StripTrailingFence removes one optional closing fence at the very end of s.
func StripTrailingFence(s string) string {
	loc := trailingFence.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]]
}

// Clean produces the authoritative final template from a complete response.
func Clean(raw string) string {
	return strings.TrimSpace(StripTrailingFence(StripLeadingFence(raw)))
}
