// Package redact strips secrets and bulky payloads from strings before they
// are logged or returned in error responses. Errors from the image model can
// echo request URLs carrying the API key, and upstream failures sometimes
// include the inline image they were given.
package redact

import (
	"regexp"
)

// Placeholders substituted for redacted content.
const (
	RedactionPlaceholder    = "[REDACTED]"
	RedactedKeyPlaceholder  = "[REDACTED_KEY]"
	RedactedPathPlaceholder = "[REDACTED_PATH]"
	RedactedDataPlaceholder = "[REDACTED_DATA]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules are applied in order; data URLs go first so their base64 payload is
// not partially matched by the key rules.
var rules = []rule{
	// Inline images: data:image/png;base64,iVBORw0...
	{regexp.MustCompile(`data:[\w.+-]+/[\w.+-]+;base64,[A-Za-z0-9+/=]+`), "data:" + RedactedDataPlaceholder},
	// Google API keys
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`), RedactedKeyPlaceholder},
	// ?key=... and &key=... in request URLs
	{regexp.MustCompile(`([?&](?:key|api_key|access_token)=)[^&\s"']+`), "${1}" + RedactedKeyPlaceholder},
	// x-goog-api-key: ..., api_key=..., token: ...
	{regexp.MustCompile(`(?i)(x-goog-api-key|api[_-]?key|token|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), RedactedKeyPlaceholder},
	// Stack trace fragments
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},
	// File paths
	{regexp.MustCompile(`(^|[\s(=:"'])(?:/[\w.-]+){2,}`), "${1}" + RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},
	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
