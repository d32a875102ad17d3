// Package redact scrubs sensitive fragments from strings before they are
// logged or returned in error responses. Extraction errors routinely carry
// temp-file paths, source URLs, and occasionally panic output; none of that
// belongs in a client-visible message.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactedPathPlaceholder = "[REDACTED_PATH]"
	RedactedURLPlaceholder  = "[REDACTED_URL]"
	RedactedHostPlaceholder = "[REDACTED_HOST]"
)

var (
	// URLs, including any inline credentials.
	urlRegex = regexp.MustCompile(`\bhttps?://[^\s'"]+`)

	// File paths.
	unixPathRegex = regexp.MustCompile(`(/[\w.-]+){2,}`)
	winPathRegex  = regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`)

	// Stack trace fragments from recovered panics.
	stackTraceRegex = regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`)

	// Bare host:port endpoints.
	hostPortRegex = regexp.MustCompile(
		`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`,
	)

	patterns = []*regexp.Regexp{
		urlRegex, unixPathRegex, winPathRegex, stackTraceRegex, hostPortRegex,
	}

	patternPlaceholders = map[*regexp.Regexp]string{
		urlRegex:        RedactedURLPlaceholder,
		unixPathRegex:   RedactedPathPlaceholder,
		winPathRegex:    RedactedPathPlaceholder,
		stackTraceRegex: "[STACK_TRACE_REDACTED]",
		hostPortRegex:   RedactedHostPlaceholder,
	}
)

// String redacts sensitive fragments from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, pattern := range patterns {
		result = pattern.ReplaceAllString(result, patternPlaceholders[pattern])
	}
	return result
}

// Error redacts sensitive fragments from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
