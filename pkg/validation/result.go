// Package validation provides result-shaped invariant checking for domain
// entities. Checks accumulate "field: message" entries instead of returning
// errors, so callers decide whether invalid input is fatal.
package validation

import (
	"fmt"
	"strings"
)

// Result holds the outcome of validating an entity or a create input.
type Result struct {
	Errors []string
}

// Valid reports whether no violations were recorded.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Add records a violation for a field.
func (r *Result) Add(field, message string) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", field, message))
}

// Addf records a violation with a formatted message.
func (r *Result) Addf(field, format string, args ...any) {
	r.Add(field, fmt.Sprintf(format, args...))
}

// Merge appends all violations from other.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
}

// String joins all violations for logging.
func (r Result) String() string {
	return strings.Join(r.Errors, "; ")
}

// RequireNonEmpty records a violation when the trimmed value is empty.
func (r *Result) RequireNonEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		r.Add(field, "must not be empty")
	}
}

// RequireMaxLen records a violation when the value exceeds max characters.
func (r *Result) RequireMaxLen(field, value string, max int) {
	if len(value) > max {
		r.Addf(field, "must be at most %d characters", max)
	}
}

// RequireRange records a violation when n is outside [min, max].
func (r *Result) RequireRange(field string, n, min, max int) {
	if n < min || n > max {
		r.Addf(field, "must be between %d and %d", min, max)
	}
}

// RequireNonEmptyStrings records a violation for each blank element.
func (r *Result) RequireNonEmptyStrings(field string, values []string) {
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			r.Addf(field, "element %d must be a non-empty string", i)
		}
	}
}
