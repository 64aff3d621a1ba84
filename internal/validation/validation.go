// Package validation collects field violations keyed by field name.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Violations maps a field name to a violation code ("required", ...).
// A non-empty Violations value is usable as an error.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error lists violations in field order, e.g. "nin: required; number: invalid_format".
func (v Violations) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return strings.Join(parts, "; ")
}

// Err returns v as an error, or nil when there is nothing to report.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// Required flags blank values.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// MaxLen flags values longer than n characters.
func MaxLen(field, value string, n int, v Violations) {
	if utf8.RuneCountInString(value) > n {
		v[field] = "too_long"
	}
}

// Pattern flags non-empty values that do not match re.
func Pattern(field, value string, re *regexp.Regexp, v Violations) {
	if value != "" && !re.MatchString(value) {
		v[field] = "invalid_format"
	}
}
