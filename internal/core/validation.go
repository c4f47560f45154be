package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ValidationErrors carries per-field validation failures keyed by the JSON
// field name.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed:")
	for i, field := range fields {
		if i > 0 {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, " %s: %s", field, e[field])
	}
	return b.String()
}

func (e ValidationErrors) add(field, message string) {
	e[field] = message
}

// orNil returns nil when no failures accumulated, so callers can return the
// result directly without a typed-nil error.
func (e ValidationErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	accountNamePattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)
	monikerPattern     = regexp.MustCompile(`^[0-9]{4}$`)
	guidPattern        = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// ValidAccountNameOwner reports whether name matches the stored account
// naming convention: lowercase letters and digits separated by single
// underscores.
func ValidAccountNameOwner(name string) bool {
	return accountNamePattern.MatchString(name)
}

// ValidGUID reports whether s is a lowercase hyphenated UUID.
func ValidGUID(s string) bool {
	return guidPattern.MatchString(s)
}

// NormalizeName lowercases and trims a free-text name into its stored form.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
