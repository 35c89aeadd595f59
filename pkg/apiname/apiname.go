// Package apiname derives and validates the machine-readable identifiers used
// by object and field definitions.
package apiname

import (
	"regexp"
	"strings"

	"github.com/doulacrm/backend/pkg/constants"
	"github.com/doulacrm/backend/pkg/errors"
)

var (
	validName    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)
)

// Generate derives a machine name from a human label: lower-case, collapse
// runs of non-alphanumerics to a single underscore, trim leading and trailing
// underscores. Returns "" when the label contains no alphanumeric characters.
func Generate(label string) string {
	name := strings.ToLower(label)
	name = nonAlnumRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	// A leading digit cannot start an identifier
	name = strings.TrimLeft(name, "0123456789_")
	return name
}

// Validate checks an api name against the identifier pattern. The returned
// error names the violated rule; callers are expected to re-prompt rather
// than auto-correct.
func Validate(name string) error {
	if name == "" {
		return errors.NewValidationError("api_name", "api name is required")
	}
	if !validName.MatchString(name) {
		return errors.NewValidationError("api_name", "api name must start with a letter and contain only letters, digits and underscores")
	}
	return nil
}

// WithCustomSuffix appends the conventional custom-entity suffix unless the
// name already carries it.
func WithCustomSuffix(name string) string {
	if name == "" || strings.HasSuffix(name, constants.CustomSuffix) {
		return name
	}
	return name + constants.CustomSuffix
}

// StripCustomSuffix removes the custom-entity suffix if present
func StripCustomSuffix(name string) string {
	return strings.TrimSuffix(name, constants.CustomSuffix)
}

// Pluralize derives a plural display label from a singular one.
// "Birth Plan" becomes "Birth Plans", "Emergency Box" becomes
// "Emergency Boxes", "Delivery" becomes "Deliveries".
func Pluralize(label string) string {
	trimmed := strings.TrimRight(label, " ")
	if trimmed == "" {
		return label
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasSuffix(lower, "s"),
		strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"),
		strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return trimmed + "es"
	case strings.HasSuffix(lower, "y") && len(trimmed) > 1 && !isVowel(lower[len(lower)-2]):
		return trimmed[:len(trimmed)-1] + "ies"
	default:
		return trimmed + "s"
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
