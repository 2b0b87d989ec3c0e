package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxNameLength is the longest graph name accepted by [ValidateGraphName].
const MaxNameLength = 128

// graphNameRegex matches names usable as file names, Redis keys and
// MongoDB document IDs alike.
var graphNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateGraphName validates the name under which a graph is stored.
// Names end up in file paths and database keys, so the rules are
// conservative:
//   - No empty names
//   - Maximum length of MaxNameLength characters
//   - No control characters or null bytes
//   - No path traversal sequences (..) or separators
//   - Letters, digits, dot, dash and underscore only, starting alphanumeric
func ValidateGraphName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "graph name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidName, "graph name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "graph name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "graph name contains invalid characters: %q", pattern)
		}
	}

	if !graphNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid graph name: %q", name)
	}

	return nil
}

// ValidateNodeID performs a light sanity check on a node ID received from
// outside the process. IDs are otherwise opaque.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node ID cannot be empty")
	}
	if len(id) > MaxNameLength {
		return New(ErrCodeInvalidInput, "node ID too long (max %d characters)", MaxNameLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node ID contains invalid control characters")
		}
	}
	return nil
}
