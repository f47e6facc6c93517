// Package security provides validation, sanitization, and limits for
// job records.
package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/propdocs/jobtrack/pkg/core"
)

// Limits applied before anything reaches the store or the pool.
const (
	// MaxJobTypeLength is the maximum length for job type names. Matches
	// the width of the job_type column.
	MaxJobTypeLength = 50

	// MaxErrorMessageLength is the maximum length for stored error messages.
	MaxErrorMessageLength = 4096

	// MaxWorkers is the hard limit for execution pool size.
	MaxWorkers = 1000
)

// validJobType matches alphanumeric, hyphens, underscores, and dots.
var validJobType = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-\.]*$`)

// ValidateJobType validates a job type name.
func ValidateJobType(name string) error {
	if name == "" {
		return core.ErrInvalidJobType
	}
	if len(name) > MaxJobTypeLength {
		return core.ErrJobTypeTooLong
	}
	if !validJobType.MatchString(name) {
		return core.ErrInvalidJobType
	}
	return nil
}

// SanitizeErrorMessage strips control characters and truncates error
// messages before storage.
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	if utf8.RuneCountInString(result) > MaxErrorMessageLength {
		runes := []rune(result)
		result = string(runes[:MaxErrorMessageLength-3]) + "..."
	}

	return result
}

// ClampWorkers ensures pool size is within limits.
func ClampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}
