// Package enrollment implements the coach registration workflow: access
// grants, the enrollment-mode branch, catalog duplication (legacy mode),
// direct enrollment (new mode) and the compensating rollback that keeps a
// failed registration from leaving partial writes behind.
package enrollment

import "fmt"

// Mode selects how a visitor is attached to a coach's catalog. It is resolved
// once per registration from the feature-flag service and passed down
// explicitly — the two paths are mutually exclusive.
type Mode string

const (
	// ModeLegacyDuplication deep-copies the coach's program and question rows
	// into visitor-owned rows.
	ModeLegacyDuplication Mode = "LEGACY_DUPLICATION"

	// ModeDirectEnrollment links the visitor to a coach program via a join
	// row, without copying content.
	ModeDirectEnrollment Mode = "DIRECT_ENROLLMENT"
)

// ParseMode converts a raw string to a Mode, returning an error for unknown
// values.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	switch m {
	case ModeLegacyDuplication, ModeDirectEnrollment:
		return m, nil
	}
	return "", fmt.Errorf("unknown enrollment mode %q", s)
}

// IsDirect returns true when mode is DIRECT_ENROLLMENT (skips the
// duplication engine entirely).
func IsDirect(m Mode) bool { return m == ModeDirectEnrollment }
