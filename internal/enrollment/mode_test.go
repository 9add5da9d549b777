package enrollment_test

import (
	"testing"

	"jobmate/coach-service/internal/enrollment"
)

// ── ParseMode ──────────────────────────────────────────────────────────────

func TestParseMode_ValidValues(t *testing.T) {
	valid := []string{"LEGACY_DUPLICATION", "DIRECT_ENROLLMENT"}
	for _, s := range valid {
		got, err := enrollment.ParseMode(s)
		if err != nil {
			t.Errorf("ParseMode(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseMode(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseMode_InvalidValue(t *testing.T) {
	_, err := enrollment.ParseMode("HYBRID")
	if err == nil {
		t.Error("ParseMode(\"HYBRID\") expected error, got nil")
	}
}

func TestParseMode_EmptyString(t *testing.T) {
	_, err := enrollment.ParseMode("")
	if err == nil {
		t.Error("ParseMode(\"\") expected error, got nil")
	}
}

// ParseMode must be case-sensitive — lowercase variants must not be valid.
func TestParseMode_CaseSensitive(t *testing.T) {
	lowercase := []string{"legacy_duplication", "direct_enrollment"}
	for _, s := range lowercase {
		_, err := enrollment.ParseMode(s)
		if err == nil {
			t.Errorf("ParseMode(%q) should reject lowercase value, got nil error", s)
		}
	}
}

// ── IsDirect ───────────────────────────────────────────────────────────────

func TestIsDirect(t *testing.T) {
	if !enrollment.IsDirect(enrollment.ModeDirectEnrollment) {
		t.Error("IsDirect(DIRECT_ENROLLMENT) should return true")
	}
	if enrollment.IsDirect(enrollment.ModeLegacyDuplication) {
		t.Error("IsDirect(LEGACY_DUPLICATION) should return false")
	}
}
