package enrollment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the registration workflow business logic.
// It has no dependency on net/http — it can be used by any transport layer.
type Service struct {
	store  Store
	modes  ModeResolver
	events EventPublisher
	log    *slog.Logger
	newID  func() string
}

// NewService returns a configured Service. events may be nil (no event
// publication, used by the admin paths and tests).
func NewService(store Store, modes ModeResolver, events EventPublisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:  store,
		modes:  modes,
		events: events,
		log:    log,
		newID:  uuid.NewString,
	}
}

// ─── Registration ────────────────────────────────────────────────────────────

// Register runs the full registration workflow for one visitor and returns
// the URL the caller must redirect to: the landing program page, or the
// onboarding page with the program URL embedded as the return parameter.
//
// On any failure it undoes the writes made during this call (questions first,
// then programs, then the access grant — reverse dependency order) before
// returning the error; the transport layer only has to log and redirect to
// the error page.
func (s *Service) Register(ctx context.Context, coachID, userID string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}

	coach, err := s.store.CoachByID(ctx, coachID)
	if err != nil {
		return "", err
	}

	// First write: catalog visibility. Everything after this point must
	// clean up behind itself via rollback.
	granted, err := s.store.GrantAccess(ctx, userID, coach.ID)
	if err != nil {
		return "", fmt.Errorf("grant access: %w", err)
	}

	// Resolved once, passed down explicitly. The two paths are mutually
	// exclusive: legacy never writes enrollment rows, direct never copies.
	mode := s.modes.Mode(ctx, userID)

	programs, err := s.store.CoachCatalog(ctx, coach.ID, coach.UserID)
	if err != nil {
		s.rollback(ctx, userID, coach.ID, granted, "", nil)
		return "", fmt.Errorf("load catalog: %w", err)
	}
	if len(programs) == 0 {
		s.rollback(ctx, userID, coach.ID, granted, "", nil)
		return "", ErrNoCurriculum
	}

	// Everything written past the branch is tracked so a later failure can
	// still undo the whole registration: res carries the fresh copy ids,
	// enrolledProgramID a fresh enrollment row (empty when it pre-existed).
	var (
		landing           string
		res               *duplicationResult
		enrolledProgramID string
	)
	if IsDirect(mode) {
		// The landing program mirrors the legacy engine's choice: the last
		// program in catalog order.
		landing = programs[len(programs)-1].ID
		created, err := s.store.EnsureEnrollment(ctx, userID, coach.ID, landing)
		if err != nil {
			s.rollback(ctx, userID, coach.ID, granted, "", nil)
			return "", fmt.Errorf("ensure enrollment: %w", err)
		}
		if created {
			enrolledProgramID = landing
		}
	} else {
		var err error
		res, err = s.duplicateCatalog(ctx, userID, coach, programs)
		if err != nil {
			s.rollback(ctx, userID, coach.ID, granted, "", res)
			return "", fmt.Errorf("duplicate catalog: %w", err)
		}
		landing = res.landingProgramID
	}

	target := programURL(coach.Slug, landing)

	name, err := s.store.DisplayName(ctx, userID)
	if err != nil {
		s.rollback(ctx, userID, coach.ID, granted, enrolledProgramID, res)
		return "", fmt.Errorf("load profile: %w", err)
	}

	s.publishEnrolled(ctx, coach.ID, userID, landing, mode)

	if name == "" {
		return onboardingURL(target), nil
	}
	return target, nil
}

// ─── Enrollment status ───────────────────────────────────────────────────────

// StatusReport is the JSON shape returned by the status endpoint, consumed by
// the coach landing page to decide whether to show the register button.
type StatusReport struct {
	HasAccess  bool     `json:"hasAccess"`
	Mode       Mode     `json:"mode"`
	ProgramIDs []string `json:"programIds"`
}

// Status reports whether the visitor already has access to the coach's
// catalog, and which programs they can land on under the current mode.
func (s *Service) Status(ctx context.Context, coachID, userID string) (*StatusReport, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	coach, err := s.store.CoachByID(ctx, coachID)
	if err != nil {
		return nil, err
	}

	mode := s.modes.Mode(ctx, userID)

	hasAccess, err := s.store.HasAccess(ctx, userID, coach.ID)
	if err != nil {
		return nil, fmt.Errorf("access lookup: %w", err)
	}

	report := &StatusReport{Mode: mode, ProgramIDs: []string{}}
	if !hasAccess {
		return report, nil
	}
	report.HasAccess = true

	var ids []string
	if IsDirect(mode) {
		ids, err = s.store.EnrolledProgramIDs(ctx, userID, coach.ID)
	} else {
		ids, err = s.store.DuplicateProgramIDs(ctx, userID, coach.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("program lookup: %w", err)
	}
	report.ProgramIDs = append(report.ProgramIDs, ids...)
	return report, nil
}

// ─── Error page target ───────────────────────────────────────────────────────

// ErrorURL computes the coach-scoped error page for a failed registration,
// falling back to the unscoped page when the coach row cannot be read.
func (s *Service) ErrorURL(ctx context.Context, coachID string) string {
	coach, err := s.store.CoachByID(ctx, coachID)
	if err != nil || coach == nil {
		return errorURL("", coachID)
	}
	return errorURL(coach.Slug, coachID)
}

// ─── Events ──────────────────────────────────────────────────────────────────

// publishEnrolled emits EVENT_COACH_ENROLLED for the Gateway SSE stream.
// Non-fatal: a publish failure never fails the registration.
func (s *Service) publishEnrolled(ctx context.Context, coachID, userID, programID string, mode Mode) {
	if s.events == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":      "EVENT_COACH_ENROLLED",
		"coachId":   coachID,
		"userId":    userID,
		"programId": programID,
		"mode":      string(mode),
	})
	if err := s.events.Publish(ctx, "EVENT_COACH_ENROLLED", event); err != nil {
		s.log.Warn("publish EVENT_COACH_ENROLLED failed", "err", err)
	}
}
