package enrollment

import (
	"context"
	"fmt"

	"jobmate/coach-service/internal/model"
)

// ─── Datastore ports ─────────────────────────────────────────────────────────

// Store is the datastore boundary the registration workflow depends on.
// The production implementation lives in internal/store (PostgreSQL);
// tests substitute an in-memory fake.
type Store interface {
	// CoachByID returns the coach row or ErrCoachNotFound.
	CoachByID(ctx context.Context, id string) (*model.Coach, error)

	// GrantAccess upserts the user_coach_access row. created reports whether
	// this call inserted the row (false when the grant already existed) —
	// rollback only ever revokes grants it created.
	GrantAccess(ctx context.Context, userID, coachID string) (created bool, err error)

	// RevokeAccess deletes the grant row. Idempotent: revoking a missing
	// grant is not an error.
	RevokeAccess(ctx context.Context, userID, coachID string) error

	// CoachCatalog returns the coach's authored programs with questions
	// nested, ordered by creation time. Scoped to coach_id = coachID AND
	// user_id = coachUserID so visitor-owned duplicates under the same coach
	// are never returned.
	CoachCatalog(ctx context.Context, coachID, coachUserID string) ([]model.Program, error)

	// InTx runs fn inside a single datastore transaction. If fn returns an
	// error, nothing fn wrote persists.
	InTx(ctx context.Context, fn func(Tx) error) error

	// EnsureEnrollment upserts a custom_job_enrollments row (direct mode).
	// created reports whether this call inserted the row — rollback only
	// ever removes enrollments it created.
	EnsureEnrollment(ctx context.Context, userID, coachID, programID string) (created bool, err error)

	// RemoveEnrollment deletes the enrollment row. Idempotent: removing a
	// missing row is not an error.
	RemoveEnrollment(ctx context.Context, userID, coachID, programID string) error

	// DeletePrograms and DeleteQuestions remove rows by id. Idempotent:
	// missing ids are skipped.
	DeletePrograms(ctx context.Context, ids []string) error
	DeleteQuestions(ctx context.Context, ids []string) error

	// DisplayName returns the user's profile display name, or "" when the
	// profile is missing or the name is unset (the user needs onboarding).
	DisplayName(ctx context.Context, userID string) (string, error)

	// HasAccess reports whether a user_coach_access grant exists.
	HasAccess(ctx context.Context, userID, coachID string) (bool, error)

	// DuplicateProgramIDs returns ids of the visitor's duplicate rows under
	// the coach (legacy mode), ordered by creation time.
	DuplicateProgramIDs(ctx context.Context, userID, coachID string) ([]string, error)

	// EnrolledProgramIDs returns program ids the visitor is directly
	// enrolled in under the coach.
	EnrolledProgramIDs(ctx context.Context, userID, coachID string) ([]string, error)
}

// Tx is the transactional slice of the store used by the duplication engine.
type Tx interface {
	// EnsureProgramCopy inserts the duplicate program row, relying on the
	// (user_id, source_custom_job_id) unique index for idempotency: on
	// conflict the existing copy's id is returned with inserted = false.
	EnsureProgramCopy(ctx context.Context, copy model.Program) (id string, inserted bool, err error)

	// EnsureQuestionCopy is the per-question analogue, keyed on
	// (custom_job_id, source_custom_job_question_id).
	EnsureQuestionCopy(ctx context.Context, copy model.Question) (id string, inserted bool, err error)
}

// ModeResolver resolves the enrollment-mode feature flag for a user.
// Implementations fall back to a configured default on lookup failure, so
// resolution never blocks a registration.
type ModeResolver interface {
	Mode(ctx context.Context, userID string) Mode
}

// EventPublisher is the outbound event port (Redis pub/sub in production).
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrCoachNotFound is returned when no coach row exists for the given id.
var ErrCoachNotFound = fmt.Errorf("coach not found")

// ErrUnauthenticated is returned when the request carries no user identity.
// It short-circuits the workflow before any write.
var ErrUnauthenticated = fmt.Errorf("no authenticated user")

// ErrNoCurriculum is returned when the coach has zero authored programs.
var ErrNoCurriculum = fmt.Errorf("coach has no published programs")
