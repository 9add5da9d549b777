package enrollment_test

// In-memory fake of the enrollment.Store port. InTx mimics the datastore's
// transactional guarantee by snapshotting state before fn runs and restoring
// it when fn errors, so the all-or-nothing duplication behavior is observable
// without a database.

import (
	"context"
	"fmt"
	"sort"

	"jobmate/coach-service/internal/enrollment"
	"jobmate/coach-service/internal/model"
)

type catalogCall struct {
	coachID     string
	coachUserID string
}

type fakeStore struct {
	coaches     map[string]model.Coach
	programs    map[string]model.Program  // questions tracked separately
	questions   map[string]model.Question
	access      map[string]bool // userID|coachID
	enrollments map[string]bool // userID|coachID|programID
	profiles    map[string]string

	// failQuestionInsertAt makes the Nth question insert of the run fail
	// (1-based; 0 disables).
	failQuestionInsertAt int
	questionInserts      int

	catalogCalls []catalogCall
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		coaches:     make(map[string]model.Coach),
		programs:    make(map[string]model.Program),
		questions:   make(map[string]model.Question),
		access:      make(map[string]bool),
		enrollments: make(map[string]bool),
		profiles:    make(map[string]string),
	}
}

func accessKey(userID, coachID string) string { return userID + "|" + coachID }

func (f *fakeStore) CoachByID(_ context.Context, id string) (*model.Coach, error) {
	c, ok := f.coaches[id]
	if !ok {
		return nil, enrollment.ErrCoachNotFound
	}
	return &c, nil
}

func (f *fakeStore) GrantAccess(_ context.Context, userID, coachID string) (bool, error) {
	key := accessKey(userID, coachID)
	if f.access[key] {
		return false, nil
	}
	f.access[key] = true
	return true, nil
}

func (f *fakeStore) RevokeAccess(_ context.Context, userID, coachID string) error {
	delete(f.access, accessKey(userID, coachID))
	return nil
}

func (f *fakeStore) HasAccess(_ context.Context, userID, coachID string) (bool, error) {
	return f.access[accessKey(userID, coachID)], nil
}

func (f *fakeStore) CoachCatalog(_ context.Context, coachID, coachUserID string) ([]model.Program, error) {
	f.catalogCalls = append(f.catalogCalls, catalogCall{coachID, coachUserID})

	var programs []model.Program
	for _, p := range f.programs {
		if p.CoachID != nil && *p.CoachID == coachID && p.UserID == coachUserID {
			p.Questions = f.questionsOf(p.ID)
			programs = append(programs, p)
		}
	}
	sortPrograms(programs)
	return programs, nil
}

func (f *fakeStore) questionsOf(programID string) []model.Question {
	var qs []model.Question
	for _, q := range f.questions {
		if q.ProgramID == programID {
			qs = append(qs, q)
		}
	}
	sort.Slice(qs, func(i, j int) bool {
		if qs[i].CreatedAt.Equal(qs[j].CreatedAt) {
			return qs[i].ID < qs[j].ID
		}
		return qs[i].CreatedAt.Before(qs[j].CreatedAt)
	})
	return qs
}

func sortPrograms(programs []model.Program) {
	sort.Slice(programs, func(i, j int) bool {
		if programs[i].CreatedAt.Equal(programs[j].CreatedAt) {
			return programs[i].ID < programs[j].ID
		}
		return programs[i].CreatedAt.Before(programs[j].CreatedAt)
	})
}

func (f *fakeStore) InTx(_ context.Context, fn func(enrollment.Tx) error) error {
	programSnap := make(map[string]model.Program, len(f.programs))
	for k, v := range f.programs {
		programSnap[k] = v
	}
	questionSnap := make(map[string]model.Question, len(f.questions))
	for k, v := range f.questions {
		questionSnap[k] = v
	}

	if err := fn(&fakeTx{store: f}); err != nil {
		f.programs = programSnap
		f.questions = questionSnap
		return err
	}
	return nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) EnsureProgramCopy(_ context.Context, copy model.Program) (string, bool, error) {
	for _, p := range t.store.programs {
		if p.UserID == copy.UserID && p.SourceProgramID != nil &&
			copy.SourceProgramID != nil && *p.SourceProgramID == *copy.SourceProgramID {
			return p.ID, false, nil
		}
	}
	t.store.programs[copy.ID] = copy
	return copy.ID, true, nil
}

func (t *fakeTx) EnsureQuestionCopy(_ context.Context, copy model.Question) (string, bool, error) {
	for _, q := range t.store.questions {
		if q.ProgramID == copy.ProgramID && q.SourceQuestionID != nil &&
			copy.SourceQuestionID != nil && *q.SourceQuestionID == *copy.SourceQuestionID {
			return q.ID, false, nil
		}
	}
	t.store.questionInserts++
	if t.store.failQuestionInsertAt > 0 && t.store.questionInserts == t.store.failQuestionInsertAt {
		return "", false, fmt.Errorf("simulated insert failure")
	}
	t.store.questions[copy.ID] = copy
	return copy.ID, true, nil
}

func (f *fakeStore) EnsureEnrollment(_ context.Context, userID, coachID, programID string) (bool, error) {
	key := userID + "|" + coachID + "|" + programID
	if f.enrollments[key] {
		return false, nil
	}
	f.enrollments[key] = true
	return true, nil
}

func (f *fakeStore) RemoveEnrollment(_ context.Context, userID, coachID, programID string) error {
	delete(f.enrollments, userID+"|"+coachID+"|"+programID)
	return nil
}

func (f *fakeStore) DeletePrograms(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.programs, id)
	}
	return nil
}

func (f *fakeStore) DeleteQuestions(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(f.questions, id)
	}
	return nil
}

func (f *fakeStore) DisplayName(_ context.Context, userID string) (string, error) {
	return f.profiles[userID], nil
}

func (f *fakeStore) DuplicateProgramIDs(_ context.Context, userID, coachID string) ([]string, error) {
	var copies []model.Program
	for _, p := range f.programs {
		if p.UserID == userID && p.CoachID != nil && *p.CoachID == coachID && p.SourceProgramID != nil {
			copies = append(copies, p)
		}
	}
	sortPrograms(copies)
	ids := make([]string, 0, len(copies))
	for _, p := range copies {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (f *fakeStore) EnrolledProgramIDs(_ context.Context, userID, coachID string) ([]string, error) {
	prefix := userID + "|" + coachID + "|"
	var ids []string
	for key, ok := range f.enrollments {
		if ok && len(key) > len(prefix) && key[:len(prefix)] == prefix {
			ids = append(ids, key[len(prefix):])
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ── Assertion helpers ──────────────────────────────────────────────────────

// copiesOwnedBy returns the visitor's duplicate program rows, catalog order.
func (f *fakeStore) copiesOwnedBy(userID string) []model.Program {
	var copies []model.Program
	for _, p := range f.programs {
		if p.UserID == userID && p.SourceProgramID != nil {
			copies = append(copies, p)
		}
	}
	sortPrograms(copies)
	return copies
}

// questionCopiesUnder returns question copies for a duplicated program.
func (f *fakeStore) questionCopiesUnder(programID string) []model.Question {
	var qs []model.Question
	for _, q := range f.questions {
		if q.ProgramID == programID && q.SourceQuestionID != nil {
			qs = append(qs, q)
		}
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs
}

// profileErrStore fails every profile read; everything else delegates to the
// embedded fake. Used to exercise failures that hit after the mode branch
// has already written.
type profileErrStore struct {
	*fakeStore
}

func (s *profileErrStore) DisplayName(context.Context, string) (string, error) {
	return "", fmt.Errorf("simulated profile read failure")
}

// ── Collaborator stubs ─────────────────────────────────────────────────────

type modeStub struct {
	mode enrollment.Mode
}

func (m modeStub) Mode(context.Context, string) enrollment.Mode { return m.mode }

type publisherStub struct {
	channels []string
}

func (p *publisherStub) Publish(_ context.Context, channel string, _ []byte) error {
	p.channels = append(p.channels, channel)
	return nil
}
