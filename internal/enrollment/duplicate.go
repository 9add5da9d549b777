package enrollment

import (
	"context"
	"fmt"
	"time"

	"jobmate/coach-service/internal/model"
)

// duplicationResult records what the engine created during one registration.
// The inserted id lists are consumed only by rollback bookkeeping; reused
// (pre-existing) copies are never listed.
type duplicationResult struct {
	landingProgramID    string
	insertedProgramIDs  []string
	insertedQuestionIDs []string
}

// duplicateCatalog ensures the visitor owns a copy of every coach program and
// of every question under each program. The whole loop runs in a single
// datastore transaction: any insert error aborts it and nothing persists.
//
// Idempotency is enforced by the unique indexes on
// (user_id, source_custom_job_id) and
// (custom_job_id, source_custom_job_question_id) — a conflict means a copy
// from an earlier registration exists and its id is reused.
func (s *Service) duplicateCatalog(ctx context.Context, visitorID string, coach *model.Coach, programs []model.Program) (*duplicationResult, error) {
	res := &duplicationResult{}

	err := s.store.InTx(ctx, func(tx Tx) error {
		for _, p := range programs {
			copyID, inserted, err := tx.EnsureProgramCopy(ctx, programCopy(p, coach.ID, visitorID, s.newID()))
			if err != nil {
				return fmt.Errorf("program %s: %w", p.ID, err)
			}
			if inserted {
				res.insertedProgramIDs = append(res.insertedProgramIDs, copyID)
			}
			// Landing target is the last program processed. With multiple
			// programs this is just whatever sorts last in catalog order,
			// not anything the visitor chose.
			res.landingProgramID = copyID

			for _, q := range p.Questions {
				qID, qInserted, err := tx.EnsureQuestionCopy(ctx, questionCopy(q, copyID, s.newID()))
				if err != nil {
					return fmt.Errorf("question %s: %w", q.ID, err)
				}
				if qInserted {
					res.insertedQuestionIDs = append(res.insertedQuestionIDs, qID)
				}
			}
		}
		return nil
	})
	if err != nil {
		// res still carries the tracked ids: the transaction discarded the
		// rows, but rollback's deletes are idempotent so replaying them is
		// harmless and covers a failed commit.
		return res, err
	}
	return res, nil
}

// programCopy builds the visitor-owned duplicate of a coach program. All
// scalar fields carry over; ownership and lineage fields are rewritten. The
// id is generated client-side so it is known for rollback tracking before
// the insert happens.
func programCopy(src model.Program, coachID, visitorID, newID string) model.Program {
	sourceID := src.ID
	return model.Program{
		ID:                 newID,
		CoachID:            &coachID,
		UserID:             visitorID,
		JobTitle:           src.JobTitle,
		JobDescription:     src.JobDescription,
		CompanyName:        src.CompanyName,
		CompanyDescription: src.CompanyDescription,
		Status:             src.Status,
		SourceProgramID:    &sourceID,
		CreatedAt:          time.Now().UTC(),
	}
}

// questionCopy builds the duplicate of a coach question under the visitor's
// duplicated program.
func questionCopy(src model.Question, programCopyID, newID string) model.Question {
	sourceID := src.ID
	return model.Question{
		ID:               newID,
		ProgramID:        programCopyID,
		Question:         src.Question,
		AnswerGuidelines: src.AnswerGuidelines,
		SourceQuestionID: &sourceID,
		CreatedAt:        time.Now().UTC(),
	}
}
