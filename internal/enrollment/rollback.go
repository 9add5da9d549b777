package enrollment

import "context"

// rollback undoes the writes a failed registration left behind, in reverse
// dependency order: question copies first (they reference programs), then
// program copies, then the enrollment row, then the access grant. The
// enrollment row and the grant are undone only when this request created
// them — rows from an earlier visit are kept.
//
// Deletes are idempotent and best-effort. A failed delete is logged, never
// swallowed: the periodic orphan sweep picks up whatever is left.
func (s *Service) rollback(ctx context.Context, userID, coachID string, grantCreated bool, enrolledProgramID string, res *duplicationResult) {
	if res != nil {
		if len(res.insertedQuestionIDs) > 0 {
			if err := s.store.DeleteQuestions(ctx, res.insertedQuestionIDs); err != nil {
				s.log.Error("rollback: delete question copies failed",
					"coachId", coachID, "userId", userID,
					"count", len(res.insertedQuestionIDs), "err", err)
			}
		}
		if len(res.insertedProgramIDs) > 0 {
			if err := s.store.DeletePrograms(ctx, res.insertedProgramIDs); err != nil {
				s.log.Error("rollback: delete program copies failed",
					"coachId", coachID, "userId", userID,
					"count", len(res.insertedProgramIDs), "err", err)
			}
		}
	}

	if enrolledProgramID != "" {
		if err := s.store.RemoveEnrollment(ctx, userID, coachID, enrolledProgramID); err != nil {
			s.log.Error("rollback: remove enrollment failed",
				"coachId", coachID, "userId", userID,
				"programId", enrolledProgramID, "err", err)
		}
	}

	if grantCreated {
		if err := s.store.RevokeAccess(ctx, userID, coachID); err != nil {
			s.log.Error("rollback: revoke access failed",
				"coachId", coachID, "userId", userID, "err", err)
		}
	}
}
