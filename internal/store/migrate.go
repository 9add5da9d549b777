package store

import (
	"context"
	"fmt"
)

// Administrative bulk operations. These back the /api/admin routes and the
// periodic orphan sweep; they never run as part of a visitor registration.

// MigrateCoachToEnrollments backfills custom_job_enrollments from the legacy
// duplicate rows under one coach: every (visitor, source program) pair gets
// an enrollment row pointing at the coach's original program. Duplicate rows
// are left in place — visitors keep their copies until the legacy path is
// retired. Returns the number of enrollment rows created (pairs already
// migrated conflict away to zero).
func (s *Postgres) MigrateCoachToEnrollments(ctx context.Context, coachID string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO custom_job_enrollments (user_id, coach_id, custom_job_id)
		 SELECT cj.user_id, cj.coach_id, cj.source_custom_job_id
		 FROM custom_jobs cj
		 WHERE cj.coach_id = $1 AND cj.source_custom_job_id IS NOT NULL
		 ON CONFLICT (user_id, coach_id, custom_job_id) DO NOTHING`,
		coachID,
	)
	if err != nil {
		return 0, fmt.Errorf("migrate enrollments: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SweepOrphans removes rows left behind by failed compensating deletes:
// question copies whose parent program is gone, then duplicate program rows
// whose source row no longer exists and that have no questions (aborted
// half-copies). Order matters — the question sweep can expose a program as
// empty.
func (s *Postgres) SweepOrphans(ctx context.Context) (questions, programs int64, err error) {
	qtag, err := s.pool.Exec(ctx,
		`DELETE FROM custom_job_questions q
		 WHERE NOT EXISTS (
		   SELECT 1 FROM custom_jobs j WHERE j.id = q.custom_job_id
		 )`,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("sweep questions: %w", err)
	}

	ptag, err := s.pool.Exec(ctx,
		`DELETE FROM custom_jobs j
		 WHERE j.source_custom_job_id IS NOT NULL
		   AND NOT EXISTS (
		     SELECT 1 FROM custom_jobs src WHERE src.id = j.source_custom_job_id
		   )
		   AND NOT EXISTS (
		     SELECT 1 FROM custom_job_questions q WHERE q.custom_job_id = j.id
		   )`,
	)
	if err != nil {
		return qtag.RowsAffected(), 0, fmt.Errorf("sweep programs: %w", err)
	}

	return qtag.RowsAffected(), ptag.RowsAffected(), nil
}
