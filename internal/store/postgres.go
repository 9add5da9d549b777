// Package store implements the enrollment datastore on PostgreSQL.
//
// Tables: coaches, custom_jobs, custom_job_questions, user_coach_access,
// custom_job_enrollments, profiles. Row-level security is enforced by the
// database platform; queries here still always filter by owner ids.
//
// Duplicate idempotency is carried by two unique indexes:
//
//	custom_jobs      (user_id, source_custom_job_id)
//	custom_job_questions (custom_job_id, source_custom_job_question_id)
//
// so a conflicting insert is the "copy already exists" signal rather than a
// racy pre-check.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/coach-service/internal/enrollment"
	"jobmate/coach-service/internal/model"
)

// Postgres implements enrollment.Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// ─── Coaches ─────────────────────────────────────────────────────────────────

// CoachByID returns the coach row or enrollment.ErrCoachNotFound.
func (s *Postgres) CoachByID(ctx context.Context, id string) (*model.Coach, error) {
	var c model.Coach
	err := s.pool.QueryRow(ctx,
		`SELECT id, slug, user_id, name FROM coaches WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Slug, &c.UserID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, enrollment.ErrCoachNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("coach lookup: %w", err)
	}
	return &c, nil
}

// ─── Access grants ───────────────────────────────────────────────────────────

// GrantAccess upserts the access grant. created is false when the grant
// already existed (the conflict is swallowed by DO NOTHING).
func (s *Postgres) GrantAccess(ctx context.Context, userID, coachID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO user_coach_access (user_id, coach_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, coach_id) DO NOTHING`,
		userID, coachID,
	)
	if err != nil {
		return false, fmt.Errorf("grant access: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RevokeAccess deletes the grant row. Deleting a missing row is a no-op.
func (s *Postgres) RevokeAccess(ctx context.Context, userID, coachID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM user_coach_access WHERE user_id = $1 AND coach_id = $2`,
		userID, coachID,
	)
	if err != nil {
		return fmt.Errorf("revoke access: %w", err)
	}
	return nil
}

// HasAccess reports whether the grant row exists.
func (s *Postgres) HasAccess(ctx context.Context, userID, coachID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM user_coach_access WHERE user_id = $1 AND coach_id = $2
		 )`,
		userID, coachID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("access lookup: %w", err)
	}
	return exists, nil
}

// ─── Catalog reads ───────────────────────────────────────────────────────────

// CoachCatalog loads the coach's authored programs with questions nested.
// The user_id filter matters: visitor duplicates under the same coach carry
// coach_id too, and must never be returned here.
func (s *Postgres) CoachCatalog(ctx context.Context, coachID, coachUserID string) ([]model.Program, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, coach_id, user_id, job_title, job_description,
		        company_name, company_description, status,
		        source_custom_job_id, created_at
		 FROM custom_jobs
		 WHERE coach_id = $1 AND user_id = $2
		 ORDER BY created_at ASC`,
		coachID, coachUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog query: %w", err)
	}
	defer rows.Close()

	var programs []model.Program
	index := make(map[string]int)
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(
			&p.ID, &p.CoachID, &p.UserID, &p.JobTitle, &p.JobDescription,
			&p.CompanyName, &p.CompanyDescription, &p.Status,
			&p.SourceProgramID, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("catalog scan: %w", err)
		}
		index[p.ID] = len(programs)
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog rows: %w", err)
	}
	if len(programs) == 0 {
		return programs, nil
	}

	ids := make([]string, 0, len(programs))
	for _, p := range programs {
		ids = append(ids, p.ID)
	}

	qrows, err := s.pool.Query(ctx,
		`SELECT id, custom_job_id, question, answer_guidelines,
		        source_custom_job_question_id, created_at
		 FROM custom_job_questions
		 WHERE custom_job_id = ANY($1)
		 ORDER BY created_at ASC`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("questions query: %w", err)
	}
	defer qrows.Close()

	for qrows.Next() {
		var q model.Question
		if err := qrows.Scan(
			&q.ID, &q.ProgramID, &q.Question, &q.AnswerGuidelines,
			&q.SourceQuestionID, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("questions scan: %w", err)
		}
		if i, ok := index[q.ProgramID]; ok {
			programs[i].Questions = append(programs[i].Questions, q)
		}
	}
	return programs, qrows.Err()
}

// DuplicateProgramIDs returns the visitor's duplicate rows under the coach.
func (s *Postgres) DuplicateProgramIDs(ctx context.Context, userID, coachID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM custom_jobs
		 WHERE user_id = $1 AND coach_id = $2 AND source_custom_job_id IS NOT NULL
		 ORDER BY created_at ASC`,
		userID, coachID,
	)
	if err != nil {
		return nil, fmt.Errorf("duplicates query: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// EnrolledProgramIDs returns program ids the visitor is directly enrolled in.
func (s *Postgres) EnrolledProgramIDs(ctx context.Context, userID, coachID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT custom_job_id FROM custom_job_enrollments
		 WHERE user_id = $1 AND coach_id = $2
		 ORDER BY created_at ASC`,
		userID, coachID,
	)
	if err != nil {
		return nil, fmt.Errorf("enrollments query: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("id scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ─── Duplication transaction ─────────────────────────────────────────────────

// InTx runs fn inside one transaction. If fn errors, nothing it wrote persists.
func (s *Postgres) InTx(ctx context.Context, fn func(enrollment.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// pgTx implements enrollment.Tx on an open pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

// EnsureProgramCopy inserts the duplicate program row. On a
// (user_id, source_custom_job_id) conflict the insert returns no row and the
// existing copy's id is selected instead.
func (t *pgTx) EnsureProgramCopy(ctx context.Context, p model.Program) (string, bool, error) {
	var id string
	err := t.tx.QueryRow(ctx,
		`INSERT INTO custom_jobs
		   (id, coach_id, user_id, job_title, job_description,
		    company_name, company_description, status,
		    source_custom_job_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (user_id, source_custom_job_id) DO NOTHING
		 RETURNING id`,
		p.ID, p.CoachID, p.UserID, p.JobTitle, p.JobDescription,
		p.CompanyName, p.CompanyDescription, p.Status,
		p.SourceProgramID, p.CreatedAt,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("insert program copy: %w", err)
	}

	// Conflict: a copy from an earlier registration exists — reuse it.
	err = t.tx.QueryRow(ctx,
		`SELECT id FROM custom_jobs
		 WHERE user_id = $1 AND source_custom_job_id = $2`,
		p.UserID, p.SourceProgramID,
	).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("existing program copy lookup: %w", err)
	}
	return id, false, nil
}

// EnsureQuestionCopy is the per-question analogue of EnsureProgramCopy.
func (t *pgTx) EnsureQuestionCopy(ctx context.Context, q model.Question) (string, bool, error) {
	var id string
	err := t.tx.QueryRow(ctx,
		`INSERT INTO custom_job_questions
		   (id, custom_job_id, question, answer_guidelines,
		    source_custom_job_question_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (custom_job_id, source_custom_job_question_id) DO NOTHING
		 RETURNING id`,
		q.ID, q.ProgramID, q.Question, q.AnswerGuidelines,
		q.SourceQuestionID, q.CreatedAt,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("insert question copy: %w", err)
	}

	err = t.tx.QueryRow(ctx,
		`SELECT id FROM custom_job_questions
		 WHERE custom_job_id = $1 AND source_custom_job_question_id = $2`,
		q.ProgramID, q.SourceQuestionID,
	).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("existing question copy lookup: %w", err)
	}
	return id, false, nil
}

// ─── Direct enrollment ───────────────────────────────────────────────────────

// EnsureEnrollment upserts the custom_job_enrollments row.
func (s *Postgres) EnsureEnrollment(ctx context.Context, userID, coachID, programID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO custom_job_enrollments (user_id, coach_id, custom_job_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, coach_id, custom_job_id) DO NOTHING`,
		userID, coachID, programID,
	)
	if err != nil {
		return false, fmt.Errorf("ensure enrollment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveEnrollment deletes the enrollment row. Deleting a missing row is a
// no-op.
func (s *Postgres) RemoveEnrollment(ctx context.Context, userID, coachID, programID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM custom_job_enrollments
		 WHERE user_id = $1 AND coach_id = $2 AND custom_job_id = $3`,
		userID, coachID, programID,
	)
	if err != nil {
		return fmt.Errorf("remove enrollment: %w", err)
	}
	return nil
}

// ─── Compensating deletes ────────────────────────────────────────────────────

// DeletePrograms removes program rows by id. Missing ids are skipped.
func (s *Postgres) DeletePrograms(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM custom_jobs WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete programs: %w", err)
	}
	return nil
}

// DeleteQuestions removes question rows by id. Missing ids are skipped.
func (s *Postgres) DeleteQuestions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`DELETE FROM custom_job_questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}

// ─── Profiles ────────────────────────────────────────────────────────────────

// DisplayName returns the user's display name, or "" when the profile row is
// missing or the name is unset — either way the user needs onboarding.
func (s *Postgres) DisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(display_name, '') FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("profile lookup: %w", err)
	}
	return name, nil
}
