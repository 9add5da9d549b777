// Package model defines shared data structures for the coach service.
package model

import "time"

// Coach mirrors the coaches table row relevant to registration.
// Coaches are created during onboarding (handled by the Gateway) and are
// read-only here.
type Coach struct {
	ID     string
	Slug   string // unique, URL-facing
	UserID string // owns the coach's authored catalog
	Name   string
}

// Program mirrors a custom_jobs row. CoachID is nil for rows owned directly
// by an end user; non-nil means the row belongs to a coach catalog.
// SourceProgramID marks the row as a duplicate of another program (legacy
// enrollment mode only).
type Program struct {
	ID                 string
	CoachID            *string
	UserID             string
	JobTitle           string
	JobDescription     string
	CompanyName        string
	CompanyDescription string
	Status             string
	SourceProgramID    *string // source_custom_job_id
	CreatedAt          time.Time
	Questions          []Question
}

// Question mirrors a custom_job_questions row. SourceQuestionID carries the
// same duplication semantics as Program.SourceProgramID, scoped within the
// duplicated program.
type Question struct {
	ID               string
	ProgramID        string // custom_job_id
	Question         string
	AnswerGuidelines string
	SourceQuestionID *string // source_custom_job_question_id
	CreatedAt        time.Time
}
