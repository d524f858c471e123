package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the lifecycle states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
	ExamStatusArchived  ExamStatus = "ARCHIVED"
)

// Difficulty enumerates the advertised exam difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Exam represents an exam entity. Questions carry the ordered question list
// when loaded in full; listings leave it nil and set QuestionCount.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Difficulty      Difficulty `json:"difficulty"`
	AvailableFrom   *time.Time `json:"available_from,omitempty"`
	AvailableUntil  *time.Time `json:"available_until,omitempty"`
	Status          ExamStatus `json:"status"`
	Questions       []Question `json:"questions,omitempty"`
	QuestionCount   int        `json:"question_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AvailableAt reports whether the exam's availability window covers t.
// A nil bound is open-ended on that side.
func (e *Exam) AvailableAt(t time.Time) bool {
	if e.AvailableFrom != nil && t.Before(*e.AvailableFrom) {
		return false
	}
	if e.AvailableUntil != nil && t.After(*e.AvailableUntil) {
		return false
	}
	return true
}

// TotalPoints sums the point values of all attached questions.
func (e *Exam) TotalPoints() int {
	total := 0
	for i := range e.Questions {
		total += e.Questions[i].Points
	}
	return total
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=255"`
	Description     string     `json:"description" binding:"omitempty,max=4000"`
	DurationMinutes int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	Difficulty      Difficulty `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	AvailableFrom   *time.Time `json:"available_from" binding:"omitempty"`
	AvailableUntil  *time.Time `json:"available_until" binding:"omitempty,gtfield=AvailableFrom"`
}

// UpdateExamRequest is the payload for updating a draft exam.
type UpdateExamRequest struct {
	Title           string     `json:"title" binding:"omitempty,min=3,max=255"`
	Description     *string    `json:"description" binding:"omitempty,max=4000"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Difficulty      Difficulty `json:"difficulty" binding:"omitempty,oneof=Easy Medium Hard"`
	AvailableFrom   *time.Time `json:"available_from" binding:"omitempty"`
	AvailableUntil  *time.Time `json:"available_until" binding:"omitempty"`
}

// SetExamQuestionsRequest replaces the ordered question list of a draft exam.
type SetExamQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
}

// ExamPayload is the Redis-cached exam content served to examinees.
// Reference answers never appear here.
type ExamPayload struct {
	ExamID          uuid.UUID      `json:"exam_id"`
	Title           string         `json:"title"`
	DurationMinutes int            `json:"duration_minutes"`
	Questions       []ExamQuestion `json:"questions"`
}
