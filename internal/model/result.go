package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamResult is the immutable record of a submitted exam attempt.
// Exam title and examinee name are denormalized so results survive
// later edits to the exam or the account.
type ExamResult struct {
	ID          uuid.UUID            `json:"id"`
	ExamID      uuid.UUID            `json:"exam_id"`
	ExamTitle   string               `json:"exam_title"`
	UserID      uuid.UUID            `json:"user_id"`
	UserName    string               `json:"user_name"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Score       int                  `json:"score"`
	TotalPoints int                  `json:"total_points"`
	Answers     map[uuid.UUID]Answer `json:"answers"`
	Events      []ProctoringEvent    `json:"events"`
}
