package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionSingleChoice     QuestionType = "single_choice"
	QuestionMultiSelect      QuestionType = "multi_select"
	QuestionTrueFalse        QuestionType = "true_false"
	QuestionTrueFalseJustify QuestionType = "true_false_justify"
	QuestionShortAnswer      QuestionType = "short_answer"
	QuestionEssay            QuestionType = "essay"
	QuestionOrdering         QuestionType = "ordering"
	QuestionMatching         QuestionType = "matching"
)

// ReviewStatus enumerates the question-bank review workflow states.
type ReviewStatus string

const (
	ReviewDraft    ReviewStatus = "draft"
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Question represents a question-bank entry. Correct holds the reference
// answer in the same tagged-union shape examinee answers use.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	OwnerID      uuid.UUID    `json:"owner_id"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	Options      []string     `json:"options,omitempty"`
	Prompts      []string     `json:"prompts,omitempty"`
	Correct      Answer       `json:"correct"`
	Points       int          `json:"points"`
	Tags         []string     `json:"tags,omitempty"`
	Category     string       `json:"category,omitempty"`
	Subcategory  string       `json:"subcategory,omitempty"`
	ReviewStatus ReviewStatus `json:"review_status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ExamQuestion is a question stripped of its reference answer, as delivered
// to an examinee during a session.
type ExamQuestion struct {
	ID      uuid.UUID    `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
	Prompts []string     `json:"prompts,omitempty"`
	Points  int          `json:"points"`
}

// ForExaminee strips the reference answer and bank metadata.
func (q *Question) ForExaminee() ExamQuestion {
	return ExamQuestion{
		ID:      q.ID,
		Text:    q.Text,
		Type:    q.Type,
		Options: q.Options,
		Prompts: q.Prompts,
		Points:  q.Points,
	}
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	Text        string       `json:"text" binding:"required,min=1,max=4000"`
	Type        QuestionType `json:"type" binding:"required,oneof=single_choice multi_select true_false true_false_justify short_answer essay ordering matching"`
	Options     []string     `json:"options" binding:"omitempty,dive,min=1"`
	Prompts     []string     `json:"prompts" binding:"omitempty,dive,min=1"`
	Correct     Answer       `json:"correct"`
	Points      int          `json:"points" binding:"required,min=1,max=100"`
	Tags        []string     `json:"tags" binding:"omitempty,dive,min=1,max=50"`
	Category    string       `json:"category" binding:"omitempty,max=100"`
	Subcategory string       `json:"subcategory" binding:"omitempty,max=100"`
}

// UpdateQuestionRequest is the payload for editing a question.
type UpdateQuestionRequest struct {
	Text        string       `json:"text" binding:"omitempty,min=1,max=4000"`
	Type        QuestionType `json:"type" binding:"omitempty,oneof=single_choice multi_select true_false true_false_justify short_answer essay ordering matching"`
	Options     []string     `json:"options" binding:"omitempty,dive,min=1"`
	Prompts     []string     `json:"prompts" binding:"omitempty,dive,min=1"`
	Correct     *Answer      `json:"correct"`
	Points      *int         `json:"points" binding:"omitempty,min=1,max=100"`
	Tags        []string     `json:"tags" binding:"omitempty,dive,min=1,max=50"`
	Category    *string      `json:"category" binding:"omitempty,max=100"`
	Subcategory *string      `json:"subcategory" binding:"omitempty,max=100"`
}

// ReviewQuestionRequest moves a question through the review workflow.
type ReviewQuestionRequest struct {
	Status ReviewStatus `json:"status" binding:"required,oneof=draft pending approved rejected"`
}
