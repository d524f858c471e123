package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
	"github.com/evalhub/evalhub-backend/internal/response"
)

// Domain errors.
var (
	ErrNotQuestionOwner    = errors.New("not the owner of this question")
	ErrQuestionShape       = errors.New("question content does not match its type")
	ErrInvalidReviewChange = errors.New("invalid review status transition")
)

// QuestionService handles question-bank business logic.
type QuestionService struct {
	repo *repository.QuestionRepository
	log  zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(repo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		repo: repo,
		log:  log.With().Str("component", "question_service").Logger(),
	}
}

// GetByID retrieves a question by its UUID.
func (s *QuestionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByOwner retrieves an owner's questions with pagination.
func (s *QuestionService) ListByOwner(ctx context.Context, ownerID uuid.UUID, category string, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	questions, total, err := s.repo.ListByOwnerPaginated(ctx, ownerID, category, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return questions, pagination, nil
}

// Create validates the question shape and inserts it as a draft.
func (s *QuestionService) Create(ctx context.Context, q *model.Question) error {
	if err := ValidateShape(q); err != nil {
		return err
	}
	q.ReviewStatus = model.ReviewDraft
	return s.repo.Create(ctx, q)
}

// Update validates and replaces a question's content. Editing sends an
// approved question back to draft.
func (s *QuestionService) Update(ctx context.Context, ownerID uuid.UUID, q *model.Question) error {
	existing, err := s.repo.GetByID(ctx, q.ID)
	if err != nil {
		return err
	}
	if ownerID != uuid.Nil && existing.OwnerID != ownerID {
		return ErrNotQuestionOwner
	}
	if err := ValidateShape(q); err != nil {
		return err
	}
	q.ReviewStatus = model.ReviewDraft
	return s.repo.Update(ctx, q)
}

// Delete removes a question from the bank.
func (s *QuestionService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ownerID != uuid.Nil && existing.OwnerID != ownerID {
		return ErrNotQuestionOwner
	}
	return s.repo.Delete(ctx, id)
}

// reviewTransitions lists the allowed review workflow moves.
var reviewTransitions = map[model.ReviewStatus][]model.ReviewStatus{
	model.ReviewDraft:    {model.ReviewPending},
	model.ReviewPending:  {model.ReviewApproved, model.ReviewRejected},
	model.ReviewRejected: {model.ReviewDraft, model.ReviewPending},
	model.ReviewApproved: {model.ReviewDraft},
}

// Review moves a question through the review workflow.
func (s *QuestionService) Review(ctx context.Context, id uuid.UUID, target model.ReviewStatus) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range reviewTransitions[existing.ReviewStatus] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrInvalidReviewChange
	}

	if err := s.repo.UpdateReviewStatus(ctx, id, target); err != nil {
		return err
	}
	s.log.Info().
		Str("question_id", id.String()).
		Str("from", string(existing.ReviewStatus)).
		Str("to", string(target)).
		Msg("Question review status changed")
	return nil
}

// ValidateShape checks that a question's options, prompts and reference
// answer are consistent with its type.
func ValidateShape(q *model.Question) error {
	switch q.Type {
	case model.QuestionSingleChoice:
		if len(q.Options) < 2 {
			return ErrQuestionShape
		}
		text, ok := q.Correct.Text()
		if !ok || !contains(q.Options, text) {
			return ErrQuestionShape
		}

	case model.QuestionMultiSelect:
		if len(q.Options) < 2 {
			return ErrQuestionShape
		}
		list, ok := q.Correct.List()
		if !ok || len(list) == 0 {
			return ErrQuestionShape
		}
		for _, item := range list {
			if !contains(q.Options, item) {
				return ErrQuestionShape
			}
		}

	case model.QuestionTrueFalse:
		text, ok := q.Correct.Text()
		if !ok || (text != "True" && text != "False") {
			return ErrQuestionShape
		}

	case model.QuestionTrueFalseJustify:
		jc, ok := q.Correct.Justified()
		if !ok || (jc.Selection != "True" && jc.Selection != "False") {
			return ErrQuestionShape
		}

	case model.QuestionShortAnswer, model.QuestionEssay:
		if _, ok := q.Correct.Text(); !ok {
			return ErrQuestionShape
		}

	case model.QuestionOrdering:
		if len(q.Options) < 2 {
			return ErrQuestionShape
		}
		list, ok := q.Correct.List()
		if !ok || len(list) != len(q.Options) {
			return ErrQuestionShape
		}
		for _, item := range list {
			if !contains(q.Options, item) {
				return ErrQuestionShape
			}
		}

	case model.QuestionMatching:
		if len(q.Prompts) == 0 || len(q.Options) == 0 {
			return ErrQuestionShape
		}
		list, ok := q.Correct.List()
		if !ok || len(list) != len(q.Prompts) {
			return ErrQuestionShape
		}
		for _, item := range list {
			if !contains(q.Options, item) {
				return ErrQuestionShape
			}
		}

	default:
		return ErrQuestionShape
	}

	if q.Points < 1 {
		return ErrQuestionShape
	}
	return nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
