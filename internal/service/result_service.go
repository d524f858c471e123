package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
	"github.com/evalhub/evalhub-backend/internal/response"
	"github.com/evalhub/evalhub-backend/internal/session"
)

// ResultService persists and serves exam results. It also implements the
// session engine's submission contract via SubmitterFor.
type ResultService struct {
	repo  *repository.ResultRepository
	exams *repository.ExamRepository
	users *repository.UserRepository
	log   zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	repo *repository.ResultRepository,
	exams *repository.ExamRepository,
	users *repository.UserRepository,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		repo:  repo,
		exams: exams,
		users: users,
		log:   log.With().Str("component", "result_service").Logger(),
	}
}

// resultSubmitter adapts ResultService to session.ResultSubmitter and
// fires a callback once the result row is safely stored.
type resultSubmitter struct {
	svc       *ResultService
	onSuccess func(*model.ExamResult)
}

// SubmitterFor returns the submission sink handed to session controllers.
// onSuccess may be nil.
func (s *ResultService) SubmitterFor(onSuccess func(*model.ExamResult)) session.ResultSubmitter {
	return &resultSubmitter{svc: s, onSuccess: onSuccess}
}

func (rs *resultSubmitter) SubmitResult(ctx context.Context, sub *session.Submission) (*model.ExamResult, error) {
	result, err := rs.svc.persist(ctx, sub)
	if err != nil {
		return nil, err
	}
	if rs.onSuccess != nil {
		rs.onSuccess(result)
	}
	return result, nil
}

// persist denormalizes the exam title and examinee name onto the result
// row and stores it. The row is created exactly once per attempt; the
// unique constraint backs the engine's single-fire guarantee.
func (s *ResultService) persist(ctx context.Context, sub *session.Submission) (*model.ExamResult, error) {
	exam, err := s.exams.GetByID(ctx, sub.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	user, err := s.users.GetByID(ctx, sub.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	answers := sub.Answers
	if answers == nil {
		answers = map[uuid.UUID]model.Answer{}
	}
	events := sub.Events
	if events == nil {
		events = []model.ProctoringEvent{}
	}

	result := &model.ExamResult{
		ExamID:      sub.ExamID,
		ExamTitle:   exam.Title,
		UserID:      sub.UserID,
		UserName:    user.Name,
		SubmittedAt: time.Now(),
		Score:       sub.Score,
		TotalPoints: sub.TotalPoints,
		Answers:     answers,
		Events:      events,
	}

	if err := s.repo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.log.Info().
		Str("exam_id", sub.ExamID.String()).
		Str("user_id", sub.UserID.String()).
		Int("score", sub.Score).
		Int("total_points", sub.TotalPoints).
		Bool("forced", sub.Forced).
		Msg("Result stored")
	return result, nil
}

// GetByID retrieves a result by its UUID.
func (s *ResultService) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByExamAndUser retrieves the result of one attempt.
func (s *ResultService) GetByExamAndUser(ctx context.Context, examID, userID uuid.UUID) (*model.ExamResult, error) {
	return s.repo.GetByExamAndUser(ctx, examID, userID)
}

// ListByExam retrieves an exam's results with pagination, newest first.
func (s *ResultService) ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]model.ExamResult, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	results, total, err := s.repo.ListByExamPaginated(ctx, examID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if results == nil {
		results = []model.ExamResult{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return results, pagination, nil
}

// ListByUser retrieves every result belonging to one examinee.
func (s *ResultService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ExamResult, error) {
	results, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.ExamResult{}
	}
	return results, nil
}
