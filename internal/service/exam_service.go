package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
	"github.com/evalhub/evalhub-backend/internal/response"
)

// Domain Errors
var (
	ErrNotExamOwner     = errors.New("not the owner of this exam")
	ErrNoQuestions      = errors.New("exam has no questions, cannot publish")
	ErrExamNotDraft     = errors.New("exam status is not DRAFT")
	ErrExamNotPublished = errors.New("exam status is not PUBLISHED")
	ErrExamNotAvailable = errors.New("exam is outside its availability window")
)

// ExamService handles exam business logic and the Redis fast lane.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam by its UUID, without its questions.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// GetWithQuestions retrieves an exam together with its ordered questions.
func (s *ExamService) GetWithQuestions(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.ListByExam(ctx, id)
	if err != nil {
		return nil, err
	}
	exam.Questions = questions
	exam.QuestionCount = len(questions)
	return exam, nil
}

// ListByOwner retrieves exams with pagination. Admins pass a nil owner to
// list everything.
func (s *ExamService) ListByOwner(ctx context.Context, ownerID *uuid.UUID, page, perPage int) ([]model.Exam, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	exams, total, err := s.examRepo.ListByOwnerPaginated(ctx, ownerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return exams, pagination, nil
}

// ListAvailable retrieves published exams currently inside their window,
// for the examinee's exam list.
func (s *ExamService) ListAvailable(ctx context.Context) ([]model.Exam, error) {
	exams, err := s.examRepo.ListAvailableForExaminee(ctx)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// Create inserts a new exam as DRAFT.
func (s *ExamService) Create(ctx context.Context, exam *model.Exam) error {
	exam.Status = model.ExamStatusDraft
	return s.examRepo.Create(ctx, exam)
}

// Update modifies an existing draft exam. Published exams are immutable.
func (s *ExamService) Update(ctx context.Context, ownerID uuid.UUID, exam *model.Exam) error {
	existing, err := s.examRepo.GetByID(ctx, exam.ID)
	if err != nil {
		return err
	}
	if ownerID != uuid.Nil && existing.OwnerID != ownerID {
		return ErrNotExamOwner
	}
	if existing.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}
	return s.examRepo.Update(ctx, exam)
}

// SetQuestions replaces the ordered question list of a draft exam.
func (s *ExamService) SetQuestions(ctx context.Context, examID, ownerID uuid.UUID, questionIDs []uuid.UUID) error {
	existing, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return err
	}
	if ownerID != uuid.Nil && existing.OwnerID != ownerID {
		return ErrNotExamOwner
	}
	if existing.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}
	return s.examRepo.SetQuestions(ctx, examID, questionIDs)
}

// Delete removes a draft exam.
func (s *ExamService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	existing, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ownerID != uuid.Nil && existing.OwnerID != ownerID {
		return ErrNotExamOwner
	}
	if existing.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}
	return s.examRepo.Delete(ctx, id)
}

// Publish changes exam status to PUBLISHED and caches the payload + answer
// key in Redis. This is the critical path that populates the fast lane.
func (s *ExamService) Publish(ctx context.Context, examID, ownerID uuid.UUID) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("get exam: %w", err)
	}

	if ownerID != uuid.Nil && exam.OwnerID != ownerID {
		return ErrNotExamOwner
	}
	if exam.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		return err
	}
	if err := s.examRepo.UpdateStatus(ctx, examID, model.ExamStatusPublished); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.log.Info().Str("exam_id", examID.String()).Msg("Exam published")
	return nil
}

// Archive retires a published exam; it stops appearing in examinee listings.
func (s *ExamService) Archive(ctx context.Context, examID, ownerID uuid.UUID) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return err
	}
	if ownerID != uuid.Nil && exam.OwnerID != ownerID {
		return ErrNotExamOwner
	}
	if exam.Status != model.ExamStatusPublished {
		return ErrExamNotPublished
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.ExamPayloadKey(examID.String()))
	pipe.Del(ctx, config.CacheKey.ExamAnswerKeyKey(examID.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to evict exam cache")
	}

	return s.examRepo.UpdateStatus(ctx, examID, model.ExamStatusArchived)
}

// WarmExamCache loads an exam's payload and answer key from PostgreSQL into
// Redis. Used by Publish and PrewarmAllCaches.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.Exam) error {
	questions, err := s.questionRepo.ListByExam(ctx, exam.ID)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	// Examinee-facing payload, reference answers stripped.
	examineeQuestions := make([]model.ExamQuestion, len(questions))
	for i := range questions {
		examineeQuestions[i] = questions[i].ForExaminee()
	}

	payload := model.ExamPayload{
		ExamID:          exam.ID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		Questions:       examineeQuestions,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Answer key hash: question id -> reference answer JSON.
	answerKey := make(map[string]interface{}, len(questions))
	for i := range questions {
		correctJSON, err := json.Marshal(questions[i].Correct)
		if err != nil {
			return fmt.Errorf("marshal answer key: %w", err)
		}
		answerKey[questions[i].ID.String()] = string(correctJSON)
	}

	payloadKey := config.CacheKey.ExamPayloadKey(exam.ID.String())
	keyKey := config.CacheKey.ExamAnswerKeyKey(exam.ID.String())

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, payloadKey, payloadJSON, 0)
	pipe.Del(ctx, keyKey)
	pipe.HSet(ctx, keyKey, answerKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("exam_id", exam.ID.String()).
		Int("questions", len(questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all published exams into Redis on application
// startup, so the first wave of examinees never hits PostgreSQL.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published exams: %w", err)
	}

	if len(exams) == 0 {
		s.log.Info().Msg("No published exams to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(exams)).Msg("Prewarming published exams...")

	warmed := 0
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("exam_id", exams[i].ID.String()).
				Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(exams)).
		Msg("Prewarming complete")
	return nil
}

// GetExamPayload retrieves the cached examinee payload from Redis.
func (s *ExamService) GetExamPayload(ctx context.Context, examID uuid.UUID) (*model.ExamPayload, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.ExamPayloadKey(examID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrExamNotPublished
		}
		return nil, fmt.Errorf("get payload: %w", err)
	}

	var payload model.ExamPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &payload, nil
}
