package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/session"
)

// ErrSessionNotFound is returned when no live session exists for the pair.
var ErrSessionNotFound = errors.New("no active session for this exam")

// MonitorEvent is the message published to an exam's monitor channel.
type MonitorEvent struct {
	Kind      string    `json:"kind"` // joined | answered | event | submitted
	ExamID    uuid.UUID `json:"exam_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// answerQueueItem is the payload pushed to the answers persistence queue.
type answerQueueItem struct {
	ExamID     string          `json:"exam_id"`
	UserID     string          `json:"user_id"`
	QuestionID string          `json:"q_id"`
	Answer     json.RawMessage `json:"answer"`
}

// eventQueueItem is the payload pushed to the events persistence queue.
type eventQueueItem struct {
	ExamID    string `json:"exam_id"`
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Severity  string `json:"severity"`
	Detail    string `json:"detail,omitempty"`
}

// SessionState is the reconnect snapshot for an in-progress session.
type SessionState struct {
	ExamID           uuid.UUID               `json:"exam_id"`
	State            session.State           `json:"state"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	Answers          map[uuid.UUID]model.Answer `json:"answers"`
	EventCount       int                     `json:"event_count"`
}

// SessionService owns the live session controllers. Sessions live in
// process memory with their answers mirrored to Redis; a process restart
// loses open sessions.
type SessionService struct {
	examService *ExamService
	results     *ResultService
	rdb         *redis.Client
	log         zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session.Controller

	// eventSeverity maps client-reported signal types to their grade.
	eventSeverity map[model.EventType]model.Severity
}

// NewSessionService creates a new SessionService.
func NewSessionService(examService *ExamService, results *ResultService, rdb *redis.Client, log zerolog.Logger) *SessionService {
	return &SessionService{
		examService: examService,
		results:     results,
		rdb:         rdb,
		log:         log.With().Str("component", "session_service").Logger(),
		sessions:    make(map[string]*session.Controller),
		eventSeverity: map[model.EventType]model.Severity{
			model.EventTabSwitch:    model.SeverityMedium,
			model.EventPasteContent: model.SeverityLow,
		},
	}
}

func sessionKey(examID, userID uuid.UUID) string {
	return examID.String() + ":" + userID.String()
}

// examFetcher adapts ExamService to the session.ExamFetcher interface,
// loading the full exam with its ordered questions.
type examFetcher struct {
	svc *ExamService
}

func (f *examFetcher) FetchExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := f.svc.GetWithQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotPublished
	}
	if !exam.AvailableAt(time.Now()) {
		return nil, ErrExamNotAvailable
	}
	return exam, nil
}

// Start creates (or returns) the live session for an examinee and begins
// the countdown. Starting is idempotent: a second call returns the
// existing controller.
func (s *SessionService) Start(ctx context.Context, examID, userID uuid.UUID) (*session.Controller, error) {
	key := sessionKey(examID, userID)

	s.mu.Lock()
	if ctrl, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return ctrl, nil
	}
	s.mu.Unlock()

	// One result per attempt: a submitted exam cannot be restarted.
	if existing, err := s.results.GetByExamAndUser(ctx, examID, userID); err == nil && existing != nil {
		return nil, session.ErrAlreadySubmitted
	}

	ctrl := session.NewController(
		examID, userID,
		&examFetcher{svc: s.examService},
		s.results.SubmitterFor(s.onSubmitted),
		session.NewSimulatedSource(time.Now().UnixNano()),
		s.log,
	)

	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	if err := ctrl.Begin(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if racing, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		ctrl.Close()
		return racing, nil
	}
	s.sessions[key] = ctrl
	s.mu.Unlock()

	startKey := config.CacheKey.SessionStartKey(examID.String(), userID.String())
	if err := s.rdb.Set(ctx, startKey, time.Now().Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache session start time")
	}

	s.publishMonitor(ctx, examID, MonitorEvent{
		Kind:      "joined",
		ExamID:    examID,
		UserID:    userID,
		Timestamp: time.Now(),
	})
	return ctrl, nil
}

// Get returns the live controller for an examinee's session.
func (s *SessionService) Get(examID, userID uuid.UUID) (*session.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.sessions[sessionKey(examID, userID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

// State builds the reconnect snapshot for an in-progress session.
func (s *SessionService) State(examID, userID uuid.UUID) (*SessionState, error) {
	ctrl, err := s.Get(examID, userID)
	if err != nil {
		return nil, err
	}
	return &SessionState{
		ExamID:           examID,
		State:            ctrl.State(),
		RemainingSeconds: ctrl.Remaining(),
		Answers:          ctrl.Answers(),
		EventCount:       len(ctrl.Events()),
	}, nil
}

// SaveAnswer records an answer on the live session, mirrors it to Redis
// and enqueues it for background persistence.
func (s *SessionService) SaveAnswer(ctx context.Context, examID, userID, questionID uuid.UUID, answer model.Answer) error {
	ctrl, err := s.Get(examID, userID)
	if err != nil {
		return err
	}
	if err := ctrl.SetAnswer(questionID, answer); err != nil {
		return err
	}

	raw, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	// Mirror to Redis for reconnects, then queue for PostgreSQL.
	answersKey := config.CacheKey.SessionAnswersKey(examID.String(), userID.String())
	if err := s.rdb.HSet(ctx, answersKey, questionID.String(), raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to mirror answer to Redis")
	}

	item, _ := json.Marshal(answerQueueItem{
		ExamID:     examID.String(),
		UserID:     userID.String(),
		QuestionID: questionID.String(),
		Answer:     raw,
	})
	if err := s.rdb.RPush(ctx, config.QueueKey.PersistAnswersQueue, item).Err(); err != nil {
		s.log.Error().Err(err).Msg("Failed to enqueue answer for persistence")
	}

	s.publishMonitor(ctx, examID, MonitorEvent{
		Kind:      "answered",
		ExamID:    examID,
		UserID:    userID,
		Timestamp: time.Now(),
	})
	return nil
}

// RecordEvent appends a client-reported proctoring event to the live
// session and enqueues it for background persistence. Severity is assigned
// server-side from the event type.
func (s *SessionService) RecordEvent(ctx context.Context, examID, userID uuid.UUID, typ model.EventType, detail string) error {
	severity, ok := s.eventSeverity[typ]
	if !ok {
		severity = model.SeverityLow
	}
	return s.recordEvent(ctx, examID, userID, typ, severity, detail)
}

func (s *SessionService) recordEvent(ctx context.Context, examID, userID uuid.UUID, typ model.EventType, severity model.Severity, detail string) error {
	ctrl, err := s.Get(examID, userID)
	if err != nil {
		return err
	}
	if err := ctrl.RecordEvent(typ, severity, detail); err != nil {
		return err
	}

	events := ctrl.Events()
	var elapsed int64
	if len(events) > 0 {
		elapsed = events[len(events)-1].ElapsedMs
	}

	item, _ := json.Marshal(eventQueueItem{
		ExamID:    examID.String(),
		UserID:    userID.String(),
		Type:      string(typ),
		ElapsedMs: elapsed,
		Severity:  string(severity),
		Detail:    detail,
	})
	if err := s.rdb.RPush(ctx, config.QueueKey.PersistEventsQueue, item).Err(); err != nil {
		s.log.Error().Err(err).Msg("Failed to enqueue proctoring event")
	}

	s.publishMonitor(ctx, examID, MonitorEvent{
		Kind:      "event",
		ExamID:    examID,
		UserID:    userID,
		Detail:    string(typ),
		Timestamp: time.Now(),
	})
	return nil
}

// Submit finishes the session. The engine grades the attempt, the result
// service persists it, and the live session is cleaned up.
func (s *SessionService) Submit(ctx context.Context, examID, userID uuid.UUID) (*model.ExamResult, error) {
	ctrl, err := s.Get(examID, userID)
	if err != nil {
		return nil, err
	}

	result, err := ctrl.Submit(ctx)
	if err != nil {
		if errors.Is(err, session.ErrAlreadySubmitted) {
			s.cleanup(ctx, examID, userID)
			return result, err
		}
		return nil, err
	}

	s.cleanup(ctx, examID, userID)
	return result, nil
}

// onSubmitted runs after any successful persistence, including forced
// submissions fired by the timer.
func (s *SessionService) onSubmitted(result *model.ExamResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.cleanup(ctx, result.ExamID, result.UserID)
	s.publishMonitor(ctx, result.ExamID, MonitorEvent{
		Kind:      "submitted",
		ExamID:    result.ExamID,
		UserID:    result.UserID,
		UserName:  result.UserName,
		Timestamp: time.Now(),
	})
}

func (s *SessionService) cleanup(ctx context.Context, examID, userID uuid.UUID) {
	key := sessionKey(examID, userID)

	s.mu.Lock()
	ctrl, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	if ok {
		ctrl.Close()
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.SessionAnswersKey(examID.String(), userID.String()))
	pipe.Del(ctx, config.CacheKey.SessionStartKey(examID.String(), userID.String()))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to clear session cache")
	}
}

// CloseAll stops every live session without submitting. Called on shutdown.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ctrl := range s.sessions {
		ctrl.Close()
		delete(s.sessions, key)
	}
}

func (s *SessionService) publishMonitor(ctx context.Context, examID uuid.UUID, ev MonitorEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.ExamMonitorChannel(examID.String()), data).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to publish monitor event")
	}
}
