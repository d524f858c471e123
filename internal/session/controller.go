package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// State is a session lifecycle phase.
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var (
	// ErrNotInProgress is returned for actions that require a running session.
	ErrNotInProgress = errors.New("session: not in progress")
	// ErrAlreadySubmitted is returned when submitting a completed session.
	ErrAlreadySubmitted = errors.New("session: already submitted")
	// ErrSubmitInFlight is returned when a submission is being processed.
	ErrSubmitInFlight = errors.New("session: submission in flight")
	// ErrNotReady is returned when Begin is called out of order.
	ErrNotReady = errors.New("session: not ready to begin")
)

// ExamFetcher loads exam content for a session. One attempt, no retry.
type ExamFetcher interface {
	FetchExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error)
}

// ResultSubmitter persists a finished attempt and returns the stored result.
type ResultSubmitter interface {
	SubmitResult(ctx context.Context, sub *Submission) (*model.ExamResult, error)
}

// Submission is the payload handed to the ResultSubmitter.
type Submission struct {
	ExamID      uuid.UUID
	UserID      uuid.UUID
	Forced      bool
	Answers     map[uuid.UUID]model.Answer
	Events      []model.ProctoringEvent
	Score       int
	TotalPoints int
}

// pollInterval is how often the ambient event source is sampled.
const pollInterval = 20 * time.Second

// Controller drives one examinee's attempt at one exam: it owns the
// answer store, the proctoring collector, the countdown timer and the
// ambient event source, and enforces the session state machine.
type Controller struct {
	examID uuid.UUID
	userID uuid.UUID

	fetcher   ExamFetcher
	submitter ResultSubmitter
	source    EventSource
	log       zerolog.Logger

	mu     sync.Mutex
	state  State
	exam   *model.Exam
	index  int
	result *model.ExamResult

	answers   *AnswerStore
	collector *Collector
	timer     *Timer

	quit     chan struct{}
	quitOnce sync.Once
}

// NewController creates a controller in the Loading state. The event
// source may be nil to disable ambient polling.
func NewController(examID, userID uuid.UUID, fetcher ExamFetcher, submitter ResultSubmitter, source EventSource, log zerolog.Logger) *Controller {
	return &Controller{
		examID:    examID,
		userID:    userID,
		fetcher:   fetcher,
		submitter: submitter,
		source:    source,
		log:       log.With().Str("exam_id", examID.String()).Str("user_id", userID.String()).Logger(),
		state:     StateLoading,
		answers:   NewAnswerStore(),
		quit:      make(chan struct{}),
	}
}

// Load fetches the exam content once. Success moves the session to Ready;
// failure is terminal.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoading {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	c.mu.Unlock()

	exam, err := c.fetcher.FetchExam(ctx, c.examID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.log.Error().Err(err).Msg("Exam load failed")
		return err
	}
	c.exam = exam
	c.state = StateReady
	return nil
}

// Begin starts the countdown and the ambient event poller.
func (c *Controller) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}

	c.collector = NewCollector(nil)
	c.timer = NewTimer(c.exam.DurationMinutes*60, c.forceSubmit)
	c.timer.Start()
	c.state = StateInProgress

	if c.source != nil {
		go c.pollLoop()
	}
	c.log.Info().Int("duration_minutes", c.exam.DurationMinutes).Msg("Session started")
	return nil
}

func (c *Controller) pollLoop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ev := c.source.Poll()
			if ev == nil {
				continue
			}
			_ = c.RecordEvent(ev.Type, ev.Severity, ev.Detail)
		case <-c.quit:
			return
		}
	}
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Exam returns the loaded exam, or nil before Load succeeds.
func (c *Controller) Exam() *model.Exam {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exam
}

// Remaining returns the seconds left, or 0 when no timer is running.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	t := c.timer
	c.mu.Unlock()
	if t == nil {
		return 0
	}
	return t.Remaining()
}

// Result returns the persisted result after a successful submission.
func (c *Controller) Result() *model.ExamResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// SetAnswer records an answer while the session is in progress.
func (c *Controller) SetAnswer(questionID uuid.UUID, a model.Answer) error {
	c.mu.Lock()
	if c.state != StateInProgress {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	c.mu.Unlock()

	c.answers.Set(questionID, a)
	return nil
}

// Answer returns the stored answer for a question.
func (c *Controller) Answer(questionID uuid.UUID) model.Answer {
	return c.answers.Get(questionID)
}

// Answers returns a snapshot of all stored answers.
func (c *Controller) Answers() map[uuid.UUID]model.Answer {
	return c.answers.Snapshot()
}

// RecordEvent appends a proctoring event while the session is in progress.
func (c *Controller) RecordEvent(typ model.EventType, severity model.Severity, detail string) error {
	c.mu.Lock()
	if c.state != StateInProgress || c.collector == nil {
		c.mu.Unlock()
		return ErrNotInProgress
	}
	col := c.collector
	c.mu.Unlock()

	ev := col.Record(typ, severity, detail)
	c.log.Debug().
		Str("type", string(ev.Type)).
		Str("severity", string(ev.Severity)).
		Int64("elapsed_ms", ev.ElapsedMs).
		Msg("Proctoring event recorded")
	return nil
}

// Events returns the proctoring events recorded so far.
func (c *Controller) Events() []model.ProctoringEvent {
	c.mu.Lock()
	col := c.collector
	c.mu.Unlock()
	if col == nil {
		return nil
	}
	return col.Events()
}

// Next advances to the next question if one exists.
func (c *Controller) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exam != nil && c.index < len(c.exam.Questions)-1 {
		c.index++
	}
	return c.index
}

// Prev steps back to the previous question if one exists.
func (c *Controller) Prev() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index > 0 {
		c.index--
	}
	return c.index
}

// Index returns the current question position.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Submit grades the attempt and hands it to the ResultSubmitter. It is
// single-fire: concurrent calls get ErrSubmitInFlight and repeat calls
// after success get the cached result with ErrAlreadySubmitted. A failed
// submission returns the session to InProgress with answers and events
// intact so it can be retried.
func (c *Controller) Submit(ctx context.Context) (*model.ExamResult, error) {
	return c.submit(ctx, false)
}

func (c *Controller) submit(ctx context.Context, forced bool) (*model.ExamResult, error) {
	c.mu.Lock()
	switch c.state {
	case StateCompleted:
		res := c.result
		c.mu.Unlock()
		return res, ErrAlreadySubmitted
	case StateSubmitting:
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateInProgress:
		// proceed
	default:
		c.mu.Unlock()
		return nil, ErrNotInProgress
	}
	c.state = StateSubmitting
	exam := c.exam
	var events []model.ProctoringEvent
	if c.collector != nil {
		events = c.collector.Events()
	}
	c.mu.Unlock()

	answers := c.answers.Snapshot()
	score, total := Score(exam.Questions, answers)

	sub := &Submission{
		ExamID:      c.examID,
		UserID:      c.userID,
		Forced:      forced,
		Answers:     answers,
		Events:      events,
		Score:       score,
		TotalPoints: total,
	}

	result, err := c.submitter.SubmitResult(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Failed submission is retryable: nothing recorded is lost.
		c.state = StateInProgress
		c.log.Error().Err(err).Bool("forced", forced).Msg("Result submission failed")
		return nil, err
	}

	c.state = StateCompleted
	c.result = result
	if c.timer != nil {
		c.timer.Stop()
	}
	c.quitOnce.Do(func() { close(c.quit) })
	c.log.Info().Int("score", score).Int("total_points", total).Bool("forced", forced).Msg("Session submitted")
	return result, nil
}

// forceSubmit runs on timer expiry. It follows the same path as a manual
// submit, so a manual submission that already won the race makes this a
// no-op.
func (c *Controller) forceSubmit() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := c.submit(ctx, true); err != nil &&
		!errors.Is(err, ErrAlreadySubmitted) && !errors.Is(err, ErrSubmitInFlight) {
		c.log.Error().Err(err).Msg("Forced submission failed")
	}
}

// Close stops the timer and poller without submitting. Used when a
// session is abandoned or evicted.
func (c *Controller) Close() {
	c.mu.Lock()
	t := c.timer
	c.mu.Unlock()
	if t != nil {
		t.Stop()
	}
	c.quitOnce.Do(func() { close(c.quit) })
}
