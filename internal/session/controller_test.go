package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalhub/evalhub-backend/internal/model"
)

type stubFetcher struct {
	exam *model.Exam
	err  error
}

func (f *stubFetcher) FetchExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.exam, nil
}

type stubSubmitter struct {
	mu    sync.Mutex
	calls int
	fail  error
	last  *Submission
}

func (s *stubSubmitter) SubmitResult(ctx context.Context, sub *Submission) (*model.ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = sub
	if s.fail != nil {
		return nil, s.fail
	}
	return &model.ExamResult{
		ID:          uuid.New(),
		ExamID:      sub.ExamID,
		UserID:      sub.UserID,
		SubmittedAt: time.Now(),
		Score:       sub.Score,
		TotalPoints: sub.TotalPoints,
		Answers:     sub.Answers,
		Events:      sub.Events,
	}, nil
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func twoQuestionExam() *model.Exam {
	q1 := model.Question{
		ID:      uuid.New(),
		Text:    "What is the capital of France?",
		Type:    model.QuestionSingleChoice,
		Options: []string{"Paris", "London", "Berlin"},
		Correct: model.TextAnswer("Paris"),
		Points:  10,
	}
	q2 := model.Question{
		ID:      uuid.New(),
		Text:    "Select the prime numbers.",
		Type:    model.QuestionMultiSelect,
		Options: []string{"2", "3", "4"},
		Correct: model.ListAnswer("2", "3"),
		Points:  10,
	}
	return &model.Exam{
		ID:              uuid.New(),
		Title:           "Sample Exam",
		DurationMinutes: 30,
		Status:          model.ExamStatusPublished,
		Questions:       []model.Question{q1, q2},
	}
}

func newTestController(exam *model.Exam, sub *stubSubmitter) *Controller {
	return NewController(exam.ID, uuid.New(), &stubFetcher{exam: exam}, sub, nil, zerolog.Nop())
}

func TestControllerLifecycle(t *testing.T) {
	exam := twoQuestionExam()
	sub := &stubSubmitter{}
	c := newTestController(exam, sub)

	assert.Equal(t, StateLoading, c.State())
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, StateReady, c.State())
	require.NoError(t, c.Begin())
	assert.Equal(t, StateInProgress, c.State())
	defer c.Close()

	assert.Greater(t, c.Remaining(), 0)
}

func TestControllerLoadFailureIsTerminal(t *testing.T) {
	c := NewController(uuid.New(), uuid.New(), &stubFetcher{err: errors.New("boom")}, &stubSubmitter{}, nil, zerolog.Nop())

	require.Error(t, c.Load(context.Background()))
	assert.Equal(t, StateFailed, c.State())
	assert.ErrorIs(t, c.Begin(), ErrNotReady)
}

func TestControllerEndToEndScoresHalf(t *testing.T) {
	exam := twoQuestionExam()
	sub := &stubSubmitter{}
	c := newTestController(exam, sub)

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Begin())
	defer c.Close()

	// Correct first answer, wrong order on the second.
	require.NoError(t, c.SetAnswer(exam.Questions[0].ID, model.TextAnswer("Paris")))
	require.NoError(t, c.SetAnswer(exam.Questions[1].ID, model.ListAnswer("3", "2")))
	require.NoError(t, c.RecordEvent(model.EventTabSwitch, model.SeverityMedium, ""))

	result, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 20, result.TotalPoints)
	assert.Equal(t, StateCompleted, c.State())
	assert.Equal(t, 1, sub.callCount())
	assert.Len(t, result.Events, 1)
}

func TestControllerSubmitIsSingleFire(t *testing.T) {
	exam := twoQuestionExam()
	sub := &stubSubmitter{}
	c := newTestController(exam, sub)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Begin())

	first, err := c.Submit(context.Background())
	require.NoError(t, err)

	again, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Same(t, first, again)
	assert.Equal(t, 1, sub.callCount())
}

func TestControllerConcurrentSubmitsCallSubmitterOnce(t *testing.T) {
	exam := twoQuestionExam()
	sub := &stubSubmitter{}
	c := newTestController(exam, sub)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Begin())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Submit(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sub.callCount())
	assert.Equal(t, StateCompleted, c.State())
}

func TestControllerSubmitFailurePreservesSession(t *testing.T) {
	exam := twoQuestionExam()
	sub := &stubSubmitter{fail: errors.New("network down")}
	c := newTestController(exam, sub)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Begin())
	defer c.Close()

	require.NoError(t, c.SetAnswer(exam.Questions[0].ID, model.TextAnswer("Paris")))
	require.NoError(t, c.RecordEvent(model.EventPasteContent, model.SeverityLow, ""))

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateInProgress, c.State())

	// Everything recorded before the failure is still there and a retry works.
	assert.True(t, c.Answer(exam.Questions[0].ID).Answered())
	assert.Len(t, c.Events(), 1)

	sub.mu.Lock()
	sub.fail = nil
	sub.mu.Unlock()

	result, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, result.Score)
	assert.Equal(t, 2, sub.callCount())
}

func TestControllerForcedSubmitMatchesManual(t *testing.T) {
	exam := twoQuestionExam()
	sub := &stubSubmitter{}
	c := newTestController(exam, sub)
	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Begin())

	require.NoError(t, c.SetAnswer(exam.Questions[0].ID, model.TextAnswer("Paris")))

	c.forceSubmit()

	assert.Equal(t, StateCompleted, c.State())
	assert.Equal(t, 1, sub.callCount())
	require.NotNil(t, c.Result())
	assert.Equal(t, 10, c.Result().Score)
	assert.Equal(t, 20, c.Result().TotalPoints)

	sub.mu.Lock()
	forced := sub.last.Forced
	sub.mu.Unlock()
	assert.True(t, forced)

	// A late manual submit after the forced one is a no-op.
	res, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, c.Result(), res)
	assert.Equal(t, 1, sub.callCount())
}

func TestControllerRejectsActionsOutsideInProgress(t *testing.T) {
	exam := twoQuestionExam()
	c := newTestController(exam, &stubSubmitter{})

	qid := exam.Questions[0].ID
	assert.ErrorIs(t, c.SetAnswer(qid, model.TextAnswer("x")), ErrNotInProgress)
	assert.ErrorIs(t, c.RecordEvent(model.EventTabSwitch, model.SeverityMedium, ""), ErrNotInProgress)
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotInProgress)
}

func TestControllerNavigationBounds(t *testing.T) {
	exam := twoQuestionExam()
	c := newTestController(exam, &stubSubmitter{})
	require.NoError(t, c.Load(context.Background()))

	assert.Equal(t, 0, c.Prev())
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 0, c.Prev())
	assert.Equal(t, 0, c.Index())
}
