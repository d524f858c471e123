package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/evalhub/evalhub-backend/internal/model"
)

func question(typ model.QuestionType, points int, correct model.Answer) model.Question {
	return model.Question{
		ID:      uuid.New(),
		Text:    "q",
		Type:    typ,
		Correct: correct,
		Points:  points,
	}
}

func TestScoreSingleChoiceExactMatch(t *testing.T) {
	q := question(model.QuestionSingleChoice, 10, model.TextAnswer("Paris"))

	score, total := Score([]model.Question{q}, map[uuid.UUID]model.Answer{
		q.ID: model.TextAnswer("Paris"),
	})
	assert.Equal(t, 10, score)
	assert.Equal(t, 10, total)

	// Case matters.
	score, _ = Score([]model.Question{q}, map[uuid.UUID]model.Answer{
		q.ID: model.TextAnswer("paris"),
	})
	assert.Equal(t, 0, score)
}

func TestScoreMultiSelectOrderSensitive(t *testing.T) {
	q := question(model.QuestionMultiSelect, 5, model.ListAnswer("A", "C"))

	score, _ := Score([]model.Question{q}, map[uuid.UUID]model.Answer{
		q.ID: model.ListAnswer("A", "C"),
	})
	assert.Equal(t, 5, score)

	score, _ = Score([]model.Question{q}, map[uuid.UUID]model.Answer{
		q.ID: model.ListAnswer("C", "A"),
	})
	assert.Equal(t, 0, score)
}

func TestScoreJustifiedTrueFalseExactText(t *testing.T) {
	correct := model.JustifiedAnswer("True", "Because the statement holds")
	q := question(model.QuestionTrueFalseJustify, 8, correct)

	score, _ := Score([]model.Question{q}, map[uuid.UUID]model.Answer{
		q.ID: model.JustifiedAnswer("True", "Because the statement holds"),
	})
	assert.Equal(t, 8, score)

	// Right selection, differently worded justification earns nothing.
	score, _ = Score([]model.Question{q}, map[uuid.UUID]model.Answer{
		q.ID: model.JustifiedAnswer("True", "because the statement holds"),
	})
	assert.Equal(t, 0, score)
}

func TestScoreUnansweredEarnsZero(t *testing.T) {
	q1 := question(model.QuestionShortAnswer, 10, model.TextAnswer("42"))
	q2 := question(model.QuestionTrueFalse, 5, model.TextAnswer("True"))

	score, total := Score([]model.Question{q1, q2}, map[uuid.UUID]model.Answer{
		q2.ID: model.TextAnswer("True"),
	})
	assert.Equal(t, 5, score)
	assert.Equal(t, 15, total)

	// Explicit absent marker behaves like no entry at all.
	score, _ = Score([]model.Question{q1, q2}, map[uuid.UUID]model.Answer{
		q1.ID: model.NoAnswer(),
		q2.ID: model.TextAnswer("True"),
	})
	assert.Equal(t, 5, score)
}

func TestScoreTotalIncludesEveryQuestion(t *testing.T) {
	qs := []model.Question{
		question(model.QuestionSingleChoice, 10, model.TextAnswer("A")),
		question(model.QuestionEssay, 20, model.TextAnswer("")),
		question(model.QuestionOrdering, 15, model.ListAnswer("1", "2", "3")),
	}

	_, total := Score(qs, nil)
	assert.Equal(t, 45, total)
}

func TestScoreIsIdempotent(t *testing.T) {
	q1 := question(model.QuestionSingleChoice, 10, model.TextAnswer("B"))
	q2 := question(model.QuestionMatching, 12, model.ListAnswer("x", "y"))
	answers := map[uuid.UUID]model.Answer{
		q1.ID: model.TextAnswer("B"),
		q2.ID: model.ListAnswer("x", "z"),
	}

	s1, t1 := Score([]model.Question{q1, q2}, answers)
	s2, t2 := Score([]model.Question{q1, q2}, answers)
	assert.Equal(t, s1, s2)
	assert.Equal(t, t1, t2)
	assert.Equal(t, 10, s1)
	assert.Equal(t, 22, t1)
}
