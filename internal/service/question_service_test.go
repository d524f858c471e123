package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evalhub/evalhub-backend/internal/model"
)

func shapeQuestion(typ model.QuestionType, opts, prompts []string, correct model.Answer) *model.Question {
	return &model.Question{
		Text:    "q",
		Type:    typ,
		Options: opts,
		Prompts: prompts,
		Correct: correct,
		Points:  5,
	}
}

func TestValidateShapeSingleChoice(t *testing.T) {
	q := shapeQuestion(model.QuestionSingleChoice, []string{"A", "B"}, nil, model.TextAnswer("A"))
	assert.NoError(t, ValidateShape(q))

	q.Correct = model.TextAnswer("C")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)

	q.Correct = model.ListAnswer("A")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)
}

func TestValidateShapeMultiSelect(t *testing.T) {
	q := shapeQuestion(model.QuestionMultiSelect, []string{"A", "B", "C"}, nil, model.ListAnswer("A", "C"))
	assert.NoError(t, ValidateShape(q))

	q.Correct = model.ListAnswer("A", "D")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)

	q.Correct = model.ListAnswer()
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)
}

func TestValidateShapeTrueFalse(t *testing.T) {
	q := shapeQuestion(model.QuestionTrueFalse, nil, nil, model.TextAnswer("True"))
	assert.NoError(t, ValidateShape(q))

	q.Correct = model.TextAnswer("yes")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)
}

func TestValidateShapeTrueFalseJustify(t *testing.T) {
	q := shapeQuestion(model.QuestionTrueFalseJustify, nil, nil, model.JustifiedAnswer("False", "it is not"))
	assert.NoError(t, ValidateShape(q))

	q.Correct = model.JustifiedAnswer("Maybe", "x")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)

	q.Correct = model.TextAnswer("False")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)
}

func TestValidateShapeOrdering(t *testing.T) {
	q := shapeQuestion(model.QuestionOrdering, []string{"first", "second", "third"}, nil, model.ListAnswer("first", "second", "third"))
	assert.NoError(t, ValidateShape(q))

	// Must use every option.
	q.Correct = model.ListAnswer("first", "second")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)
}

func TestValidateShapeMatching(t *testing.T) {
	q := shapeQuestion(model.QuestionMatching, []string{"x", "y"}, []string{"p1", "p2"}, model.ListAnswer("x", "y"))
	assert.NoError(t, ValidateShape(q))

	// One pairing per prompt.
	q.Correct = model.ListAnswer("x")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)

	q.Prompts = nil
	q.Correct = model.ListAnswer("x", "y")
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)
}

func TestValidateShapeRejectsNonPositivePoints(t *testing.T) {
	q := shapeQuestion(model.QuestionShortAnswer, nil, nil, model.TextAnswer("42"))
	q.Points = 0
	assert.ErrorIs(t, ValidateShape(q), ErrQuestionShape)
}
