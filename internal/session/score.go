package session

import (
	"github.com/google/uuid"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// Score grades a set of answers against the exam questions. A question
// earns its full point value on a structural match with the reference
// answer and zero otherwise; unanswered questions earn zero. The total
// is the sum of all question points regardless of what was answered.
// Pure function: same inputs always produce the same result.
func Score(questions []model.Question, answers map[uuid.UUID]model.Answer) (score, total int) {
	for i := range questions {
		q := &questions[i]
		total += q.Points

		got, ok := answers[q.ID]
		if !ok || !got.Answered() {
			continue
		}
		if got.Equal(q.Correct) {
			score += q.Points
		}
	}
	return score, total
}
