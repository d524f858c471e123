package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// AnswerStore maps question IDs to the examinee's current answer.
// Writes replace unconditionally; the store accepts any answer shape for
// any question id, validation belongs to scoring.
type AnswerStore struct {
	mu      sync.RWMutex
	answers map[uuid.UUID]model.Answer
}

// NewAnswerStore creates an empty store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(map[uuid.UUID]model.Answer)}
}

// Set records the answer for a question, replacing any previous value.
func (s *AnswerStore) Set(questionID uuid.UUID, a model.Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[questionID] = a
}

// Get returns the stored answer, or the absent marker if none was set.
func (s *AnswerStore) Get(questionID uuid.UUID) model.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answers[questionID]
}

// Snapshot returns a copy of the full answer map.
func (s *AnswerStore) Snapshot() map[uuid.UUID]model.Answer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]model.Answer, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Len returns the number of answered questions.
func (s *AnswerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.answers)
}
