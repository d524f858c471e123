package session

import (
	"math/rand"
	"sync"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// EventSource produces ambient proctoring signals for a session. Poll
// returns the next detected event or nil when nothing was observed.
// Implementations stand in for real camera and microphone pipelines.
type EventSource interface {
	Poll() *model.ProctoringEvent
}

// SimulatedSource emulates face and noise detection with fixed
// probabilities per poll: 5% multiple-faces, a further 10% background
// noise, otherwise nothing.
type SimulatedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedSource creates a source seeded for reproducible draws.
func NewSimulatedSource(seed int64) *SimulatedSource {
	return &SimulatedSource{rng: rand.New(rand.NewSource(seed))}
}

// Poll draws once and returns a detection or nil.
func (s *SimulatedSource) Poll() *model.ProctoringEvent {
	s.mu.Lock()
	draw := s.rng.Float64()
	s.mu.Unlock()

	switch {
	case draw < 0.05:
		return &model.ProctoringEvent{
			Type:     model.EventFaceDetection,
			Severity: model.SeverityHigh,
			Detail:   "Multiple faces detected",
		}
	case draw < 0.15:
		return &model.ProctoringEvent{
			Type:     model.EventNoiseDetection,
			Severity: model.SeverityLow,
			Detail:   "Loud background noise detected",
		}
	default:
		return nil
	}
}
