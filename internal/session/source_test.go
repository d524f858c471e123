package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evalhub/evalhub-backend/internal/model"
)

func TestSimulatedSourceDistribution(t *testing.T) {
	src := NewSimulatedSource(42)

	const draws = 20000
	var faces, noises, quiet int
	for i := 0; i < draws; i++ {
		ev := src.Poll()
		switch {
		case ev == nil:
			quiet++
		case ev.Type == model.EventFaceDetection:
			assert.Equal(t, model.SeverityHigh, ev.Severity)
			assert.Equal(t, "Multiple faces detected", ev.Detail)
			faces++
		case ev.Type == model.EventNoiseDetection:
			assert.Equal(t, model.SeverityLow, ev.Severity)
			assert.Equal(t, "Loud background noise detected", ev.Detail)
			noises++
		default:
			t.Fatalf("unexpected event type %s", ev.Type)
		}
	}

	assert.InDelta(t, 0.05, float64(faces)/draws, 0.01)
	assert.InDelta(t, 0.10, float64(noises)/draws, 0.01)
	assert.InDelta(t, 0.85, float64(quiet)/draws, 0.02)
}

func TestSimulatedSourceIsDeterministicPerSeed(t *testing.T) {
	a := NewSimulatedSource(7)
	b := NewSimulatedSource(7)

	for i := 0; i < 100; i++ {
		ea, eb := a.Poll(), b.Poll()
		if ea == nil {
			assert.Nil(t, eb)
			continue
		}
		assert.Equal(t, ea.Type, eb.Type)
	}
}
