package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalhub/evalhub-backend/internal/model"
)

func TestCollectorStampsElapsedMilliseconds(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cur := base
	col := NewCollector(func() time.Time { return cur })

	cur = base.Add(1500 * time.Millisecond)
	ev := col.Record(model.EventTabSwitch, model.SeverityMedium, "")
	assert.Equal(t, int64(1500), ev.ElapsedMs)

	cur = base.Add(4 * time.Second)
	ev = col.Record(model.EventPasteContent, model.SeverityLow, "clipboard paste")
	assert.Equal(t, int64(4000), ev.ElapsedMs)
}

func TestCollectorTimestampsNeverDecrease(t *testing.T) {
	base := time.Now()
	cur := base
	col := NewCollector(func() time.Time { return cur })

	cur = base.Add(5 * time.Second)
	col.Record(model.EventTabSwitch, model.SeverityMedium, "")

	// Clock jumps backwards; the stamp must clamp, not regress.
	cur = base.Add(2 * time.Second)
	col.Record(model.EventNoiseDetection, model.SeverityLow, "")

	cur = base.Add(8 * time.Second)
	col.Record(model.EventFaceDetection, model.SeverityHigh, "")

	events := col.Events()
	require.Len(t, events, 3)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].ElapsedMs, events[i-1].ElapsedMs)
	}
	assert.Equal(t, int64(5000), events[1].ElapsedMs)
}

func TestCollectorIsAppendOnly(t *testing.T) {
	col := NewCollector(nil)
	col.Record(model.EventTabSwitch, model.SeverityMedium, "")
	col.Record(model.EventTabSwitch, model.SeverityMedium, "")
	assert.Equal(t, 2, col.Len())

	// Mutating the returned slice must not affect the collector.
	events := col.Events()
	events[0].Type = model.EventFaceDetection
	assert.Equal(t, model.EventTabSwitch, col.Events()[0].Type)
}
