package session

import (
	"sync"
	"time"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// Collector accumulates proctoring events for one session. Events are
// append-only and stamped with milliseconds elapsed since the collector
// was created; stamps never decrease.
type Collector struct {
	mu     sync.Mutex
	now    func() time.Time
	start  time.Time
	lastMs int64
	events []model.ProctoringEvent
}

// NewCollector creates a collector. The clock function is injectable for
// tests; pass nil to use time.Now.
func NewCollector(now func() time.Time) *Collector {
	if now == nil {
		now = time.Now
	}
	return &Collector{
		now:   now,
		start: now(),
	}
}

// Record appends an event stamped with the current elapsed time.
func (c *Collector) Record(typ model.EventType, severity model.Severity, detail string) model.ProctoringEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.now().Sub(c.start).Milliseconds()
	if elapsed < c.lastMs {
		elapsed = c.lastMs
	}
	c.lastMs = elapsed

	ev := model.ProctoringEvent{
		Type:      typ,
		ElapsedMs: elapsed,
		Severity:  severity,
		Detail:    detail,
	}
	c.events = append(c.events, ev)
	return ev
}

// Events returns a copy of everything recorded so far, in order.
func (c *Collector) Events() []model.ProctoringEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ProctoringEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of recorded events.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}
