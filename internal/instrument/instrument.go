package instrument

import (
	"time"

	"github.com/google/uuid"
)

// Event is one row in the _events table: a completed dataset or analytics
// operation with its duration and outcome.
type Event struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"` // api, session, export
	Action     string    `json:"action"` // e.g. dataset.upload, analytics.rollup
	Dataset    string    `json:"dataset,omitempty"`
	RowCount   int       `json:"row_count"`
	DurationMs int64     `json:"duration_ms"`
	Status     string    `json:"status"` // ok or error
	CreatedAt  time.Time `json:"created_at"`
}

// Instrumenter records operation events. Implementations must be safe for
// concurrent use and must never block the caller on storage.
type Instrumenter interface {
	Record(e Event)
	Flush()
	Stop()
}

// Timer measures one operation and records it on Done.
type Timer struct {
	inst  Instrumenter
	event Event
	start time.Time
}

// Start begins timing an operation attributed to source/action.
func Start(inst Instrumenter, source, action string) *Timer {
	return &Timer{
		inst:  inst,
		event: Event{Source: source, Action: action},
		start: time.Now(),
	}
}

func (t *Timer) SetDataset(dataset string) *Timer {
	t.event.Dataset = dataset
	return t
}

func (t *Timer) SetRowCount(n int) *Timer {
	t.event.RowCount = n
	return t
}

// Done records the event with the elapsed time. status is "ok" or "error".
func (t *Timer) Done(status string) {
	t.event.DurationMs = time.Since(t.start).Milliseconds()
	t.event.Status = status
	t.inst.Record(t.event)
}

func newEventID() string {
	return uuid.New().String()
}

// Noop discards all events. Used when instrumentation is disabled or when
// the event is sampled out.
type Noop struct{}

func (Noop) Record(Event) {}
func (Noop) Flush()       {}
func (Noop) Stop()        {}
