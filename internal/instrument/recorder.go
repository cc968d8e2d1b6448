package instrument

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"campaigniq-backend/internal/store"
)

// Recorder buffers events in memory and flushes them to the _events table
// in a batch insert, on a timer or when the buffer fills.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	db      *sql.DB
	dialect store.Dialect

	sampling float64
	maxSize  int
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// NewRecorder starts a Recorder flushing every flushInterval or when
// maxSize events are buffered. sampling is the fraction of events kept,
// clamped to [0, 1].
func NewRecorder(db *sql.DB, dialect store.Dialect, sampling float64, maxSize int, flushInterval time.Duration) *Recorder {
	if sampling < 0 {
		sampling = 0
	}
	if sampling > 1 {
		sampling = 1
	}
	if maxSize <= 0 {
		maxSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	r := &Recorder{
		db:       db,
		dialect:  dialect,
		sampling: sampling,
		maxSize:  maxSize,
		done:     make(chan struct{}),
	}
	r.ticker = time.NewTicker(flushInterval)
	go r.run()
	return r
}

func (r *Recorder) run() {
	for {
		select {
		case <-r.done:
			return
		case <-r.ticker.C:
			r.Flush()
		}
	}
}

// Record buffers one event, subject to sampling. A full buffer triggers an
// asynchronous flush; the caller never waits on the database.
func (r *Recorder) Record(e Event) {
	if r.sampling < 1 && rand.Float64() >= r.sampling {
		return
	}
	if e.ID == "" {
		e.ID = newEventID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.events = append(r.events, e)
	full := len(r.events) >= r.maxSize
	r.mu.Unlock()
	if full {
		go r.Flush()
	}
}

// Flush writes all buffered events in a single batch insert. Failures are
// logged and the batch is dropped; instrumentation never fails a request.
func (r *Recorder) Flush() {
	r.mu.Lock()
	if len(r.events) == 0 {
		r.mu.Unlock()
		return
	}
	batch := r.events
	r.events = nil
	r.mu.Unlock()

	pb := r.dialect.NewParamBuilder()
	tuples := make([]string, 0, len(batch))
	for _, e := range batch {
		tuples = append(tuples, fmt.Sprintf("(%s,%s,%s,%s,%s,%s,%s,%s)",
			pb.Add(e.ID), pb.Add(e.Source), pb.Add(e.Action), pb.Add(e.Dataset),
			pb.Add(e.RowCount), pb.Add(e.DurationMs), pb.Add(e.Status),
			pb.Add(e.CreatedAt.Format(time.RFC3339Nano))))
	}
	query := "INSERT INTO _events (id, source, action, dataset, row_count, duration_ms, status, created_at) VALUES " +
		strings.Join(tuples, ",")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r.db.ExecContext(ctx, query, pb.Params()...); err != nil {
		log.Printf("ERROR: event flush dropped %d events: %v", len(batch), err)
	}
}

// Stop halts the background ticker and flushes remaining events.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.ticker.Stop()
		close(r.done)
		r.Flush()
	})
}

// CleanupOldEvents deletes events older than retentionDays. Run at startup;
// the event table is diagnostics, not ledger.
func CleanupOldEvents(ctx context.Context, db *sql.DB, dialect store.Dialect, retentionDays int) {
	pb := dialect.NewParamBuilder()
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	query := fmt.Sprintf("DELETE FROM _events WHERE created_at < %s",
		pb.Add(cutoff.Format(time.RFC3339Nano)))
	result, err := db.ExecContext(ctx, query, pb.Params()...)
	if err != nil {
		log.Printf("ERROR: event cleanup: %v", err)
		return
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Printf("Event cleanup: deleted %d old events", n)
	}
}
