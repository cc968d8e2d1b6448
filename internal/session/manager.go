package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"campaigniq-backend/internal/catalog"
	"campaigniq-backend/internal/dataset"
)

// Repository is the durable store boundary the manager syncs against.
type Repository interface {
	Load(ctx context.Context, kind catalog.Kind) ([]dataset.RawRow, error)
	Replace(ctx context.Context, kind catalog.Kind, tables *dataset.Tables) error
}

// Upload modes.
const (
	ModeMerge   = "merge"
	ModeReplace = "replace"
)

// UploadResult reports what happened to one uploaded batch.
type UploadResult struct {
	Kind     catalog.Kind       `json:"kind"`
	Total    int                `json:"total"`
	Accepted int                `json:"accepted"`
	Rejected int                `json:"rejected"`
	Merged   int                `json:"merged"` // natural-key duplicates folded in
	Errors   []dataset.RowError `json:"errors,omitempty"`
	// PersistencePending is set when the session table was updated but the
	// repository write failed; the data lives only in memory.
	PersistencePending bool `json:"persistence_pending,omitempty"`
}

// Manager owns the four session tables. It is the only component that
// mutates them; the analytics engine reads them and never writes. The HTTP
// server runs handlers on multiple goroutines, so mutations take the write
// lock and Tables hands out snapshots.
type Manager struct {
	repo        Repository // nil when storage is unavailable from the start
	reg         *catalog.Registry
	rules       *dataset.RuleSet
	defaultMode string

	mu          sync.RWMutex
	tables      *dataset.Tables
	unavailable bool
}

func NewManager(repo Repository, reg *catalog.Registry, rules *dataset.RuleSet, defaultMode string) *Manager {
	if defaultMode != ModeReplace {
		defaultMode = ModeMerge
	}
	return &Manager{
		repo:        repo,
		reg:         reg,
		rules:       rules,
		defaultMode: defaultMode,
		tables:      dataset.NewTables(),
		unavailable: repo == nil,
	}
}

// Tables returns a snapshot of the session tables. Concurrent uploads never
// mutate a snapshot a reader already holds.
func (m *Manager) Tables() *dataset.Tables {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tables.Clone()
}

// StorageUnavailable reports whether the repository could not be reached;
// the session then runs in-memory only.
func (m *Manager) StorageUnavailable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unavailable
}

// Load populates the session tables from the repository. A storage failure
// never fails the session: the affected tables stay empty and the manager
// flags itself degraded. Stored rows are passed back through the validator
// so the session only ever holds schema-clean data.
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.repo == nil {
		m.unavailable = true
		return
	}
	for _, kind := range catalog.AllKinds() {
		raws, err := m.repo.Load(ctx, kind)
		if err != nil {
			log.Printf("WARN: load %s from repository: %v (continuing with empty table)", kind, err)
			m.unavailable = true
			continue
		}
		res := dataset.Validate(m.reg.Dataset(kind), raws, nil)
		if len(res.Errors) > 0 {
			log.Printf("WARN: %d stored %s rows failed validation and were dropped", len(res.Errors), kind)
		}
		m.tables.Set(kind, res.Accepted)
	}
}

// Upload validates a raw batch, folds the accepted rows into the session
// table per the merge policy, and persists the result. Validation errors
// come back in the result for display, never as a fault; a persistence
// failure keeps the in-memory table and flags PersistencePending.
func (m *Manager) Upload(ctx context.Context, kind catalog.Kind, raws []dataset.RawRow, mode string) (UploadResult, error) {
	ds := m.reg.Dataset(kind)
	if ds == nil {
		return UploadResult{}, fmt.Errorf("unknown dataset kind %q", kind)
	}
	if mode == "" {
		mode = m.defaultMode
	}
	if mode != ModeMerge && mode != ModeReplace {
		return UploadResult{}, fmt.Errorf("unknown upload mode %q", mode)
	}

	res := dataset.Validate(ds, raws, m.rules)
	result := UploadResult{
		Kind:     kind,
		Total:    len(raws),
		Accepted: res.Accepted.Count(kind),
		Errors:   res.Errors,
	}
	result.Rejected = result.Total - result.Accepted

	if result.Accepted == 0 && result.Rejected > 0 {
		// Nothing to merge or persist; the caller renders the errors.
		return result, nil
	}

	m.mu.Lock()
	if mode == ModeReplace {
		m.tables.Set(kind, res.Accepted)
	} else {
		merged, duplicates := mergeKind(ds, m.tables, res.Accepted)
		m.tables.Set(kind, merged)
		result.Merged = duplicates
	}
	snapshot := m.tables.Clone()
	m.mu.Unlock()

	// Repository I/O happens outside the lock against the snapshot just taken.
	if err := m.persist(ctx, kind, snapshot); err != nil {
		log.Printf("WARN: persist %s: %v (session keeps in-memory copy)", kind, err)
		result.PersistencePending = true
	}

	return result, nil
}

// SaveAll persists every session table, for use after loading the sample
// fixture. Returns the kinds that could not be written.
func (m *Manager) SaveAll(ctx context.Context) []catalog.Kind {
	snapshot := m.Tables()
	var pending []catalog.Kind
	for _, kind := range catalog.AllKinds() {
		if err := m.persist(ctx, kind, snapshot); err != nil {
			log.Printf("WARN: persist %s: %v", kind, err)
			pending = append(pending, kind)
		}
	}
	return pending
}

// Clear empties all session tables and the repository copies.
func (m *Manager) Clear(ctx context.Context) []catalog.Kind {
	m.mu.Lock()
	m.tables = dataset.NewTables()
	m.mu.Unlock()
	return m.SaveAll(ctx)
}

func (m *Manager) persist(ctx context.Context, kind catalog.Kind, tables *dataset.Tables) error {
	if m.repo == nil {
		return fmt.Errorf("repository unavailable")
	}
	return m.repo.Replace(ctx, kind, tables)
}
