package store

import (
	"context"
	"fmt"
	"strings"
)

// Bootstrap creates the four dataset tables from the registry schemas plus
// the _events instrumentation table. Idempotent.
func (s *Store) Bootstrap(ctx context.Context) error {
	for _, ds := range s.Registry.All() {
		var cols []string
		for _, f := range ds.Fields {
			col := fmt.Sprintf("%s %s", f.Name, s.Dialect.ColumnType(f.Type, f.Precision))
			if f.Required {
				col += " NOT NULL"
			}
			cols = append(cols, col)
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
			ds.Table, strings.Join(cols, ",\n    "))
		if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", ds.Table, err)
		}

		idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)",
			ds.Table, ds.Fields[0].Name, ds.Table, ds.Fields[0].Name)
		if _, err := s.DB.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index on %s: %w", ds.Table, err)
		}
	}

	eventsDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS _events (
    id          TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    action      TEXT NOT NULL,
    dataset     TEXT,
    row_count   INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'ok',
    created_at  %s DEFAULT %s
)`, s.Dialect.ColumnType("timestamp", 0), s.Dialect.NowExpr())
	if _, err := s.DB.ExecContext(ctx, eventsDDL); err != nil {
		return fmt.Errorf("create _events: %w", err)
	}

	return nil
}
