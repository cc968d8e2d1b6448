package store

import (
	"context"
	"fmt"
	"strings"

	"campaigniq-backend/internal/catalog"
	"campaigniq-backend/internal/dataset"
)

// insertChunkRows bounds the number of rows per multi-VALUES insert so the
// parameter count stays well under both drivers' limits.
const insertChunkRows = 200

// Load reads every stored row of the kind as raw column maps. Dates come
// back as their stored representation; the validator re-types them on the
// way into the session.
func (s *Store) Load(ctx context.Context, kind catalog.Kind) ([]dataset.RawRow, error) {
	ds := s.Registry.Dataset(kind)
	if ds == nil {
		return nil, fmt.Errorf("unknown dataset kind %q", kind)
	}

	sqlStr := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(ds.FieldNames(), ", "), ds.Table)
	rows, err := QueryRows(ctx, s.DB, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	out := make([]dataset.RawRow, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

// Replace overwrites the stored table for the kind with the session table,
// atomically: DELETE plus batched INSERTs inside one transaction.
func (s *Store) Replace(ctx context.Context, kind catalog.Kind, tables *dataset.Tables) error {
	ds := s.Registry.Dataset(kind)
	if ds == nil {
		return fmt.Errorf("unknown dataset kind %q", kind)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := Exec(ctx, tx, fmt.Sprintf("DELETE FROM %s", ds.Table)); err != nil {
		return fmt.Errorf("clear %s: %w", ds.Table, err)
	}

	values := rowValues(kind, tables)
	columns := strings.Join(ds.FieldNames(), ", ")
	for start := 0; start < len(values); start += insertChunkRows {
		end := start + insertChunkRows
		if end > len(values) {
			end = len(values)
		}

		pb := s.Dialect.NewParamBuilder()
		var tuples []string
		for _, row := range values[start:end] {
			placeholders := make([]string, len(row))
			for i, v := range row {
				placeholders[i] = pb.Add(v)
			}
			tuples = append(tuples, "("+strings.Join(placeholders, ", ")+")")
		}

		sqlStr := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			ds.Table, columns, strings.Join(tuples, ", "))
		if _, err := Exec(ctx, tx, sqlStr, pb.Params()...); err != nil {
			return fmt.Errorf("insert into %s: %w", ds.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// rowValues flattens the kind's typed rows into column-ordered value slices
// matching the registry field order.
func rowValues(kind catalog.Kind, t *dataset.Tables) [][]any {
	var out [][]any
	switch kind {
	case catalog.KindInfluencers:
		for _, r := range t.Influencers {
			out = append(out, []any{r.ID, r.Name, r.Category, r.Gender, r.FollowerCount, r.Platform})
		}
	case catalog.KindPosts:
		for _, r := range t.Posts {
			out = append(out, []any{r.InfluencerID, r.Platform, r.Date.Format(dataset.DateLayout),
				r.URL, r.Caption, r.Reach, r.Likes, r.Comments})
		}
	case catalog.KindTracking:
		for _, r := range t.Tracking {
			out = append(out, []any{r.InfluencerID, r.Campaign, r.Product, r.Brand,
				r.Date.Format(dataset.DateLayout), r.Orders, r.Revenue})
		}
	case catalog.KindPayouts:
		for _, r := range t.Payouts {
			var orders any
			if r.Orders != nil {
				orders = *r.Orders
			}
			out = append(out, []any{r.InfluencerID, r.Basis, r.Rate, orders, r.TotalPayout})
		}
	}
	return out
}
