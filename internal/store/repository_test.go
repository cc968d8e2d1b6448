package store

import (
	"context"
	"testing"
	"time"

	"campaigniq-backend/internal/catalog"
	"campaigniq-backend/internal/config"
	"campaigniq-backend/internal/dataset"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: t.TempDir(), Name: "test"}
	s, err := New(ctx, cfg, catalog.NewRegistry())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

func TestReplaceAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	orders := 40
	tables := &dataset.Tables{
		Influencers: []dataset.Influencer{
			{ID: "I1", Name: "Asha", Category: "Fitness", Gender: "female", FollowerCount: 250000, Platform: "Instagram"},
		},
		Tracking: []dataset.TrackingRecord{
			{InfluencerID: "I1", Campaign: "Summer", Product: "Protein", Brand: "MB",
				Date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), Orders: 40, Revenue: 10000},
		},
		Payouts: []dataset.Payout{
			{InfluencerID: "I1", Basis: "per-order", Rate: 50, Orders: &orders, TotalPayout: 2000},
			{InfluencerID: "I2", Basis: "per-post", Rate: 500, TotalPayout: 1500},
		},
	}

	for _, kind := range catalog.AllKinds() {
		if err := s.Replace(ctx, kind, tables); err != nil {
			t.Fatalf("replace %s: %v", kind, err)
		}
	}

	rows, err := s.Load(ctx, catalog.KindInfluencers)
	if err != nil {
		t.Fatalf("load influencers: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "I1" {
		t.Fatalf("unexpected influencer rows: %v", rows)
	}

	// Raw loads re-validate cleanly into typed rows.
	reg := s.Registry
	res := dataset.Validate(reg.Dataset(catalog.KindTracking), mustLoad(t, s, catalog.KindTracking), nil)
	if len(res.Errors) != 0 {
		t.Fatalf("stored tracking rows failed validation: %v", res.Errors)
	}
	if res.Accepted.Tracking[0].Revenue != 10000 {
		t.Fatalf("revenue round trip: %+v", res.Accepted.Tracking[0])
	}

	res = dataset.Validate(reg.Dataset(catalog.KindPayouts), mustLoad(t, s, catalog.KindPayouts), nil)
	if len(res.Errors) != 0 {
		t.Fatalf("stored payout rows failed validation: %v", res.Errors)
	}
	if res.Accepted.Payouts[1].Orders != nil {
		t.Fatalf("NULL orders must stay nil: %+v", res.Accepted.Payouts[1])
	}
}

func TestReplaceOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &dataset.Tables{Influencers: []dataset.Influencer{
		{ID: "I1", Name: "A", Category: "c", Gender: "g", FollowerCount: 1, Platform: "Instagram"},
		{ID: "I2", Name: "B", Category: "c", Gender: "g", FollowerCount: 2, Platform: "YouTube"},
	}}
	if err := s.Replace(ctx, catalog.KindInfluencers, first); err != nil {
		t.Fatalf("replace: %v", err)
	}

	second := &dataset.Tables{Influencers: []dataset.Influencer{
		{ID: "I3", Name: "C", Category: "c", Gender: "g", FollowerCount: 3, Platform: "TikTok"},
	}}
	if err := s.Replace(ctx, catalog.KindInfluencers, second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	rows, err := s.Load(ctx, catalog.KindInfluencers)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "I3" {
		t.Fatalf("replace must overwrite, got %v", rows)
	}
}

func TestDialectColumnTypes(t *testing.T) {
	pg := &PostgresDialect{}
	if got := pg.ColumnType("decimal", 2); got != "NUMERIC(18,2)" {
		t.Fatalf("pg decimal = %s", got)
	}
	if got := pg.ColumnType("date", 0); got != "DATE" {
		t.Fatalf("pg date = %s", got)
	}

	lite := &SQLiteDialect{}
	if got := lite.ColumnType("decimal", 2); got != "REAL" {
		t.Fatalf("sqlite decimal = %s", got)
	}

	pb := pg.NewParamBuilder()
	if ph := pb.Add("x"); ph != "$1" {
		t.Fatalf("pg placeholder = %s", ph)
	}
	pb = lite.NewParamBuilder()
	if ph := pb.Add("x"); ph != "?1" {
		t.Fatalf("sqlite placeholder = %s", ph)
	}
}

func mustLoad(t *testing.T, s *Store, kind catalog.Kind) []dataset.RawRow {
	t.Helper()
	rows, err := s.Load(context.Background(), kind)
	if err != nil {
		t.Fatalf("load %s: %v", kind, err)
	}
	return rows
}
