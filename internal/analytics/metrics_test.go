package analytics

import (
	"math"
	"testing"
	"time"

	"campaigniq-backend/internal/dataset"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dataset.DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func intp(v int) *int { return &v }

func approx(got *float64, want float64) bool {
	return got != nil && math.Abs(*got-want) < 1e-9
}

// fixtureTables builds a small cross-platform dataset:
//
//	ALPHA  10000 revenue / 40 orders, 2000 spend  -> ROI 4.0, ROAS 5.0
//	BETA    1000 revenue / 10 orders,  800 spend  -> ROI 0.25, ROAS 1.25
//	GAMMA   3000 revenue / 30 orders, no payout   -> nil ROI and ROAS
//
// plus one tracking row and one payout row pointing at influencers that do
// not exist.
func fixtureTables(t *testing.T) *dataset.Tables {
	return &dataset.Tables{
		Influencers: []dataset.Influencer{
			{ID: "ALPHA", Name: "Alpha", Category: "Fashion", FollowerCount: 50_000, Platform: "Instagram"},
			{ID: "BETA", Name: "Beta", Category: "Tech", FollowerCount: 2_000_000, Platform: "YouTube"},
			{ID: "GAMMA", Name: "Gamma", Category: "Fashion", FollowerCount: 5_000, Platform: "TikTok"},
		},
		Posts: []dataset.Post{
			{InfluencerID: "ALPHA", Platform: "Instagram", Date: day(t, "2024-06-01"), URL: "https://ig/a1", Reach: 600, Likes: 50, Comments: 12},
			{InfluencerID: "ALPHA", Platform: "Instagram", Date: day(t, "2024-06-05"), URL: "https://ig/a2", Reach: 400, Likes: 30, Comments: 8},
			{InfluencerID: "BETA", Platform: "YouTube", Date: day(t, "2024-06-02"), URL: "https://yt/b1", Reach: 5000, Likes: 100, Comments: 25},
		},
		Tracking: []dataset.TrackingRecord{
			{InfluencerID: "ALPHA", Campaign: "Summer Launch", Product: "P1", Brand: "Acme", Date: day(t, "2024-06-02"), Orders: 40, Revenue: 10_000},
			{InfluencerID: "BETA", Campaign: "Summer Launch", Product: "P2", Brand: "Zen", Date: day(t, "2024-06-03"), Orders: 5, Revenue: 500},
			{InfluencerID: "BETA", Campaign: "Winter Promo", Product: "P3", Brand: "Acme", Date: day(t, "2024-06-10"), Orders: 5, Revenue: 500},
			{InfluencerID: "GAMMA", Campaign: "Summer Launch", Product: "P1", Brand: "Acme", Date: day(t, "2024-06-04"), Orders: 30, Revenue: 3_000},
			{InfluencerID: "GHOST", Campaign: "Summer Launch", Product: "P1", Brand: "Acme", Date: day(t, "2024-06-04"), Orders: 1, Revenue: 100},
		},
		Payouts: []dataset.Payout{
			{InfluencerID: "ALPHA", Basis: "per-order", Rate: 50, Orders: intp(40), TotalPayout: 2000},
			{InfluencerID: "BETA", Basis: "per-post", Rate: 800, TotalPayout: 800},
			{InfluencerID: "GHOST2", Basis: "per-post", Rate: 100, TotalPayout: 100},
		},
	}
}

func metricsByID(rows []InfluencerMetrics) map[string]InfluencerMetrics {
	out := make(map[string]InfluencerMetrics, len(rows))
	for _, m := range rows {
		out[m.InfluencerID] = m
	}
	return out
}

func TestInfluencerMetricsWorkedExample(t *testing.T) {
	e := NewEngine(200, 4.0)
	rows, _, err := e.Influencers(fixtureTables(t), FilterSet{})
	if err != nil {
		t.Fatalf("Influencers: %v", err)
	}
	m := metricsByID(rows)["ALPHA"]

	if m.Revenue != 10_000 || m.Spend != 2000 || m.Orders != 40 {
		t.Fatalf("ALPHA sums wrong: %+v", m)
	}
	if !approx(m.ROI, 4.0) {
		t.Fatalf("ALPHA ROI = %v, want 4.0", m.ROI)
	}
	if !approx(m.ROAS, 5.0) {
		t.Fatalf("ALPHA ROAS = %v, want 5.0", m.ROAS)
	}
	if !m.AboveROIBenchmark || !m.AboveROASBenchmark {
		t.Fatalf("ALPHA should clear both benchmarks: %+v", m)
	}
	if !approx(m.CostPerOrder, 50) {
		t.Fatalf("ALPHA cost per order = %v, want 50", m.CostPerOrder)
	}
	// 100 interactions over 1000 reach.
	if !approx(m.EngagementRate, 10) {
		t.Fatalf("ALPHA engagement = %v, want 10", m.EngagementRate)
	}
	if !approx(m.RevenuePerFollower, 0.2) {
		t.Fatalf("ALPHA revenue per follower = %v, want 0.2", m.RevenuePerFollower)
	}
}

func TestZeroSpendYieldsNilRatios(t *testing.T) {
	e := NewEngine(200, 4.0)
	rows, _, err := e.Influencers(fixtureTables(t), FilterSet{})
	if err != nil {
		t.Fatalf("Influencers: %v", err)
	}
	m, ok := metricsByID(rows)["GAMMA"]
	if !ok {
		t.Fatal("GAMMA missing from metrics")
	}
	if m.Revenue != 3000 || m.Spend != 0 {
		t.Fatalf("GAMMA sums wrong: %+v", m)
	}
	if m.ROI != nil || m.ROAS != nil {
		t.Fatalf("GAMMA ratios must be nil on zero spend, got roi=%v roas=%v", m.ROI, m.ROAS)
	}
	if m.AboveROIBenchmark || m.AboveROASBenchmark {
		t.Fatalf("nil ratios must not clear benchmarks: %+v", m)
	}
}

func TestBenchmarksEvaluateIndependently(t *testing.T) {
	// 3200 revenue on 1000 spend: ROI 220% clears the 200% benchmark,
	// ROAS 3.2 misses the 4.0 benchmark.
	tables := &dataset.Tables{
		Influencers: []dataset.Influencer{{ID: "X", Name: "X", Category: "Tech", FollowerCount: 100, Platform: "Twitter"}},
		Tracking: []dataset.TrackingRecord{
			{InfluencerID: "X", Campaign: "C", Product: "P", Brand: "B", Date: day(t, "2024-01-01"), Orders: 10, Revenue: 3200},
		},
		Payouts: []dataset.Payout{{InfluencerID: "X", Basis: "per-post", Rate: 1000, TotalPayout: 1000}},
	}
	e := NewEngine(200, 4.0)
	rows, _, err := e.Influencers(tables, FilterSet{})
	if err != nil {
		t.Fatalf("Influencers: %v", err)
	}
	m := rows[0]
	if !m.AboveROIBenchmark {
		t.Fatalf("ROI %v should clear 200%%", *m.ROI)
	}
	if m.AboveROASBenchmark {
		t.Fatalf("ROAS %v should miss 4.0", *m.ROAS)
	}
}

func TestPerOrderPayoutFallsBackToTrackedOrders(t *testing.T) {
	tables := &dataset.Tables{
		Influencers: []dataset.Influencer{{ID: "X", Name: "X", Category: "Tech", FollowerCount: 100, Platform: "Twitter"}},
		Tracking: []dataset.TrackingRecord{
			{InfluencerID: "X", Campaign: "C", Product: "P", Brand: "B", Date: day(t, "2024-01-01"), Orders: 30, Revenue: 6000},
		},
		// No recorded order count and no total: rate * tracked orders.
		Payouts: []dataset.Payout{{InfluencerID: "X", Basis: "per-order", Rate: 40}},
	}
	e := NewEngine(200, 4.0)
	rows, _, err := e.Influencers(tables, FilterSet{})
	if err != nil {
		t.Fatalf("Influencers: %v", err)
	}
	if got := rows[0].Spend; got != 1200 {
		t.Fatalf("spend = %v, want 1200 (40 * 30 tracked orders)", got)
	}
}

func TestUnjoinableRowsExcludedAndCounted(t *testing.T) {
	e := NewEngine(200, 4.0)
	rows, meta, err := e.Influencers(fixtureTables(t), FilterSet{})
	if err != nil {
		t.Fatalf("Influencers: %v", err)
	}
	if meta.UnjoinableTracking != 1 || meta.UnjoinablePayouts != 1 {
		t.Fatalf("meta = %+v, want 1 unjoinable tracking and 1 unjoinable payout", meta)
	}
	for _, m := range rows {
		if m.InfluencerID == "GHOST" || m.InfluencerID == "GHOST2" {
			t.Fatalf("dangling id leaked into metrics: %+v", m)
		}
	}
}

func TestTotalsOverEmptyTables(t *testing.T) {
	e := NewEngine(200, 4.0)
	got, err := e.Totals(dataset.NewTables(), FilterSet{})
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if got.Influencers != 0 || got.Revenue != 0 || got.Spend != 0 || got.Orders != 0 {
		t.Fatalf("expected zero sums, got %+v", got)
	}
	if got.ROI != nil || got.ROAS != nil || got.AvgOrderValue != nil {
		t.Fatalf("expected nil ratios on empty tables, got %+v", got)
	}
}

func TestTotalsMatchInfluencerSums(t *testing.T) {
	e := NewEngine(200, 4.0)
	tables := fixtureTables(t)
	totals, err := e.Totals(tables, FilterSet{})
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	rows, _, err := e.Influencers(tables, FilterSet{})
	if err != nil {
		t.Fatalf("Influencers: %v", err)
	}
	var revenue, spend float64
	var orders int
	for _, m := range rows {
		revenue += m.Revenue
		spend += m.Spend
		orders += m.Orders
	}
	if totals.Revenue != revenue || totals.Spend != spend || totals.Orders != orders {
		t.Fatalf("totals %+v disagree with influencer sums (%v, %v, %v)", totals, revenue, spend, orders)
	}
}
