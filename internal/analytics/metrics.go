package analytics

import (
	"campaigniq-backend/internal/catalog"
	"campaigniq-backend/internal/dataset"
)

// Engine computes campaign metrics over in-memory tables. It holds only the
// benchmark configuration; every call receives the tables and filter set
// explicitly, so concurrent reads over the same tables are safe.
type Engine struct {
	BenchmarkROI  float64 // percent, e.g. 200 means 200%
	BenchmarkROAS float64 // ratio
}

func NewEngine(benchmarkROI, benchmarkROAS float64) *Engine {
	if benchmarkROI <= 0 {
		benchmarkROI = 200
	}
	if benchmarkROAS <= 0 {
		benchmarkROAS = 4.0
	}
	return &Engine{BenchmarkROI: benchmarkROI, BenchmarkROAS: benchmarkROAS}
}

// InfluencerMetrics is the per-influencer performance row. ROI and ROAS are
// ratios and nil whenever spend is zero; they are never zero-filled or
// infinite. Benchmark flags are evaluated independently of each other.
type InfluencerMetrics struct {
	InfluencerID  string `json:"influencer_id"`
	Name          string `json:"name"`
	Platform      string `json:"platform"`
	Category      string `json:"category"`
	FollowerCount int    `json:"follower_count"`

	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
	Spend   float64 `json:"spend"`

	ROI          *float64 `json:"roi"`
	ROAS         *float64 `json:"roas"`
	CostPerOrder *float64 `json:"cost_per_order"`

	AboveROIBenchmark  bool `json:"above_roi_benchmark"`
	AboveROASBenchmark bool `json:"above_roas_benchmark"`

	Reach              int      `json:"reach"`
	Likes              int      `json:"likes"`
	Comments           int      `json:"comments"`
	EngagementRate     *float64 `json:"engagement_rate"`
	RevenuePerFollower *float64 `json:"revenue_per_follower"`
}

// Meta counts rows excluded from influencer-attributed metrics because
// their influencer_id had no profile.
type Meta struct {
	UnjoinableTracking int `json:"unjoinable_tracking"`
	UnjoinablePayouts  int `json:"unjoinable_payouts"`
}

// Totals is the dashboard-level aggregate over all joined rows.
type Totals struct {
	Influencers   int      `json:"influencers"`
	Revenue       float64  `json:"revenue"`
	Orders        int      `json:"orders"`
	Spend         float64  `json:"spend"`
	ROI           *float64 `json:"roi"`
	ROAS          *float64 `json:"roas"`
	AvgOrderValue *float64 `json:"avg_order_value"`

	AboveROIBenchmark  bool `json:"above_roi_benchmark"`
	AboveROASBenchmark bool `json:"above_roas_benchmark"`

	Meta Meta `json:"meta"`
}

// Influencers computes one metrics row per filtered influencer, left-outer:
// an influencer with no tracking or payout activity still appears with zero
// sums and nil ratios.
func (e *Engine) Influencers(t *dataset.Tables, f FilterSet) ([]InfluencerMetrics, Meta, error) {
	ft, err := Apply(t, f)
	if err != nil {
		return nil, Meta{}, err
	}
	return e.compute(ft)
}

func (e *Engine) compute(ft *dataset.Tables) ([]InfluencerMetrics, Meta, error) {
	known := make(map[string]bool, len(ft.Influencers))
	for _, inf := range ft.Influencers {
		known[inf.ID] = true
	}

	var meta Meta
	revenue := make(map[string]float64)
	orders := make(map[string]int)
	for _, tr := range ft.Tracking {
		if !known[tr.InfluencerID] {
			meta.UnjoinableTracking++
			continue
		}
		revenue[tr.InfluencerID] += tr.Revenue
		orders[tr.InfluencerID] += tr.Orders
	}

	spend := make(map[string]float64)
	for _, p := range ft.Payouts {
		if !known[p.InfluencerID] {
			meta.UnjoinablePayouts++
			continue
		}
		spend[p.InfluencerID] += payoutSpend(p, orders[p.InfluencerID])
	}

	reach := make(map[string]int)
	likes := make(map[string]int)
	comments := make(map[string]int)
	for _, post := range ft.Posts {
		if !known[post.InfluencerID] {
			continue
		}
		reach[post.InfluencerID] += post.Reach
		likes[post.InfluencerID] += post.Likes
		comments[post.InfluencerID] += post.Comments
	}

	rows := make([]InfluencerMetrics, 0, len(ft.Influencers))
	for _, inf := range ft.Influencers {
		m := InfluencerMetrics{
			InfluencerID:  inf.ID,
			Name:          inf.Name,
			Platform:      inf.Platform,
			Category:      inf.Category,
			FollowerCount: inf.FollowerCount,
			Revenue:       revenue[inf.ID],
			Orders:        orders[inf.ID],
			Spend:         spend[inf.ID],
			Reach:         reach[inf.ID],
			Likes:         likes[inf.ID],
			Comments:      comments[inf.ID],
		}
		m.ROI, m.ROAS = e.ratios(m.Revenue, m.Spend)
		m.AboveROIBenchmark, m.AboveROASBenchmark = e.benchmarks(m.ROI, m.ROAS)
		if m.Orders > 0 {
			m.CostPerOrder = ptr(m.Spend / float64(m.Orders))
		}
		if m.Reach > 0 {
			m.EngagementRate = ptr(float64(m.Likes+m.Comments) / float64(m.Reach) * 100)
		}
		if m.FollowerCount > 0 {
			m.RevenuePerFollower = ptr(m.Revenue / float64(m.FollowerCount))
		}
		rows = append(rows, m)
	}
	return rows, meta, nil
}

// Totals aggregates the filtered tables into a single dashboard row. Empty
// tables yield zero sums and nil ratios, never an error.
func (e *Engine) Totals(t *dataset.Tables, f FilterSet) (Totals, error) {
	rows, meta, err := e.Influencers(t, f)
	if err != nil {
		return Totals{}, err
	}
	out := Totals{Influencers: len(rows), Meta: meta}
	for _, m := range rows {
		out.Revenue += m.Revenue
		out.Orders += m.Orders
		out.Spend += m.Spend
	}
	out.ROI, out.ROAS = e.ratios(out.Revenue, out.Spend)
	out.AboveROIBenchmark, out.AboveROASBenchmark = e.benchmarks(out.ROI, out.ROAS)
	if out.Orders > 0 {
		out.AvgOrderValue = ptr(out.Revenue / float64(out.Orders))
	}
	return out, nil
}

// payoutSpend resolves one payout row to money spent. Per-order payouts
// without a recorded order count fall back to the influencer's tracked
// orders; a supplied or derived total always wins when present.
func payoutSpend(p dataset.Payout, trackedOrders int) float64 {
	if p.TotalPayout > 0 {
		return p.TotalPayout
	}
	if p.Basis == catalog.BasisPerOrder {
		n := trackedOrders
		if p.Orders != nil {
			n = *p.Orders
		}
		return p.Rate * float64(n)
	}
	return p.TotalPayout
}

func (e *Engine) ratios(revenue, spend float64) (roi, roas *float64) {
	if spend == 0 {
		return nil, nil
	}
	return ptr((revenue - spend) / spend), ptr(revenue / spend)
}

func (e *Engine) benchmarks(roi, roas *float64) (aboveROI, aboveROAS bool) {
	if roi != nil {
		aboveROI = *roi*100 >= e.BenchmarkROI
	}
	if roas != nil {
		aboveROAS = *roas >= e.BenchmarkROAS
	}
	return aboveROI, aboveROAS
}

func ptr(v float64) *float64 { return &v }
