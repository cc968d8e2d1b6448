package analytics

import (
	"fmt"
	"sort"

	"campaigniq-backend/internal/dataset"
)

// PoorPerformer is an influencer below the ROI benchmark, annotated with
// the dominant reason the dashboard surfaces.
type PoorPerformer struct {
	InfluencerMetrics
	Reason string `json:"reason"`
}

// Insights is the combined payload behind the dashboard's overview page.
type Insights struct {
	Totals         Totals              `json:"totals"`
	TopByRevenue   []InfluencerMetrics `json:"top_by_revenue"`
	TopByROI       []InfluencerMetrics `json:"top_by_roi"`
	Platforms      []RollupRow         `json:"platforms"`
	Categories     []RollupRow         `json:"categories"`
	PoorPerformers []PoorPerformer     `json:"poor_performers"`
	Trends         Trends              `json:"trends"`
}

// TopPerformers returns the influencers with recorded revenue, highest
// first. Zero-activity influencers are omitted; the left-outer view is
// Influencers.
func (e *Engine) TopPerformers(t *dataset.Tables, f FilterSet, limit int) ([]InfluencerMetrics, error) {
	metrics, _, err := e.Influencers(t, f)
	if err != nil {
		return nil, err
	}
	var rows []InfluencerMetrics
	for _, m := range metrics {
		if m.Revenue > 0 {
			rows = append(rows, m)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	return head(rows, limit), nil
}

// TopByROI ranks influencers with a computable ROI, highest first.
func (e *Engine) TopByROI(t *dataset.Tables, f FilterSet, limit int) ([]InfluencerMetrics, error) {
	metrics, _, err := e.Influencers(t, f)
	if err != nil {
		return nil, err
	}
	var rows []InfluencerMetrics
	for _, m := range metrics {
		if m.ROI != nil {
			rows = append(rows, m)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return *rows[i].ROI > *rows[j].ROI })
	return head(rows, limit), nil
}

// PoorPerformers lists influencers whose ROI is computable and below the
// benchmark, worst first. Influencers with zero spend are skipped: with no
// money out there is nothing to under-perform against.
func (e *Engine) PoorPerformers(t *dataset.Tables, f FilterSet, limit int) ([]PoorPerformer, error) {
	metrics, _, err := e.Influencers(t, f)
	if err != nil {
		return nil, err
	}
	var rows []PoorPerformer
	for _, m := range metrics {
		if m.ROI == nil || *m.ROI*100 >= e.BenchmarkROI {
			continue
		}
		rows = append(rows, PoorPerformer{InfluencerMetrics: m, Reason: poorReason(m)})
	}
	sort.SliceStable(rows, func(i, j int) bool { return *rows[i].ROI < *rows[j].ROI })
	return head(rows, limit), nil
}

func poorReason(m InfluencerMetrics) string {
	switch {
	case m.Revenue < 1000:
		return "low revenue generation"
	case m.Orders < 10:
		return "low order conversion"
	case *m.ROI*100 < 50:
		return fmt.Sprintf("very low ROI (%.0f%%)", *m.ROI*100)
	default:
		return "below benchmark ROI"
	}
}

// Insights assembles the overview payload in one call.
func (e *Engine) Insights(t *dataset.Tables, f FilterSet, limit int) (Insights, error) {
	totals, err := e.Totals(t, f)
	if err != nil {
		return Insights{}, err
	}
	topRevenue, err := e.TopPerformers(t, f, limit)
	if err != nil {
		return Insights{}, err
	}
	topROI, err := e.TopByROI(t, f, limit)
	if err != nil {
		return Insights{}, err
	}
	platforms, err := e.Rollup(t, f, LevelPlatform)
	if err != nil {
		return Insights{}, err
	}
	categories, err := e.Rollup(t, f, LevelCategory)
	if err != nil {
		return Insights{}, err
	}
	poor, err := e.PoorPerformers(t, f, limit)
	if err != nil {
		return Insights{}, err
	}
	trends, err := e.Trends(t, f)
	if err != nil {
		return Insights{}, err
	}
	return Insights{
		Totals:         totals,
		TopByRevenue:   topRevenue,
		TopByROI:       topROI,
		Platforms:      platforms,
		Categories:     categories,
		PoorPerformers: poor,
		Trends:         trends,
	}, nil
}

func head[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
