package analytics

import (
	"fmt"
	"sort"
	"strings"

	"campaigniq-backend/internal/dataset"
)

// Level selects the grouping dimension of a rollup.
type Level string

const (
	LevelInfluencer Level = "influencer"
	LevelCampaign   Level = "campaign"
	LevelPlatform   Level = "platform"
	LevelBrand      Level = "brand"
	LevelCategory   Level = "category"
)

var allLevels = []Level{LevelInfluencer, LevelCampaign, LevelPlatform, LevelBrand, LevelCategory}

// ParseLevel resolves a level name case-insensitively.
func ParseLevel(s string) (Level, error) {
	for _, l := range allLevels {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown rollup level %q", s)
}

// RollupRow is one group of a rollup. Ratio fields follow the same null
// semantics as InfluencerMetrics: nil when the group's spend is zero.
type RollupRow struct {
	Key          string   `json:"key"`
	Influencers  int      `json:"influencers"`
	Revenue      float64  `json:"revenue"`
	Orders       int      `json:"orders"`
	Spend        float64  `json:"spend"`
	ROI          *float64 `json:"roi"`
	ROAS         *float64 `json:"roas"`
	CostPerOrder *float64 `json:"cost_per_order"`

	AboveROIBenchmark  bool `json:"above_roi_benchmark"`
	AboveROASBenchmark bool `json:"above_roas_benchmark"`
}

// Rollup aggregates the filtered tables at the given level. All levels are
// derived from the same per-influencer metrics, so sums agree across levels
// that partition the influencer set (influencer, platform, category). The
// campaign and brand levels group individual tracking rows; an influencer's
// spend is attributed to those groups in proportion to the revenue each
// group earned, since payouts carry no campaign dimension.
func (e *Engine) Rollup(t *dataset.Tables, f FilterSet, level Level) ([]RollupRow, error) {
	metrics, _, err := e.Influencers(t, f)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*RollupRow)
	members := make(map[string]map[string]bool)
	add := func(key, influencerID string, revenue float64, orders int, spend float64) {
		g, ok := groups[key]
		if !ok {
			g = &RollupRow{Key: key}
			groups[key] = g
			members[key] = make(map[string]bool)
		}
		g.Revenue += revenue
		g.Orders += orders
		g.Spend += spend
		members[key][influencerID] = true
	}

	switch level {
	case LevelInfluencer, LevelPlatform, LevelCategory:
		for _, m := range metrics {
			add(influencerKey(m, level), m.InfluencerID, m.Revenue, m.Orders, m.Spend)
		}

	case LevelCampaign, LevelBrand:
		byID := make(map[string]InfluencerMetrics, len(metrics))
		for _, m := range metrics {
			byID[m.InfluencerID] = m
		}
		ft, err := Apply(t, f)
		if err != nil {
			return nil, err
		}
		records, _ := JoinRecords(ft)
		for _, r := range records {
			key := r.Campaign
			if level == LevelBrand {
				key = r.Brand
			}
			m := byID[r.InfluencerID]
			var spend float64
			if m.Revenue > 0 {
				spend = m.Spend * r.Revenue / m.Revenue
			}
			add(key, r.InfluencerID, r.Revenue, r.Orders, spend)
		}

	default:
		return nil, fmt.Errorf("unknown rollup level %q", level)
	}

	rows := make([]RollupRow, 0, len(groups))
	for key, g := range groups {
		g.Influencers = len(members[key])
		g.ROI, g.ROAS = e.ratios(g.Revenue, g.Spend)
		g.AboveROIBenchmark, g.AboveROASBenchmark = e.benchmarks(g.ROI, g.ROAS)
		if g.Orders > 0 {
			g.CostPerOrder = ptr(g.Spend / float64(g.Orders))
		}
		rows = append(rows, *g)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].Key < rows[j].Key
	})
	return rows, nil
}

func influencerKey(m InfluencerMetrics, level Level) string {
	switch level {
	case LevelPlatform:
		return m.Platform
	case LevelCategory:
		return m.Category
	default:
		return m.InfluencerID
	}
}
