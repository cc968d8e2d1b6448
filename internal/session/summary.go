package session

import (
	"sort"

	"campaigniq-backend/internal/dataset"
)

// Summary is the per-kind overview the dashboard header renders.
type Summary struct {
	Influencers InfluencerSummary `json:"influencers"`
	Posts       PostSummary       `json:"posts"`
	Tracking    TrackingSummary   `json:"tracking"`
	Payouts     PayoutSummary     `json:"payouts"`
	// StorageUnavailable mirrors the manager's degraded flag so the UI can
	// warn that data will not survive a restart.
	StorageUnavailable bool `json:"storage_unavailable,omitempty"`
}

type InfluencerSummary struct {
	Count      int      `json:"count"`
	Platforms  []string `json:"platforms"`
	Categories []string `json:"categories"`
}

type PostSummary struct {
	Count      int    `json:"count"`
	DateFrom   string `json:"date_from,omitempty"`
	DateTo     string `json:"date_to,omitempty"`
	TotalReach int    `json:"total_reach"`
}

type TrackingSummary struct {
	Count        int     `json:"count"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int     `json:"total_orders"`
}

type PayoutSummary struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// Summary computes the overview from the current session tables.
func (m *Manager) Summary() Summary {
	t := m.Tables()
	s := Summary{StorageUnavailable: m.StorageUnavailable()}

	s.Influencers.Count = len(t.Influencers)
	platforms := map[string]bool{}
	categories := map[string]bool{}
	for _, r := range t.Influencers {
		platforms[r.Platform] = true
		categories[r.Category] = true
	}
	s.Influencers.Platforms = sortedKeys(platforms)
	s.Influencers.Categories = sortedKeys(categories)

	s.Posts.Count = len(t.Posts)
	for i, r := range t.Posts {
		s.Posts.TotalReach += r.Reach
		d := r.Date.Format(dataset.DateLayout)
		if i == 0 || d < s.Posts.DateFrom {
			s.Posts.DateFrom = d
		}
		if i == 0 || d > s.Posts.DateTo {
			s.Posts.DateTo = d
		}
	}

	s.Tracking.Count = len(t.Tracking)
	for _, r := range t.Tracking {
		s.Tracking.TotalRevenue += r.Revenue
		s.Tracking.TotalOrders += r.Orders
	}

	s.Payouts.Count = len(t.Payouts)
	for _, r := range t.Payouts {
		s.Payouts.TotalAmount += r.TotalPayout
	}

	return s
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
