package analytics

import (
	"fmt"
	"strings"
	"time"

	"campaigniq-backend/internal/dataset"
)

// InvalidFilterError reports a malformed filter set.
type InvalidFilterError struct {
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return "invalid filter: " + e.Reason
}

// Influencer size tiers, by follower count.
const (
	TierNano  = "nano"  // < 10k
	TierMicro = "micro" // < 100k
	TierMacro = "macro" // < 1M
	TierMega  = "mega"  // >= 1M
)

var allTiers = []string{TierNano, TierMicro, TierMacro, TierMega}

// InfluencerTier buckets a follower count into a size tier.
func InfluencerTier(followers int) string {
	switch {
	case followers < 10_000:
		return TierNano
	case followers < 100_000:
		return TierMicro
	case followers < 1_000_000:
		return TierMacro
	default:
		return TierMega
	}
}

// FilterSet restricts every engine query uniformly. A nil/empty dimension
// means no restriction on that dimension. The engine never retains a filter
// between calls.
type FilterSet struct {
	Platforms       []string   `json:"platforms,omitempty"`
	Brands          []string   `json:"brands,omitempty"`
	Categories      []string   `json:"categories,omitempty"`
	InfluencerTypes []string   `json:"influencer_types,omitempty"` // size tiers
	DateFrom        *time.Time `json:"date_from,omitempty"`
	DateTo          *time.Time `json:"date_to,omitempty"`
}

// Validate checks the filter set's internal consistency.
func (f FilterSet) Validate() error {
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return &InvalidFilterError{Reason: fmt.Sprintf(
			"date_range start %s is after end %s",
			f.DateFrom.Format(dataset.DateLayout), f.DateTo.Format(dataset.DateLayout))}
	}
	for _, tier := range f.InfluencerTypes {
		if !containsFold(allTiers, tier) {
			return &InvalidFilterError{Reason: fmt.Sprintf(
				"unknown influencer type %q (allowed: %s)", tier, strings.Join(allTiers, ", "))}
		}
	}
	return nil
}

// Apply restricts the tables to the filter set and returns a filtered copy;
// the input is never mutated. Platform, category and influencer-type
// restrict the influencer-id set, which in turn restricts posts, tracking
// and payouts; brand restricts tracking rows by brand or campaign name; the
// date range restricts posts and tracking inclusively.
func Apply(t *dataset.Tables, f FilterSet) (*dataset.Tables, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	out := t.Clone()

	if len(f.Platforms) > 0 || len(f.Categories) > 0 || len(f.InfluencerTypes) > 0 {
		allowed := make(map[string]bool)
		var kept []dataset.Influencer
		for _, r := range out.Influencers {
			if len(f.Platforms) > 0 && !containsFold(f.Platforms, r.Platform) {
				continue
			}
			if len(f.Categories) > 0 && !containsFold(f.Categories, r.Category) {
				continue
			}
			if len(f.InfluencerTypes) > 0 && !containsFold(f.InfluencerTypes, InfluencerTier(r.FollowerCount)) {
				continue
			}
			allowed[r.ID] = true
			kept = append(kept, r)
		}
		out.Influencers = kept

		var posts []dataset.Post
		for _, r := range out.Posts {
			if allowed[r.InfluencerID] {
				posts = append(posts, r)
			}
		}
		out.Posts = posts

		var tracking []dataset.TrackingRecord
		for _, r := range out.Tracking {
			if allowed[r.InfluencerID] {
				tracking = append(tracking, r)
			}
		}
		out.Tracking = tracking

		var payouts []dataset.Payout
		for _, r := range out.Payouts {
			if allowed[r.InfluencerID] {
				payouts = append(payouts, r)
			}
		}
		out.Payouts = payouts
	}

	if len(f.Platforms) > 0 {
		// Posts carry their own platform column; a post published off the
		// filtered platforms drops out even when its influencer stays.
		var posts []dataset.Post
		for _, r := range out.Posts {
			if containsFold(f.Platforms, r.Platform) {
				posts = append(posts, r)
			}
		}
		out.Posts = posts
	}

	if len(f.Brands) > 0 {
		var tracking []dataset.TrackingRecord
		for _, r := range out.Tracking {
			if containsFold(f.Brands, r.Brand) || containsFold(f.Brands, r.Campaign) {
				tracking = append(tracking, r)
			}
		}
		out.Tracking = tracking
	}

	if f.DateFrom != nil || f.DateTo != nil {
		var posts []dataset.Post
		for _, r := range out.Posts {
			if inRange(r.Date, f.DateFrom, f.DateTo) {
				posts = append(posts, r)
			}
		}
		out.Posts = posts

		var tracking []dataset.TrackingRecord
		for _, r := range out.Tracking {
			if inRange(r.Date, f.DateFrom, f.DateTo) {
				tracking = append(tracking, r)
			}
		}
		out.Tracking = tracking
	}

	return out, nil
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
