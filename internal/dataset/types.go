package dataset

import (
	"time"

	"campaigniq-backend/internal/catalog"
)

// RawRow is an untyped upload row: column name mapped to a string, number
// or already-typed value, as produced by the CSV decoder or a JSON body.
type RawRow = map[string]any

// DateLayout is the canonical date format for dataset date columns.
const DateLayout = "2006-01-02"

type Influencer struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Gender        string `json:"gender"`
	FollowerCount int    `json:"follower_count"`
	Platform      string `json:"platform"`
}

type Post struct {
	InfluencerID string    `json:"influencer_id"`
	Platform     string    `json:"platform"`
	Date         time.Time `json:"date"`
	URL          string    `json:"url"`
	Caption      string    `json:"caption,omitempty"`
	Reach        int       `json:"reach"`
	Likes        int       `json:"likes"`
	Comments     int       `json:"comments"`
}

type TrackingRecord struct {
	InfluencerID string    `json:"influencer_id"`
	Campaign     string    `json:"campaign"`
	Product      string    `json:"product"`
	Brand        string    `json:"brand"`
	Date         time.Time `json:"date"`
	Orders       int       `json:"orders"`
	Revenue      float64   `json:"revenue"`
}

type Payout struct {
	InfluencerID string  `json:"influencer_id"`
	Basis        string  `json:"basis"` // per-post or per-order
	Rate         float64 `json:"rate"`
	// Orders is nil when not supplied; for per-order payouts the analytics
	// engine then falls back to the influencer's tracked order total.
	Orders      *int    `json:"orders,omitempty"`
	TotalPayout float64 `json:"total_payout"`
}

// Tables holds the four session tables. Row order is insertion order and
// carries no semantic meaning.
type Tables struct {
	Influencers []Influencer     `json:"influencers"`
	Posts       []Post           `json:"posts"`
	Tracking    []TrackingRecord `json:"tracking"`
	Payouts     []Payout         `json:"payouts"`
}

func NewTables() *Tables {
	return &Tables{}
}

// Count returns the row count for the given kind.
func (t *Tables) Count(kind catalog.Kind) int {
	switch kind {
	case catalog.KindInfluencers:
		return len(t.Influencers)
	case catalog.KindPosts:
		return len(t.Posts)
	case catalog.KindTracking:
		return len(t.Tracking)
	case catalog.KindPayouts:
		return len(t.Payouts)
	}
	return 0
}

// Clone returns a copy whose slices can be filtered without touching the
// originals. Row values are copied by value.
func (t *Tables) Clone() *Tables {
	c := &Tables{
		Influencers: make([]Influencer, len(t.Influencers)),
		Posts:       make([]Post, len(t.Posts)),
		Tracking:    make([]TrackingRecord, len(t.Tracking)),
		Payouts:     make([]Payout, len(t.Payouts)),
	}
	copy(c.Influencers, t.Influencers)
	copy(c.Posts, t.Posts)
	copy(c.Tracking, t.Tracking)
	copy(c.Payouts, t.Payouts)
	return c
}

// Set replaces one kind's rows with the same kind's rows from src.
func (t *Tables) Set(kind catalog.Kind, src *Tables) {
	switch kind {
	case catalog.KindInfluencers:
		t.Influencers = src.Influencers
	case catalog.KindPosts:
		t.Posts = src.Posts
	case catalog.KindTracking:
		t.Tracking = src.Tracking
	case catalog.KindPayouts:
		t.Payouts = src.Payouts
	}
}
