package analytics

import (
	"time"

	"campaigniq-backend/internal/dataset"
)

// JoinedRecord is a tracking record enriched with its influencer's profile.
// Every rollup and export reads from these rows, so all levels stay
// consistent with each other.
type JoinedRecord struct {
	InfluencerID  string    `json:"influencer_id"`
	Name          string    `json:"name"`
	Platform      string    `json:"platform"`
	Category      string    `json:"category"`
	FollowerCount int       `json:"follower_count"`
	Campaign      string    `json:"campaign"`
	Brand         string    `json:"brand"`
	Product       string    `json:"product"`
	Date          time.Time `json:"date"`
	Orders        int       `json:"orders"`
	Revenue       float64   `json:"revenue"`
}

// JoinRecords inner-joins tracking rows onto influencer profiles. Rows whose
// influencer_id has no profile are excluded and counted, never an error.
func JoinRecords(t *dataset.Tables) (records []JoinedRecord, unjoinable int) {
	byID := make(map[string]dataset.Influencer, len(t.Influencers))
	for _, inf := range t.Influencers {
		byID[inf.ID] = inf
	}
	for _, tr := range t.Tracking {
		inf, ok := byID[tr.InfluencerID]
		if !ok {
			unjoinable++
			continue
		}
		records = append(records, JoinedRecord{
			InfluencerID:  tr.InfluencerID,
			Name:          inf.Name,
			Platform:      inf.Platform,
			Category:      inf.Category,
			FollowerCount: inf.FollowerCount,
			Campaign:      tr.Campaign,
			Brand:         tr.Brand,
			Product:       tr.Product,
			Date:          tr.Date,
			Orders:        tr.Orders,
			Revenue:       tr.Revenue,
		})
	}
	return records, unjoinable
}
