package session

import (
	"strings"

	"campaigniq-backend/internal/catalog"
	"campaigniq-backend/internal/dataset"
)

// mergeKind unions incoming rows into the existing table, deduplicating by
// the dataset's natural key. On a key collision the incoming row wins in
// place, so existing insertion order is preserved; genuinely new rows are
// appended in upload order. Returns the merged table and the collision
// count.
func mergeKind(ds *catalog.Dataset, existing *dataset.Tables, incoming *dataset.Tables) (*dataset.Tables, int) {
	merged := existing.Clone()
	duplicates := 0

	switch ds.Kind {
	case catalog.KindInfluencers:
		index := make(map[string]int, len(merged.Influencers))
		for i, r := range merged.Influencers {
			index[influencerKey(r)] = i
		}
		for _, r := range incoming.Influencers {
			if i, ok := index[influencerKey(r)]; ok {
				merged.Influencers[i] = r
				duplicates++
				continue
			}
			index[influencerKey(r)] = len(merged.Influencers)
			merged.Influencers = append(merged.Influencers, r)
		}
	case catalog.KindPosts:
		index := make(map[string]int, len(merged.Posts))
		for i, r := range merged.Posts {
			index[postKey(r)] = i
		}
		for _, r := range incoming.Posts {
			if i, ok := index[postKey(r)]; ok {
				merged.Posts[i] = r
				duplicates++
				continue
			}
			index[postKey(r)] = len(merged.Posts)
			merged.Posts = append(merged.Posts, r)
		}
	case catalog.KindTracking:
		index := make(map[string]int, len(merged.Tracking))
		for i, r := range merged.Tracking {
			index[trackingKey(r)] = i
		}
		for _, r := range incoming.Tracking {
			if i, ok := index[trackingKey(r)]; ok {
				merged.Tracking[i] = r
				duplicates++
				continue
			}
			index[trackingKey(r)] = len(merged.Tracking)
			merged.Tracking = append(merged.Tracking, r)
		}
	case catalog.KindPayouts:
		index := make(map[string]int, len(merged.Payouts))
		for i, r := range merged.Payouts {
			index[payoutKey(r)] = i
		}
		for _, r := range incoming.Payouts {
			if i, ok := index[payoutKey(r)]; ok {
				merged.Payouts[i] = r
				duplicates++
				continue
			}
			index[payoutKey(r)] = len(merged.Payouts)
			merged.Payouts = append(merged.Payouts, r)
		}
	}

	return merged, duplicates
}

const keySep = "\x1f"

func influencerKey(r dataset.Influencer) string {
	return r.ID
}

func postKey(r dataset.Post) string {
	return strings.Join([]string{r.InfluencerID, r.URL}, keySep)
}

func trackingKey(r dataset.TrackingRecord) string {
	return strings.Join([]string{
		r.InfluencerID, r.Campaign, r.Product, r.Date.Format(dataset.DateLayout),
	}, keySep)
}

func payoutKey(r dataset.Payout) string {
	return strings.Join([]string{r.InfluencerID, r.Basis}, keySep)
}
