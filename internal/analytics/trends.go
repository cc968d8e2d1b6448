package analytics

import (
	"fmt"
	"sort"

	"campaigniq-backend/internal/dataset"
)

// TrendPoint is one day of tracked activity.
type TrendPoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// WeekPoint is one ISO week of tracked activity.
type WeekPoint struct {
	Week    string  `json:"week"` // e.g. 2024-W07
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// Trends holds the time series behind the dashboard's trend charts.
type Trends struct {
	Daily  []TrendPoint `json:"daily"`
	Weekly []WeekPoint  `json:"weekly"`
}

// Trends buckets the filtered tracking rows by day and by ISO week, in
// chronological order. Tracking rows are counted whether or not their
// influencer is known; trend charts are not influencer-attributed.
func (e *Engine) Trends(t *dataset.Tables, f FilterSet) (Trends, error) {
	ft, err := Apply(t, f)
	if err != nil {
		return Trends{}, err
	}

	daily := make(map[string]*TrendPoint)
	weekly := make(map[string]*WeekPoint)
	for _, tr := range ft.Tracking {
		day := tr.Date.Format(dataset.DateLayout)
		d, ok := daily[day]
		if !ok {
			d = &TrendPoint{Date: day}
			daily[day] = d
		}
		d.Revenue += tr.Revenue
		d.Orders += tr.Orders

		year, week := tr.Date.ISOWeek()
		wk := fmt.Sprintf("%04d-W%02d", year, week)
		w, ok := weekly[wk]
		if !ok {
			w = &WeekPoint{Week: wk}
			weekly[wk] = w
		}
		w.Revenue += tr.Revenue
		w.Orders += tr.Orders
	}

	out := Trends{}
	for _, d := range daily {
		out.Daily = append(out.Daily, *d)
	}
	sort.Slice(out.Daily, func(i, j int) bool { return out.Daily[i].Date < out.Daily[j].Date })
	for _, w := range weekly {
		out.Weekly = append(out.Weekly, *w)
	}
	sort.Slice(out.Weekly, func(i, j int) bool { return out.Weekly[i].Week < out.Weekly[j].Week })
	return out, nil
}
