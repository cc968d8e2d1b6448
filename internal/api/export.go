package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"campaigniq-backend/internal/analytics"
	"campaigniq-backend/internal/dataset"
	"campaigniq-backend/internal/instrument"
)

// Export handles GET /api/export/:report — the dashboard's CSV downloads.
// Reports: influencers, rollup (with ?level=), tracking, trends.
func (h *Handler) Export(c *fiber.Ctx) error {
	f, err := parseFilterSet(c)
	if err != nil {
		return err
	}

	report := c.Params("report")
	tm := instrument.Start(h.inst, "export", "export."+report)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	var rows int

	switch report {
	case "influencers":
		rows, err = h.exportInfluencers(w, f)
	case "rollup":
		rows, err = h.exportRollup(w, f, c.Query("level", string(analytics.LevelCampaign)))
	case "tracking":
		rows, err = h.exportTracking(w, f)
	case "trends":
		rows, err = h.exportTrends(w, f)
	default:
		tm.Done("error")
		return InvalidPayloadError(fmt.Sprintf("unknown report %q (allowed: influencers, rollup, tracking, trends)", report))
	}
	if err != nil {
		tm.Done("error")
		return mapAnalyticsError(err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tm.Done("error")
		return fmt.Errorf("write csv: %w", err)
	}
	tm.SetRowCount(rows).Done("ok")

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s.csv", report))
	return c.Send(buf.Bytes())
}

func (h *Handler) exportInfluencers(w *csv.Writer, f analytics.FilterSet) (int, error) {
	rows, _, err := h.engine.Influencers(h.mgr.Tables(), f)
	if err != nil {
		return 0, err
	}
	if err := w.Write([]string{
		"influencer_id", "name", "platform", "category", "follower_count",
		"revenue", "orders", "spend", "roi", "roas", "cost_per_order",
		"engagement_rate", "above_roi_benchmark", "above_roas_benchmark",
	}); err != nil {
		return 0, err
	}
	for _, m := range rows {
		rec := []string{
			m.InfluencerID, m.Name, m.Platform, m.Category, strconv.Itoa(m.FollowerCount),
			formatFloat(m.Revenue), strconv.Itoa(m.Orders), formatFloat(m.Spend),
			formatRatio(m.ROI), formatRatio(m.ROAS), formatRatio(m.CostPerOrder),
			formatRatio(m.EngagementRate),
			strconv.FormatBool(m.AboveROIBenchmark), strconv.FormatBool(m.AboveROASBenchmark),
		}
		if err := w.Write(rec); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (h *Handler) exportRollup(w *csv.Writer, f analytics.FilterSet, levelName string) (int, error) {
	level, err := analytics.ParseLevel(levelName)
	if err != nil {
		return 0, InvalidPayloadError(err.Error())
	}
	rows, err := h.engine.Rollup(h.mgr.Tables(), f, level)
	if err != nil {
		return 0, err
	}
	if err := w.Write([]string{string(level), "influencers", "revenue", "orders", "spend", "roi", "roas"}); err != nil {
		return 0, err
	}
	for _, r := range rows {
		rec := []string{
			r.Key, strconv.Itoa(r.Influencers), formatFloat(r.Revenue),
			strconv.Itoa(r.Orders), formatFloat(r.Spend),
			formatRatio(r.ROI), formatRatio(r.ROAS),
		}
		if err := w.Write(rec); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (h *Handler) exportTracking(w *csv.Writer, f analytics.FilterSet) (int, error) {
	ft, err := analytics.Apply(h.mgr.Tables(), f)
	if err != nil {
		return 0, err
	}
	records, _ := analytics.JoinRecords(ft)
	if err := w.Write([]string{
		"influencer_id", "name", "platform", "category",
		"campaign", "brand", "product", "date", "orders", "revenue",
	}); err != nil {
		return 0, err
	}
	for _, r := range records {
		rec := []string{
			r.InfluencerID, r.Name, r.Platform, r.Category,
			r.Campaign, r.Brand, r.Product, r.Date.Format(dataset.DateLayout),
			strconv.Itoa(r.Orders), formatFloat(r.Revenue),
		}
		if err := w.Write(rec); err != nil {
			return 0, err
		}
	}
	return len(records), nil
}

func (h *Handler) exportTrends(w *csv.Writer, f analytics.FilterSet) (int, error) {
	trends, err := h.engine.Trends(h.mgr.Tables(), f)
	if err != nil {
		return 0, err
	}
	if err := w.Write([]string{"date", "revenue", "orders"}); err != nil {
		return 0, err
	}
	for _, d := range trends.Daily {
		if err := w.Write([]string{d.Date, formatFloat(d.Revenue), strconv.Itoa(d.Orders)}); err != nil {
			return 0, err
		}
	}
	return len(trends.Daily), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatRatio renders a nullable ratio; nil stays an empty cell.
func formatRatio(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
