package api

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"campaigniq-backend/internal/analytics"
	"campaigniq-backend/internal/catalog"
	"campaigniq-backend/internal/dataset"
	"campaigniq-backend/internal/instrument"
	"campaigniq-backend/internal/session"
)

// Handler serves the dashboard API: dataset uploads, session state and the
// analytics queries behind every dashboard panel.
type Handler struct {
	mgr    *session.Manager
	reg    *catalog.Registry
	engine *analytics.Engine
	inst   instrument.Instrumenter
}

func NewHandler(mgr *session.Manager, reg *catalog.Registry, engine *analytics.Engine, inst instrument.Instrumenter) *Handler {
	if inst == nil {
		inst = instrument.Noop{}
	}
	return &Handler{mgr: mgr, reg: reg, engine: engine, inst: inst}
}

// Health handles GET /health.
func (h *Handler) Health(c *fiber.Ctx) error {
	status := "ok"
	if h.mgr.StorageUnavailable() {
		status = "degraded"
	}
	return c.JSON(fiber.Map{"status": status, "storage_unavailable": h.mgr.StorageUnavailable()})
}

// Summary handles GET /api/summary — the data-status panel.
func (h *Handler) Summary(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.mgr.Summary()})
}

// GetDataset handles GET /api/datasets/:kind — the session table as rows.
func (h *Handler) GetDataset(c *fiber.Ctx) error {
	kind, ok := catalog.ParseKind(c.Params("kind"))
	if !ok {
		return UnknownDatasetError(c.Params("kind"))
	}
	t := h.mgr.Tables()
	var rows any
	switch kind {
	case catalog.KindInfluencers:
		rows = t.Influencers
	case catalog.KindPosts:
		rows = t.Posts
	case catalog.KindTracking:
		rows = t.Tracking
	case catalog.KindPayouts:
		rows = t.Payouts
	}
	return c.JSON(fiber.Map{"data": rows, "count": t.Count(kind)})
}

// Upload handles POST /api/datasets/:kind. The body is either a JSON array
// of rows or a multipart form with a CSV under "file". ?mode=merge|replace
// overrides the configured default. Row failures are reported, not fatal;
// only a batch with zero accepted rows is an error response.
func (h *Handler) Upload(c *fiber.Ctx) error {
	kind, ok := catalog.ParseKind(c.Params("kind"))
	if !ok {
		return UnknownDatasetError(c.Params("kind"))
	}
	ds := h.reg.Dataset(kind)

	tm := instrument.Start(h.inst, "api", "dataset.upload").SetDataset(string(kind))

	raws, err := h.readRows(c, ds)
	if err != nil {
		tm.Done("error")
		return err
	}

	result, err := h.mgr.Upload(c.UserContext(), kind, raws, c.Query("mode"))
	if err != nil {
		tm.Done("error")
		return InvalidPayloadError(err.Error())
	}
	tm.SetRowCount(result.Accepted).Done("ok")

	if result.Accepted == 0 && result.Rejected > 0 {
		return SchemaError(result.Errors)
	}
	return c.JSON(fiber.Map{"data": result})
}

func (h *Handler) readRows(c *fiber.Ctx, ds *catalog.Dataset) ([]dataset.RawRow, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, InvalidPayloadError("cannot open uploaded file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, InvalidPayloadError("cannot read uploaded file")
		}
		raws, err := dataset.DecodeCSV(ds, data)
		if err != nil {
			return nil, InvalidPayloadError(err.Error())
		}
		return raws, nil
	}

	// Either a bare JSON array or {"rows": [...]}.
	var raws []dataset.RawRow
	if err := c.BodyParser(&raws); err == nil {
		return raws, nil
	}
	var wrapped struct {
		Rows []dataset.RawRow `json:"rows"`
	}
	if err := c.BodyParser(&wrapped); err != nil || wrapped.Rows == nil {
		return nil, InvalidPayloadError("body must be a JSON array of rows or a multipart CSV file")
	}
	return wrapped.Rows, nil
}

// LoadSample handles POST /api/datasets/sample — replaces the session with
// the bundled demo dataset.
func (h *Handler) LoadSample(c *fiber.Ctx) error {
	h.mgr.LoadSample()
	pending := h.mgr.SaveAll(c.UserContext())
	h.inst.Record(instrument.Event{
		Source: "api", Action: "dataset.sample", Status: "ok",
		RowCount: h.mgr.Tables().Count(catalog.KindInfluencers),
	})
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"summary":             h.mgr.Summary(),
			"persistence_pending": kindsToStrings(pending),
		},
	})
}

// ClearDatasets handles DELETE /api/datasets — empties the session and the
// stored copies.
func (h *Handler) ClearDatasets(c *fiber.Ctx) error {
	pending := h.mgr.Clear(c.UserContext())
	return c.JSON(fiber.Map{
		"data": fiber.Map{"persistence_pending": kindsToStrings(pending)},
	})
}

// Save handles POST /api/session/save — force-persists every session table.
func (h *Handler) Save(c *fiber.Ctx) error {
	if h.mgr.StorageUnavailable() {
		return StorageUnavailableError()
	}
	pending := h.mgr.SaveAll(c.UserContext())
	if len(pending) > 0 {
		return StorageUnavailableError()
	}
	h.inst.Record(instrument.Event{Source: "session", Action: "session.save", Status: "ok"})
	return c.JSON(fiber.Map{"data": fiber.Map{"saved": true}})
}

// Totals handles GET /api/analytics/totals.
func (h *Handler) Totals(c *fiber.Ctx) error {
	f, err := parseFilterSet(c)
	if err != nil {
		return err
	}
	totals, err := h.engine.Totals(h.mgr.Tables(), f)
	if err != nil {
		return mapAnalyticsError(err)
	}
	return c.JSON(fiber.Map{"data": totals})
}

// InfluencerMetrics handles GET /api/analytics/influencers.
func (h *Handler) InfluencerMetrics(c *fiber.Ctx) error {
	f, err := parseFilterSet(c)
	if err != nil {
		return err
	}
	rows, meta, err := h.engine.Influencers(h.mgr.Tables(), f)
	if err != nil {
		return mapAnalyticsError(err)
	}
	if rows == nil {
		rows = []analytics.InfluencerMetrics{}
	}
	return c.JSON(fiber.Map{"data": rows, "meta": meta})
}

// Rollup handles GET /api/analytics/rollup?level=platform.
func (h *Handler) Rollup(c *fiber.Ctx) error {
	f, err := parseFilterSet(c)
	if err != nil {
		return err
	}
	level, err := analytics.ParseLevel(c.Query("level", string(analytics.LevelInfluencer)))
	if err != nil {
		return InvalidPayloadError(err.Error())
	}
	tm := instrument.Start(h.inst, "api", "analytics.rollup")
	rows, err := h.engine.Rollup(h.mgr.Tables(), f, level)
	if err != nil {
		tm.Done("error")
		return mapAnalyticsError(err)
	}
	tm.SetRowCount(len(rows)).Done("ok")
	if rows == nil {
		rows = []analytics.RollupRow{}
	}
	return c.JSON(fiber.Map{"data": rows, "level": level})
}

// Performers handles GET /api/analytics/performers?by=revenue|roi&limit=10.
func (h *Handler) Performers(c *fiber.Ctx) error {
	f, err := parseFilterSet(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 10)
	var rows []analytics.InfluencerMetrics
	switch by := c.Query("by", "revenue"); by {
	case "revenue":
		rows, err = h.engine.TopPerformers(h.mgr.Tables(), f, limit)
	case "roi":
		rows, err = h.engine.TopByROI(h.mgr.Tables(), f, limit)
	default:
		return InvalidPayloadError(fmt.Sprintf("unknown ranking %q (allowed: revenue, roi)", by))
	}
	if err != nil {
		return mapAnalyticsError(err)
	}
	if rows == nil {
		rows = []analytics.InfluencerMetrics{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

// PoorPerformers handles GET /api/analytics/poor-performers.
func (h *Handler) PoorPerformers(c *fiber.Ctx) error {
	f, err := parseFilterSet(c)
	if err != nil {
		return err
	}
	rows, err := h.engine.PoorPerformers(h.mgr.Tables(), f, c.QueryInt("limit", 10))
	if err != nil {
		return mapAnalyticsError(err)
	}
	if rows == nil {
		rows = []analytics.PoorPerformer{}
	}
	return c.JSON(fiber.Map{"data": rows})
}

// Trends handles GET /api/analytics/trends.
func (h *Handler) Trends(c *fiber.Ctx) error {
	f, err := parseFilterSet(c)
	if err != nil {
		return err
	}
	trends, err := h.engine.Trends(h.mgr.Tables(), f)
	if err != nil {
		return mapAnalyticsError(err)
	}
	return c.JSON(fiber.Map{"data": trends})
}

// Insights handles GET /api/analytics/insights — the overview page payload.
func (h *Handler) Insights(c *fiber.Ctx) error {
	f, err := parseFilterSet(c)
	if err != nil {
		return err
	}
	tm := instrument.Start(h.inst, "api", "analytics.insights")
	insights, err := h.engine.Insights(h.mgr.Tables(), f, c.QueryInt("limit", 10))
	if err != nil {
		tm.Done("error")
		return mapAnalyticsError(err)
	}
	tm.Done("ok")
	return c.JSON(fiber.Map{"data": insights})
}

// parseFilterSet reads the shared filter query parameters. List params take
// comma-separated values; dates use YYYY-MM-DD.
func parseFilterSet(c *fiber.Ctx) (analytics.FilterSet, error) {
	f := analytics.FilterSet{
		Platforms:       splitList(c.Query("platform")),
		Brands:          splitList(c.Query("brand")),
		Categories:      splitList(c.Query("category")),
		InfluencerTypes: splitList(c.Query("influencer_type")),
	}
	if v := c.Query("from"); v != "" {
		d, err := time.Parse(dataset.DateLayout, v)
		if err != nil {
			return f, InvalidFilterError(fmt.Sprintf("bad from date %q, want YYYY-MM-DD", v))
		}
		f.DateFrom = &d
	}
	if v := c.Query("to"); v != "" {
		d, err := time.Parse(dataset.DateLayout, v)
		if err != nil {
			return f, InvalidFilterError(fmt.Sprintf("bad to date %q, want YYYY-MM-DD", v))
		}
		f.DateTo = &d
	}
	if err := f.Validate(); err != nil {
		return f, mapAnalyticsError(err)
	}
	return f, nil
}

func mapAnalyticsError(err error) error {
	var invalid *analytics.InvalidFilterError
	if errors.As(err, &invalid) {
		return InvalidFilterError(invalid.Reason)
	}
	return err
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func kindsToStrings(kinds []catalog.Kind) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, string(k))
	}
	return out
}
