package api

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the full API surface on the app.
func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", h.Health)

	api := app.Group("/api")
	api.Get("/summary", h.Summary)

	api.Post("/datasets/sample", h.LoadSample)
	api.Get("/datasets/:kind", h.GetDataset)
	api.Post("/datasets/:kind", h.Upload)
	api.Delete("/datasets", h.ClearDatasets)
	api.Post("/session/save", h.Save)

	api.Get("/analytics/totals", h.Totals)
	api.Get("/analytics/influencers", h.InfluencerMetrics)
	api.Get("/analytics/rollup", h.Rollup)
	api.Get("/analytics/performers", h.Performers)
	api.Get("/analytics/poor-performers", h.PoorPerformers)
	api.Get("/analytics/trends", h.Trends)
	api.Get("/analytics/insights", h.Insights)

	api.Get("/export/:report", h.Export)
}
