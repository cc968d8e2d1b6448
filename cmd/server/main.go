package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"campaigniq-backend/internal/analytics"
	"campaigniq-backend/internal/api"
	"campaigniq-backend/internal/catalog"
	"campaigniq-backend/internal/config"
	"campaigniq-backend/internal/dataset"
	"campaigniq-backend/internal/instrument"
	"campaigniq-backend/internal/session"
	"campaigniq-backend/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db driver: %s)", cfg.Server.Port, cfg.Database.Driver)

	// 2. Build the dataset registry and row rules
	reg := catalog.NewRegistry()
	rules, err := dataset.NewRuleSet(ruleDefs(cfg))
	if err != nil {
		log.Fatalf("Failed to compile row rules: %v", err)
	}

	// 3. Connect to the database. A failure degrades to an in-memory
	// session instead of aborting: the dashboard must always come up.
	var repo session.Repository
	var inst instrument.Instrumenter = instrument.Noop{}
	db, err := store.New(ctx, cfg.Database, reg)
	if err != nil {
		log.Printf("WARN: database unavailable, running in-memory only: %v", err)
	} else {
		defer db.Close()
		if err := db.Bootstrap(ctx); err != nil {
			log.Printf("WARN: bootstrap failed, running in-memory only: %v", err)
			db.Close()
			db = nil
		}
	}
	if db != nil {
		repo = db
		log.Println("Database connected, tables ready")

		if cfg.Instrumentation.Enabled {
			rec := instrument.NewRecorder(db.DB, db.Dialect,
				cfg.Instrumentation.SamplingRate,
				cfg.Instrumentation.BufferSize,
				time.Duration(cfg.Instrumentation.FlushIntervalMs)*time.Millisecond)
			defer rec.Stop()
			inst = rec
			instrument.CleanupOldEvents(ctx, db.DB, db.Dialect, cfg.Instrumentation.RetentionDays)
		}
	}

	// 4. Start the session and pull in previously stored datasets
	mgr := session.NewManager(repo, reg, rules, cfg.Session.UploadMode)
	mgr.Load(ctx)
	if mgr.StorageUnavailable() {
		log.Println("WARN: session is running without durable storage")
	}

	// 5. Analytics engine
	engine := analytics.NewEngine(cfg.Analytics.BenchmarkROI, cfg.Analytics.BenchmarkROAS)

	// 6. Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 7. Routes
	handler := api.NewHandler(mgr, reg, engine, inst)
	api.RegisterRoutes(app, handler)

	// 8. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func ruleDefs(cfg *config.Config) []dataset.RuleDef {
	defs := make([]dataset.RuleDef, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		defs = append(defs, dataset.RuleDef{
			Dataset:    r.Dataset,
			Expression: r.Expression,
			Message:    r.Message,
		})
	}
	return defs
}
