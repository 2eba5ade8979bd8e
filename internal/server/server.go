// Package server assembles the fiber application: global middleware, the public read API,
// the token-guarded write API, the live event stream, exports and operational endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/trentd187/domino-tournament/internal/config"
	"github.com/trentd187/domino-tournament/internal/handlers"
	"github.com/trentd187/domino-tournament/internal/live"
	"github.com/trentd187/domino-tournament/internal/metrics"
	mw "github.com/trentd187/domino-tournament/internal/middleware"
	"github.com/trentd187/domino-tournament/internal/report"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

// Deps are the long-lived components the routes close over.
type Deps struct {
	Config   *config.Config
	Service  *tournament.Service
	Hub      *live.Hub
	Metrics  *metrics.Metrics
	Exporter *report.Exporter
}

// New builds the application. It does not start listening.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Domino Tournament API",
		BodyLimit: 1 << 20, // largest body is a score sheet
	})

	app.Use(recover.New())
	app.Use(mw.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestID} ${status} ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	// --- Operational routes ---
	app.Get("/health", handlers.HealthCheck(d.Service.Store()))
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	svc := d.Service
	api := app.Group("/api/v1")

	auth := mw.Auth(d.Config)
	organizer := mw.RequireRole(mw.RoleOrganizer)
	desk := mw.RequireRole(mw.RoleOrganizer, mw.RoleScorer)

	// Players
	api.Get("/players", handlers.ListPlayers(svc))
	api.Post("/players", auth, organizer, handlers.CreatePlayer(svc))
	api.Get("/players/:id/adjustments", handlers.ListAdjustments(svc))
	api.Post("/players/:id/adjustments", auth, organizer, handlers.ApplyAdjustment(svc))

	// Rounds
	api.Get("/rounds", handlers.ListRounds(svc))
	api.Post("/rounds/:round", auth, organizer, handlers.GenerateRound(svc))
	api.Get("/rounds/:round", handlers.GetRound(svc))
	api.Get("/rounds/:round/seats", handlers.GetRoundSeats(svc))

	// Tables
	table := api.Group("/rounds/:round/tables/:table")
	table.Get("/", handlers.GetTable(svc))
	table.Put("/totals", auth, desk, handlers.SaveTotals(svc))
	table.Put("/scores", auth, desk, handlers.SavePlayerScores(svc))
	table.Put("/status", auth, desk, handlers.SetTableStatus(svc))

	// Ranking
	api.Get("/ranking", handlers.GetRanking(svc))
	api.Post("/ranking/recompute", auth, organizer, handlers.Recompute(svc))

	// Live board
	if d.Hub != nil {
		api.Get("/live", handlers.StreamEvents(d.Hub))
	}

	// Exports
	if d.Exporter != nil {
		exports := api.Group("/exports")
		exports.Get("/rounds/:round/assignment.xlsx", handlers.ExportAssignment(d.Exporter))
		exports.Get("/rounds/:round/tables.xlsx", handlers.ExportTableSheets(d.Exporter))
		exports.Get("/ranking.xlsx", handlers.ExportRanking(d.Exporter))
	}

	return app
}
