/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. Metrics:    Prometheus request count and latency per route
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/snapshot, /api/import, /api/save   Whole-state operations
  /api/scenarios/*                        Scenarios, items, overlays, charts
  /api/demos/*                            Demo facilities
  /metrics                                Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware. The service is meant to run next to a
  single planner's frontend.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured. A nil or empty
// origins list falls back to the local frontend origins.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = DefaultConfig().CORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Method("GET", "/metrics", h.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", h.GetSnapshot)
		r.Put("/snapshot", h.PutSnapshot)
		r.Post("/import", h.Import)
		r.Post("/save", h.Save)

		r.Route("/demos", func(r chi.Router) {
			r.Get("/", h.ListDemos)
			r.Post("/load", h.LoadDemo)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/", h.CreateScenario)

			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", h.GetScenario)
				r.Put("/", h.UpdateScenario)
				r.Delete("/", h.DeleteScenario)
				r.Get("/chain", h.GetChain)
				r.Get("/base-candidates", h.GetBaseCandidates)
				r.Get("/export", h.ExportScenario)

				// Items
				r.Route("/items", func(r chi.Router) {
					r.Get("/", h.ListItems)
					r.Post("/", h.CreateItem)

					r.Route("/{iid}", func(r chi.Router) {
						r.Get("/", h.GetItem)
						r.Patch("/", h.PatchItem)
						r.Delete("/", h.DeleteItem)
						r.Post("/revert", h.RevertItem)
						r.Get("/diff", h.DiffItem)

						r.Post("/bookings", h.PutBooking)
						r.Put("/bookings/{bid}", h.PutBooking)
						r.Delete("/bookings/{bid}", h.DeleteBooking)

						r.Post("/groups", h.PutGroupAssignment)
						r.Put("/groups/{aid}", h.PutGroupAssignment)
						r.Delete("/groups/{aid}", h.DeleteGroupAssignment)

						r.Post("/qualifications", h.AssignQualification)
						r.Delete("/qualifications/{key}", h.UnassignQualification)
					})
				})

				// Catalogs
				r.Get("/group-defs", h.GetGroupDefs)
				r.Put("/group-defs", h.PutGroupDefs)
				r.Get("/qualification-defs", h.GetQualificationDefs)
				r.Put("/qualification-defs/{key}", h.PutQualificationDef)

				// Charts
				r.Get("/charts/weekly", h.WeeklyChart)
				r.Get("/charts/midterm", h.MidtermChart)
				r.Get("/charts/midterm.xlsx", h.MidtermWorkbook)
				r.Get("/filters", h.FilterOptions)
				r.Post("/filters/sync", h.SyncFilters)
				r.Get("/dates-of-interest", h.DatesOfInterest)
			})
		})
	})

	return r
}
