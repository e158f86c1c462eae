package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, db *sql.DB, store Store, admin AdminStore, qrSecret, spaDir string) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Campus Hunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	// Participant routes. Bearer token auth is handled per-handler.
	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", handleSignup(store))
		r.Post("/login", handleLogin(store))
		r.Get("/me", handleMe(store))
		r.Get("/locations", handleListLocations(store))
		r.Get("/locations/{locationID}/subevents", handleListSubEvents(store))
		r.Get("/herocards", handleListHeroCards(store))
		r.Post("/checkin", handleCheckin(store, qrSecret, broker))
		r.Post("/subevents/checkin", handleSubEventCheckin(store, broker))
		r.Post("/spin", handleSpin(store, broker))
		r.Get("/spin", handleGetSpin(store))
	})

	// Admin auth with cookie sessions.
	r.Post("/api/admin/login", handleAdminLogin(admin))
	r.Post("/api/admin/logout", handleAdminLogout(admin))
	r.Get("/api/admin/me", handleAdminMe(admin))

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminAuthMiddleware(admin))

		r.Get("/events", handleEvents(broker))
		r.Get("/stats", handleAdminStats(store))

		r.Get("/locations", handleAdminListLocations(store))
		r.Post("/locations", handleAdminCreateLocation(store))
		r.Put("/locations/{locationID}", handleAdminUpdateLocation(store))
		r.Delete("/locations/{locationID}", handleAdminDeleteLocation(store))
		r.Get("/locations/{locationID}/qr", handleAdminLocationQR(store, qrSecret))
		r.Post("/locations/{locationID}/qr/rotate", handleAdminRotateLocationQR(store, qrSecret))
		r.Get("/locations/{locationID}/subevents", handleAdminListSubEvents(store))
		r.Post("/locations/{locationID}/subevents", handleAdminCreateSubEvent(store))

		r.Put("/subevents/{subEventID}", handleAdminUpdateSubEvent(store))
		r.Delete("/subevents/{subEventID}", handleAdminDeleteSubEvent(store))
		r.Get("/subevents/{subEventID}/qr", handleAdminSubEventQR(store))
		r.Post("/subevents/{subEventID}/qr/rotate", handleAdminRotateSubEventQR(store))

		r.Get("/prizes", handleAdminListPrizes(store))
		r.Post("/prizes", handleAdminCreatePrize(store))
		r.Put("/prizes/{prizeID}", handleAdminUpdatePrize(store))
		r.Delete("/prizes/{prizeID}", handleAdminDeletePrize(store))

		r.Get("/settings", handleAdminGetSettings(store))
		r.Put("/settings", handleAdminUpdateSettings(store))

		r.Get("/participants", handleAdminListParticipants(store))
		r.Get("/participants/export", handleAdminExportParticipants(store))
		r.Patch("/participants/{id}/points", handleAdminAdjustPoints(store))
		r.Delete("/participants/{id}", handleAdminDeleteParticipant(store))

		r.Get("/claims/{code}", handleAdminLookupClaim(store))
		r.Post("/claims/{id}/mark", handleAdminMarkClaimed(store, broker))

		r.Get("/herocards", handleListHeroCards(store))
		r.Post("/herocards", handleAdminCreateHeroCard(store))
		r.Put("/herocards/{id}", handleAdminUpdateHeroCard(store))
		r.Delete("/herocards/{id}", handleAdminDeleteHeroCard(store))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
