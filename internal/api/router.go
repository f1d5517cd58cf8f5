// Package api implements the Menza REST API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(h *Handler, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Restaurant directory.
	r.Get("/restaurants", h.ListRestaurants)
	r.Post("/restaurants", h.CreateRestaurant)

	// Menus.
	r.Get("/menus", h.GetMenus)
	r.Get("/menus/analytics", h.MenuAnalytics)
	r.Get("/allergens", h.Allergens)

	// Favorites.
	r.Get("/favorites", h.ListFavorites)
	r.Post("/favorites", h.ToggleFavorite)
	r.Delete("/favorites", h.ClearFavorites)
	r.Get("/favorites/stats", h.FavoritesStats)
	r.Get("/favorites/export", h.ExportFavorites)
	r.Delete("/favorites/{id}", h.RemoveFavorite)

	// Settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.PutSettings)

	// SSE endpoint.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
