package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/menza/internal/apperr"
	"github.com/starford/menza/internal/directory"
	"github.com/starford/menza/internal/favorites"
	"github.com/starford/menza/internal/filter"
	"github.com/starford/menza/internal/menuapi"
	"github.com/starford/menza/internal/models"
	"github.com/starford/menza/internal/stats"
	"github.com/starford/menza/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	menus *menuapi.Client
	favs  *favorites.Store
	store storage.Provider
}

// NewHandler creates a new Handler.
func NewHandler(menus *menuapi.Client, favs *favorites.Store, store storage.Provider) *Handler {
	return &Handler{menus: menus, favs: favs, store: store}
}

// ListRestaurants handles GET /api/restaurants.
//
//	@Summary		List all known restaurants, or look one up by id
//	@Tags			restaurants
//	@Produce		json
//	@Param			id	query		string	false	"Restaurant id"
//	@Success		200	{object}	RestaurantListResponse
//	@Failure		404	{object}	errResponse
//	@Router			/restaurants [get]
func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		rest, ok := directory.ByID(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody("Restaurant not found"))
			return
		}
		writeJSON(w, http.StatusOK, rest)
		return
	}
	all := directory.All()
	writeJSON(w, http.StatusOK, RestaurantListResponse{
		Restaurants: all,
		Total:       len(all),
	})
}

// CreateRestaurant handles POST /api/restaurants. The directory is a
// fixed table, so a well-formed request is acknowledged but not applied.
//
//	@Summary		Request a new restaurant entry (not implemented)
//	@Tags			restaurants
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateRestaurantRequest	true	"Restaurant to add"
//	@Failure		400		{object}	errResponse
//	@Failure		501		{object}	errResponse
//	@Router			/restaurants [post]
func (h *Handler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ID == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id and name are required"))
		return
	}
	if err := directory.Create(directory.Restaurant{ID: req.ID, Name: req.Name}); err != nil {
		if errors.Is(err, apperr.ErrNotImplemented) {
			writeJSON(w, http.StatusNotImplemented, errorBody("restaurant creation is not supported"))
			return
		}
		slog.Error("create restaurant failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, directory.Restaurant{ID: req.ID, Name: req.Name})
}

// GetMenus handles GET /api/menus.
//
//	@Summary		Fetch menus for a date, optionally filtered
//	@Tags			menus
//	@Produce		json
//	@Param			date		query		string	true	"Menu date (YYYY-MM-DD)"
//	@Param			restaurant	query		string	false	"Restaurant id; empty or 0 means all"
//	@Param			q			query		string	false	"Dish name search"
//	@Param			allergens	query		string	false	"Comma-separated allergen codes to exclude"
//	@Param			filters		query		string	false	"Comma-separated quick filters"	Enums(vegetarian, price-low, price-medium, popular)
//	@Success		200			{object}	MenuResponse
//	@Failure		400			{object}	errResponse
//	@Failure		502			{object}	errResponse
//	@Router			/menus [get]
func (h *Handler) GetMenus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if !validDate(date) {
		writeJSON(w, http.StatusBadRequest, errorBody("date is required (YYYY-MM-DD)"))
		return
	}

	days, err := h.menus.Fetch(r.Context(), date, q.Get("restaurant"))
	if err != nil {
		slog.Error("menu fetch failed", slog.String("date", date), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("upstream fetch failed"))
		return
	}

	state := filter.NewState(q.Get("q"), q.Get("allergens"), q.Get("filters"))
	filtered := filter.Apply(days, state, h.favs.List())

	writeJSON(w, http.StatusOK, MenuResponse{
		Days:  filtered,
		Total: stats.Compute(filtered).TotalItems,
		Stats: stats.Compute(days),
	})
}

// MenuAnalytics handles GET /api/menus/analytics.
//
//	@Summary		Price analytics for a date's menus
//	@Tags			menus
//	@Produce		json
//	@Param			date		query		string	true	"Menu date (YYYY-MM-DD)"
//	@Param			restaurant	query		string	false	"Restaurant id"
//	@Success		200			{object}	AnalyticsResponse
//	@Failure		400			{object}	errResponse
//	@Failure		502			{object}	errResponse
//	@Router			/menus/analytics [get]
func (h *Handler) MenuAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if !validDate(date) {
		writeJSON(w, http.StatusBadRequest, errorBody("date is required (YYYY-MM-DD)"))
		return
	}

	days, err := h.menus.Fetch(r.Context(), date, q.Get("restaurant"))
	if err != nil {
		slog.Error("menu fetch failed", slog.String("date", date), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("upstream fetch failed"))
		return
	}

	writeJSON(w, http.StatusOK, AnalyticsResponse{
		Summary:   stats.Compute(days),
		Histogram: stats.PriceHistogram(days),
		Cheapest:  stats.CheapestN(days, 5),
	})
}

// Allergens handles GET /api/allergens.
//
//	@Summary		Allergen code to name mapping
//	@Tags			menus
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/allergens [get]
func (h *Handler) Allergens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.AllergenNames)
}

// ListFavorites handles GET /api/favorites.
//
//	@Summary		List stored favorites, optionally sorting them first
//	@Tags			favorites
//	@Produce		json
//	@Param			sort	query		string	false	"Sort order"	Enums(price, name)
//	@Success		200		{object}	FavoriteListResponse
//	@Failure		400		{object}	errResponse
//	@Router			/favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	switch sort := r.URL.Query().Get("sort"); sort {
	case "":
	case "price":
		if err := h.favs.SortByPrice(); err != nil {
			h.favoritesError(w, "sort favorites", err)
			return
		}
	case "name":
		if err := h.favs.SortByName(); err != nil {
			h.favoritesError(w, "sort favorites", err)
			return
		}
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("sort must be 'price' or 'name'"))
		return
	}

	favs := h.favs.List()
	writeJSON(w, http.StatusOK, FavoriteListResponse{Favorites: favs, Total: len(favs)})
}

// ToggleFavorite handles POST /api/favorites.
//
//	@Summary		Toggle a dish in the favorites list
//	@Tags			favorites
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ToggleFavoriteRequest	true	"Dish and restaurant"
//	@Success		200		{object}	ToggleFavoriteResponse
//	@Failure		400		{object}	errResponse
//	@Router			/favorites [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ToggleFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Item.ID == "" || req.Item.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("item id and title are required"))
		return
	}

	added, err := h.favs.Toggle(req.Item, req.Restaurant)
	if err != nil {
		h.favoritesError(w, "toggle favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleFavoriteResponse{Added: added, Favorites: h.favs.List()})
}

// RemoveFavorite handles DELETE /api/favorites/{id}.
//
//	@Summary		Remove one favorite by id and dateAdded
//	@Tags			favorites
//	@Produce		json
//	@Param			id			path		string	true	"Favorite id"
//	@Param			dateAdded	query		string	true	"Exact dateAdded of the entry"
//	@Success		204			"Favorite removed"
//	@Failure		404			{object}	errResponse
//	@Router			/favorites/{id} [delete]
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	dateAdded := r.URL.Query().Get("dateAdded")
	if err := h.favs.Remove(id, dateAdded); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("favorite not found"))
			return
		}
		h.favoritesError(w, "remove favorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearFavorites handles DELETE /api/favorites.
//
//	@Summary		Remove all favorites
//	@Tags			favorites
//	@Success		204	"Favorites cleared"
//	@Router			/favorites [delete]
func (h *Handler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	if err := h.favs.Clear(); err != nil {
		h.favoritesError(w, "clear favorites", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FavoritesStats handles GET /api/favorites/stats.
//
//	@Summary		Analytics over the stored favorites
//	@Tags			favorites
//	@Produce		json
//	@Success		200	{object}	FavoritesStatsResponse
//	@Router			/favorites/stats [get]
func (h *Handler) FavoritesStats(w http.ResponseWriter, r *http.Request) {
	favs := h.favs.List()
	writeJSON(w, http.StatusOK, FavoritesStatsResponse{
		Summary:      stats.ComputeFavorites(favs),
		ByRestaurant: stats.FavoritesByRestaurant(favs),
		Histogram:    stats.FavoritesHistogram(favs),
	})
}

// ExportFavorites handles GET /api/favorites/export.
//
//	@Summary		Download the favorites list as CSV or JSON
//	@Tags			favorites
//	@Produce		octet-stream
//	@Param			format	query	string	false	"Export format (default csv)"	Enums(csv, json)
//	@Success		200		"File attachment"
//	@Failure		400		{object}	errResponse
//	@Router			/favorites/export [get]
func (h *Handler) ExportFavorites(w http.ResponseWriter, r *http.Request) {
	favs := h.favs.List()

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		data, err := favorites.ExportCSV(favs)
		if err != nil {
			h.favoritesError(w, "export favorites", err)
			return
		}
		name := fmt.Sprintf("menza-favoriti-%s.csv", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case "json":
		data, err := favorites.ExportJSON(favs)
		if err != nil {
			h.favoritesError(w, "export favorites", err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="menza-favoriti.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("format must be 'csv' or 'json'"))
	}
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Get display settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	Settings
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, loadSettings(h.store))
}

// PutSettings handles PUT /api/settings. The body replaces the stored
// settings wholesale; absent fields fall back to false.
//
//	@Summary		Replace display settings
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Settings	true	"New settings"
//	@Success		200		{object}	Settings
//	@Failure		400		{object}	errResponse
//	@Router			/settings [put]
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var s Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := saveSettings(h.store, s); err != nil {
		slog.Error("settings write failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) favoritesError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// validDate accepts calendar dates in YYYY-MM-DD form.
func validDate(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
