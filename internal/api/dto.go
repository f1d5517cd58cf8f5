package api

import (
	"github.com/starford/menza/internal/directory"
	"github.com/starford/menza/internal/models"
	"github.com/starford/menza/internal/stats"
)

// RestaurantListResponse wraps the static restaurant directory.
type RestaurantListResponse struct {
	Restaurants []directory.Restaurant `json:"restaurants" validate:"required"`
	Total       int                    `json:"total" example:"14" validate:"required"`
}

// MenuResponse is the payload for a menu query. Days carry the filtered
// result while Stats always describes the full upstream fetch.
type MenuResponse struct {
	Days  []models.RestaurantDay `json:"days" validate:"required"`
	Total int                    `json:"total" example:"42" validate:"required"`
	Stats stats.Summary          `json:"stats" validate:"required"`
}

// AnalyticsResponse aggregates price analytics for a menu query.
type AnalyticsResponse struct {
	Summary   stats.Summary      `json:"summary" validate:"required"`
	Histogram stats.Histogram    `json:"histogram" validate:"required"`
	Cheapest  []stats.PricedItem `json:"cheapest" validate:"required"`
}

// ToggleFavoriteRequest is the request body for toggling a favorite.
type ToggleFavoriteRequest struct {
	Item       models.MenuItem `json:"item" validate:"required"`
	Restaurant string          `json:"restaurant" example:"Savska" validate:"required"`
}

// ToggleFavoriteResponse reports the toggle outcome and the new list.
type ToggleFavoriteResponse struct {
	Added     bool                  `json:"added" validate:"required"`
	Favorites []models.FavoriteItem `json:"favorites" validate:"required"`
}

// FavoriteListResponse wraps the stored favorites.
type FavoriteListResponse struct {
	Favorites []models.FavoriteItem `json:"favorites" validate:"required"`
	Total     int                   `json:"total" example:"3" validate:"required"`
}

// FavoritesStatsResponse aggregates favorites analytics.
type FavoritesStatsResponse struct {
	Summary      stats.FavoritesSummary `json:"summary" validate:"required"`
	ByRestaurant map[string]int         `json:"byRestaurant" validate:"required"`
	Histogram    stats.Histogram        `json:"histogram" validate:"required"`
}

// CreateRestaurantRequest is accepted but never fulfilled; the directory
// is a fixed table.
type CreateRestaurantRequest struct {
	ID   string `json:"id" example:"9999" validate:"required"`
	Name string `json:"name" example:"Nova menza" validate:"required"`
}
