// Package menuapi fetches daily menus from the external WordPress menus API.
// The response shape is consumed as-is; this package owns only the transport
// and the error taxonomy, never the data.
package menuapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/starford/menza/internal/apperr"
	"github.com/starford/menza/internal/models"
)

// DefaultBaseURL is the production menus endpoint root.
const DefaultBaseURL = "https://www.sczg.unizg.hr/wp-json/wp/v2"

// Client talks to the upstream menus API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given API root (e.g. ".../wp-json/wp/v2").
// timeout bounds each fetch in addition to the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the menu records for a date (YYYY-MM-DD) and an optional
// restaurant id ("" or "0" fetches all restaurants). An empty slice is a
// valid result meaning no menu was published for that day; transport
// failures and non-2xx statuses wrap apperr.ErrUpstream.
func (c *Client) Fetch(ctx context.Context, date, restaurantID string) ([]models.RestaurantDay, error) {
	q := url.Values{}
	q.Set("per_page", "100")
	q.Set("orderby", "date")
	q.Set("order", "asc")
	q.Set("menu_date", date)
	if restaurantID != "" && restaurantID != "0" {
		q.Set("restaurant", restaurantID)
	}

	u := c.baseURL + "/menus?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("menuapi: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("menuapi: fetch %s: %w: %w", date, apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("menuapi: fetch %s: status %d: %w", date, resp.StatusCode, apperr.ErrUpstream)
	}

	var days []models.RestaurantDay
	if err := json.NewDecoder(resp.Body).Decode(&days); err != nil {
		return nil, fmt.Errorf("menuapi: decode response: %w: %w", apperr.ErrUpstream, err)
	}
	if days == nil {
		days = []models.RestaurantDay{}
	}
	return days, nil
}
