package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/menza/internal/favorites"
	"github.com/starford/menza/internal/menuapi"
	"github.com/starford/menza/internal/models"
	"github.com/starford/menza/internal/testutil"
)

const upstreamPayload = `[
  {
    "id": 101,
    "title": {"rendered": "Menza Savska"},
    "meta": {
      "menu_date": "2024-03-15",
      "menu_products": {
        "rucak": {
          "menu": [
            {"id": "1", "title": "Juha od rajčice", "price": "0.80", "allergens": "I"},
            {"id": "2", "title": "Pizza", "price": "2.50", "allergens": "A,G"}
          ],
          "vege_menu": [
            {"id": "3", "title": "Grah s povrćem", "price": "1.00", "allergens": "-"}
          ]
        }
      }
    }
  }
]`

// testEnv wires a router against a fake upstream and a temp favorites store.
func testEnv(t *testing.T, upstream http.HandlerFunc) (http.Handler, *favorites.Store) {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	_, prov := testutil.TestFS(t)
	favs, err := favorites.NewStore(prov)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	client := menuapi.New(srv.URL, 5*time.Second)
	router := NewRouter(NewHandler(client, favs, prov), nil)
	return router, favs
}

func serveUpstream(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}
}

func doRequest(t *testing.T, router http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListRestaurants(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(`[]`))

	w := doRequest(t, router, http.MethodGet, "/restaurants", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp RestaurantListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 14 || len(resp.Restaurants) != 14 {
		t.Errorf("total = %d, len = %d", resp.Total, len(resp.Restaurants))
	}
	if resp.Restaurants[0].ID != "0" {
		t.Errorf("first id = %q", resp.Restaurants[0].ID)
	}
}

func TestGetRestaurantByID(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(`[]`))

	w := doRequest(t, router, http.MethodGet, "/restaurants?id=1107", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/restaurants?id=does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Restaurant not found") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCreateRestaurant(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(`[]`))

	body, _ := json.Marshal(map[string]string{"name": "Nova menza"})
	w := doRequest(t, router, http.MethodPost, "/restaurants", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing id: status = %d", w.Code)
	}

	body, _ = json.Marshal(map[string]string{"id": "9999", "name": "Nova menza"})
	w = doRequest(t, router, http.MethodPost, "/restaurants", body)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("well-formed: status = %d, want 501", w.Code)
	}
}

func TestGetMenus(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(upstreamPayload))

	w := doRequest(t, router, http.MethodGet, "/menus?date=2024-03-15", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp MenuResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if resp.Stats.TotalItems != 3 || resp.Stats.VegItems != 1 {
		t.Errorf("stats = %+v", resp.Stats)
	}
}

func TestGetMenus_FilterNarrowsDaysNotStats(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(upstreamPayload))

	w := doRequest(t, router, http.MethodGet, "/menus?date=2024-03-15&q=juha", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp MenuResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Errorf("filtered total = %d, want 1", resp.Total)
	}
	// Stats stay computed over the unfiltered fetch.
	if resp.Stats.TotalItems != 3 {
		t.Errorf("stats total = %d, want 3", resp.Stats.TotalItems)
	}
}

func TestGetMenus_DateValidation(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(upstreamPayload))

	for _, target := range []string{"/menus", "/menus?date=15.03.2024", "/menus?date=2024-13-40"} {
		w := doRequest(t, router, http.MethodGet, target, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
	}
}

func TestGetMenus_UpstreamFailure(t *testing.T) {
	router, _ := testEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	w := doRequest(t, router, http.MethodGet, "/menus?date=2024-03-15", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	if !strings.Contains(w.Body.String(), "upstream fetch failed") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetMenus_EmptyIsOK(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(`[]`))

	w := doRequest(t, router, http.MethodGet, "/menus?date=2024-03-16", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp MenuResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 0 || len(resp.Days) != 0 {
		t.Errorf("empty fetch: total = %d, days = %d", resp.Total, len(resp.Days))
	}
}

func TestMenuAnalytics(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(upstreamPayload))

	w := doRequest(t, router, http.MethodGet, "/menus/analytics?date=2024-03-15", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp AnalyticsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary.TotalItems != 3 {
		t.Errorf("summary total = %d", resp.Summary.TotalItems)
	}
	if len(resp.Cheapest) != 3 {
		t.Errorf("cheapest = %d items", len(resp.Cheapest))
	}
	if resp.Cheapest[0].Title != "Juha od rajčice" {
		t.Errorf("cheapest[0] = %q", resp.Cheapest[0].Title)
	}
	if resp.Histogram.UpTo1 != 2 || resp.Histogram.UpTo3 != 1 {
		t.Errorf("histogram = %+v", resp.Histogram)
	}
}

func TestAllergens(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(`[]`))

	w := doRequest(t, router, http.MethodGet, "/allergens", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var m map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m["A"] != "Gluten" || m["G"] != "Mlijeko" {
		t.Errorf("allergens = %v", m)
	}
}

func TestToggleFavorite(t *testing.T) {
	router, favs := testEnv(t, serveUpstream(`[]`))

	body, _ := json.Marshal(ToggleFavoriteRequest{
		Item:       models.MenuItem{ID: "1", Title: "Juha", Price: "0.80", Allergens: "-"},
		Restaurant: "Savska",
	})
	w := doRequest(t, router, http.MethodPost, "/favorites", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ToggleFavoriteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Added || len(resp.Favorites) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if len(favs.List()) != 1 {
		t.Error("store should hold the favorite")
	}

	// Toggle again removes.
	w = doRequest(t, router, http.MethodPost, "/favorites", body)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Added || len(resp.Favorites) != 0 {
		t.Errorf("second toggle: resp = %+v", resp)
	}
}

func TestToggleFavorite_Validation(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(`[]`))

	w := doRequest(t, router, http.MethodPost, "/favorites", []byte(`{not json`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d", w.Code)
	}

	body, _ := json.Marshal(ToggleFavoriteRequest{Restaurant: "Savska"})
	w = doRequest(t, router, http.MethodPost, "/favorites", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing item: status = %d", w.Code)
	}
}

func TestRemoveFavorite(t *testing.T) {
	router, favs := testEnv(t, serveUpstream(`[]`))
	_, _ = favs.Toggle(models.MenuItem{ID: "1", Title: "Juha", Price: "0.80"}, "Savska")
	fav := favs.List()[0]

	w := doRequest(t, router, http.MethodDelete, "/favorites/1?dateAdded=1999-01-01T00:00:00Z", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("wrong dateAdded: status = %d, want 404", w.Code)
	}

	w = doRequest(t, router, http.MethodDelete, "/favorites/1?dateAdded="+fav.DateAdded, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if len(favs.List()) != 0 {
		t.Error("favorite should be removed")
	}
}

func TestClearFavorites(t *testing.T) {
	router, favs := testEnv(t, serveUpstream(`[]`))
	_, _ = favs.Toggle(models.MenuItem{ID: "1", Title: "Juha", Price: "0.80"}, "Savska")

	w := doRequest(t, router, http.MethodDelete, "/favorites", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if len(favs.List()) != 0 {
		t.Error("store should be empty")
	}
}

func TestListFavoritesSorted(t *testing.T) {
	router, favs := testEnv(t, serveUpstream(`[]`))
	_, _ = favs.Toggle(models.MenuItem{ID: "1", Title: "Gulaš", Price: "1.50"}, "X")
	_, _ = favs.Toggle(models.MenuItem{ID: "2", Title: "Juha", Price: "0.80"}, "X")

	w := doRequest(t, router, http.MethodGet, "/favorites?sort=price", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp FavoriteListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Favorites[0].ID != "2" {
		t.Errorf("resp = %+v", resp)
	}

	w = doRequest(t, router, http.MethodGet, "/favorites?sort=rating", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad sort: status = %d", w.Code)
	}
}

func TestFavoritesStats(t *testing.T) {
	router, favs := testEnv(t, serveUpstream(`[]`))
	_, _ = favs.Toggle(models.MenuItem{ID: "1", Title: "Juha", Price: "0.80"}, "Savska")
	_, _ = favs.Toggle(models.MenuItem{ID: "2", Title: "Pizza", Price: "2.50"}, "Borongaj")

	w := doRequest(t, router, http.MethodGet, "/favorites/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp FavoritesStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary.Total != 2 {
		t.Errorf("total = %d", resp.Summary.Total)
	}
	if resp.ByRestaurant["Savska"] != 1 || resp.ByRestaurant["Borongaj"] != 1 {
		t.Errorf("byRestaurant = %v", resp.ByRestaurant)
	}
}

func TestExportFavoritesCSV(t *testing.T) {
	router, favs := testEnv(t, serveUpstream(`[]`))
	_, _ = favs.Toggle(models.MenuItem{ID: "1", Title: "Juha", Price: "0.80", Allergens: "I"}, "Savska")

	w := doRequest(t, router, http.MethodGet, "/favorites/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "Naziv,Cijena,Alergeni,Restoran,Datum dodavanja") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestExportFavoritesJSON(t *testing.T) {
	router, favs := testEnv(t, serveUpstream(`[]`))
	_, _ = favs.Toggle(models.MenuItem{ID: "1", Title: "Juha", Price: "0.80"}, "Savska")

	w := doRequest(t, router, http.MethodGet, "/favorites/export?format=json", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var back []models.FavoriteItem
	if err := json.Unmarshal(w.Body.Bytes(), &back); err != nil {
		t.Fatalf("export should be valid JSON: %v", err)
	}
	if len(back) != 1 || back[0].Title != "Juha" {
		t.Errorf("export = %+v", back)
	}

	w = doRequest(t, router, http.MethodGet, "/favorites/export?format=xml", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad format: status = %d", w.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	router, _ := testEnv(t, serveUpstream(`[]`))

	w := doRequest(t, router, http.MethodGet, "/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var s Settings
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if !s.ShowPrices || !s.ShowAllergens {
		t.Errorf("defaults = %+v", s)
	}

	s.CompactView = true
	s.ShowPrices = false
	body, _ := json.Marshal(s)
	w = doRequest(t, router, http.MethodPut, "/settings", body)
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/settings", nil)
	var got Settings
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}
