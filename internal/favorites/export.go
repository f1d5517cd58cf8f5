package favorites

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/menza/internal/models"
)

// csvHeader is the fixed export column order.
var csvHeader = []string{"Naziv", "Cijena", "Alergeni", "Restoran", "Datum dodavanja"}

// ExportCSV renders the favorites list as CSV: one header row, one row per
// favorite. Empty allergens become "Nema"; dates use the Croatian short
// form (d.M.yyyy.).
func ExportCSV(favs []models.FavoriteItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("favorites: write csv header: %w", err)
	}
	for _, f := range favs {
		allergens := f.Allergens
		if allergens == "" {
			allergens = "Nema"
		}
		row := []string{f.Title, f.Price, allergens, f.Restaurant, localDate(f.DateAdded)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("favorites: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("favorites: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportJSON renders the favorites list verbatim, pretty-printed.
func ExportJSON(favs []models.FavoriteItem) ([]byte, error) {
	if favs == nil {
		favs = []models.FavoriteItem{}
	}
	data, err := json.MarshalIndent(favs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("favorites: marshal json export: %w", err)
	}
	return data, nil
}

// localDate converts an RFC 3339 timestamp to the hr-HR short date form
// ("1.1.2024."). Unparseable values pass through unchanged.
func localDate(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2.1.2006.")
}
