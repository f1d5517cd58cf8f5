// Package directory holds the static table of known student restaurants.
// The upstream content API addresses restaurants by these numeric ids; the
// table is maintained by hand until a real source of truth exists.
package directory

import (
	"fmt"

	"github.com/starford/menza/internal/apperr"
)

// Restaurant is one directory entry.
type Restaurant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// restaurants is ordered for stable listing. ID "0" selects all restaurants
// on the upstream API.
var restaurants = []Restaurant{
	{ID: "0", Name: "Svi restorani"},
	{ID: "1107", Name: "Restoran Savska"},
	{ID: "8015", Name: "Stjepan Radić"},
	{ID: "8040", Name: "Cvjetno naselje"},
	{ID: "8042", Name: "Borongaj"},
	{ID: "6571", Name: "Lašćina"},
	{ID: "30822", Name: "Gaudeamus"},
	{ID: "18992", Name: "Restoran Ekonomskog fakulteta"},
	{ID: "8025", Name: "TTF"},
	{ID: "8027", Name: "RGNF-PBF"},
	{ID: "8029", Name: "Restoran SC-a NSK"},
	{ID: "8031", Name: "Restoran na Medicinskom fakultetu"},
	{ID: "8044", Name: "Restoran Agronomija i Šumarstvo ZELENI PAVILJON"},
	{ID: "8035", Name: "Restoran FILOZOFSKI FAKULTET"},
}

// All returns every directory entry in listing order.
func All() []Restaurant {
	out := make([]Restaurant, len(restaurants))
	copy(out, restaurants)
	return out
}

// ByID looks up a restaurant by its id.
func ByID(id string) (Restaurant, bool) {
	for _, r := range restaurants {
		if r.ID == id {
			return r, true
		}
	}
	return Restaurant{}, false
}

// Create would register a new restaurant. The table is fixed, so this
// always fails with ErrNotImplemented.
func Create(r Restaurant) error {
	return fmt.Errorf("directory: create %q: %w", r.ID, apperr.ErrNotImplemented)
}
