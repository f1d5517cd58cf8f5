// Package filter implements the menu filtering pipeline: a free-text
// search, allergen exclusion, and named quick filters combined as one
// conjunctive per-item predicate applied over fetched menu records.
package filter

import (
	"strings"

	"github.com/starford/menza/internal/models"
)

// Quick filter keys.
const (
	QuickVegetarian  = "vegetarian"
	QuickPriceLow    = "price-low"
	QuickPriceMedium = "price-medium"
	QuickPopular     = "popular"
)

// State holds the current filter selection. The zero value matches
// everything.
type State struct {
	Query     string
	Allergens map[string]struct{}
	Quick     map[string]struct{}
}

// NewState builds a State from raw query-style inputs: a comma-separated
// allergen code list and a comma-separated quick filter key list.
func NewState(query, allergens, quick string) State {
	return State{
		Query:     query,
		Allergens: splitSet(allergens),
		Quick:     splitSet(quick),
	}
}

func splitSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

// Empty reports whether the state matches everything.
func (s State) Empty() bool {
	return s.Query == "" && len(s.Allergens) == 0 && len(s.Quick) == 0
}

// Apply returns a structurally-equivalent copy of days in which every item
// list is replaced by its filtered subsequence. Sections and meals are
// never removed, only emptied; surviving items keep their original order.
// favorites backs the "popular" quick filter.
func Apply(days []models.RestaurantDay, state State, favorites []models.FavoriteItem) []models.RestaurantDay {
	favIDs := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		favIDs[f.ID] = struct{}{}
	}

	out := make([]models.RestaurantDay, len(days))
	for i, day := range days {
		filtered := day
		var meals models.MealTypes
		for _, meal := range models.MealNames {
			products := day.Meta.MenuProducts.Meal(meal)
			if products == nil {
				continue
			}
			fp := &models.MenuProducts{}
			for _, section := range models.SectionNames {
				items := products.Section(section)
				if items == nil {
					continue
				}
				fp.SetSection(section, filterItems(items, section, state, favIDs))
			}
			meals.SetMeal(meal, fp)
		}
		filtered.Meta.MenuProducts = meals
		out[i] = filtered
	}
	return out
}

func filterItems(items []models.MenuItem, section string, state State, favIDs map[string]struct{}) []models.MenuItem {
	kept := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if matches(item, section, state, favIDs) {
			kept = append(kept, item)
		}
	}
	return kept
}

func matches(item models.MenuItem, section string, state State, favIDs map[string]struct{}) bool {
	if state.Query != "" &&
		!strings.Contains(strings.ToLower(item.Title), strings.ToLower(state.Query)) {
		return false
	}
	if excludedByAllergens(item, state.Allergens) {
		return false
	}
	for key := range state.Quick {
		if !quickMatch(key, item, section, favIDs) {
			return false
		}
	}
	return true
}

// excludedByAllergens reports whether the item carries any selected
// allergen. Items declaring no allergens ("-" or empty) are exempt.
func excludedByAllergens(item models.MenuItem, selected map[string]struct{}) bool {
	if len(selected) == 0 || !item.HasAllergens() {
		return false
	}
	for _, code := range item.AllergenCodes() {
		if _, ok := selected[code]; ok {
			return true
		}
	}
	return false
}

// quickMatch evaluates one named quick filter. Unrecognized keys pass
// (fail-open), preserving the original behavior. Items with an unparseable
// price fail the price-bucket filters.
func quickMatch(key string, item models.MenuItem, section string, favIDs map[string]struct{}) bool {
	switch key {
	case QuickVegetarian:
		return section == models.SectionVege
	case QuickPriceLow:
		p, ok := item.PriceValue()
		return ok && p <= 1
	case QuickPriceMedium:
		p, ok := item.PriceValue()
		return ok && p > 1 && p <= 2
	case QuickPopular:
		_, ok := favIDs[item.ID]
		return ok
	default:
		return true
	}
}
