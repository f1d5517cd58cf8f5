// Package stats derives aggregate values from fetched menu records and
// from the favorites list. Every function here is pure: identical input
// yields identical output, nothing is mutated.
package stats

import (
	"sort"

	"github.com/starford/menza/internal/models"
)

// WorkingDaysPerMonth is the policy constant behind the monthly cost
// estimate (22 working days, not a measured value).
const WorkingDaysPerMonth = 22

// Summary holds the headline numbers for a set of menu records.
type Summary struct {
	TotalItems      int     `json:"totalItems"`
	VegItems        int     `json:"vegItems"`
	AvgPrice        float64 `json:"avgPrice"`
	RestaurantCount int     `json:"restaurantsCount"`
	MonthlyCost     float64 `json:"monthlyCost"`
}

// Histogram counts items per price bucket. Buckets for menu data are
// (-inf,1], (1,2], (2,3], (3,inf); favorites use the first two plus Over2.
type Histogram struct {
	UpTo1 int `json:"upTo1"`
	UpTo2 int `json:"upTo2"`
	UpTo3 int `json:"upTo3,omitempty"`
	Over3 int `json:"over3,omitempty"`
	Over2 int `json:"over2,omitempty"`
}

// PricedItem is a menu item annotated with its source restaurant and
// parsed price, used for cheapest-N listings.
type PricedItem struct {
	models.MenuItem
	Restaurant string  `json:"restaurant"`
	PriceNum   float64 `json:"priceValue"`
}

// forEachItem visits every item list in every meal/section of every day.
func forEachItem(days []models.RestaurantDay, visit func(day models.RestaurantDay, section string, item models.MenuItem)) {
	for _, day := range days {
		for _, meal := range models.MealNames {
			products := day.Meta.MenuProducts.Meal(meal)
			if products == nil {
				continue
			}
			for _, section := range models.SectionNames {
				for _, item := range products.Section(section) {
					visit(day, section, item)
				}
			}
		}
	}
}

// Compute walks the records and returns the headline summary. AvgPrice is
// the arithmetic mean over items with a parseable price, 0 when none exist.
func Compute(days []models.RestaurantDay) Summary {
	var s Summary
	s.RestaurantCount = len(days)

	var priceSum float64
	var priced int
	forEachItem(days, func(_ models.RestaurantDay, section string, item models.MenuItem) {
		s.TotalItems++
		if section == models.SectionVege {
			s.VegItems++
		}
		if p, ok := item.PriceValue(); ok {
			priceSum += p
			priced++
		}
	})
	if priced > 0 {
		s.AvgPrice = priceSum / float64(priced)
	}
	s.MonthlyCost = s.AvgPrice * WorkingDaysPerMonth
	return s
}

// PriceHistogram buckets every priced item into (-inf,1], (1,2], (2,3],
// (3,inf). Items without a parseable price are not counted.
func PriceHistogram(days []models.RestaurantDay) Histogram {
	var h Histogram
	forEachItem(days, func(_ models.RestaurantDay, _ string, item models.MenuItem) {
		p, ok := item.PriceValue()
		if !ok {
			return
		}
		switch {
		case p <= 1:
			h.UpTo1++
		case p <= 2:
			h.UpTo2++
		case p <= 3:
			h.UpTo3++
		default:
			h.Over3++
		}
	})
	return h
}

// CheapestN returns the n cheapest priced items across all records,
// ascending by price. Ties keep their original traversal order (stable
// sort). Items without a parseable price are skipped.
func CheapestN(days []models.RestaurantDay, n int) []PricedItem {
	var all []PricedItem
	forEachItem(days, func(day models.RestaurantDay, _ string, item models.MenuItem) {
		if p, ok := item.PriceValue(); ok {
			all = append(all, PricedItem{
				MenuItem:   item,
				Restaurant: day.Title.Rendered,
				PriceNum:   p,
			})
		}
	})
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PriceNum < all[j].PriceNum
	})
	if n < 0 {
		n = 0
	}
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// FavoritesSummary holds derived values over the favorites list.
type FavoritesSummary struct {
	Total    int     `json:"total"`
	AvgPrice float64 `json:"avgPrice"`
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
}

// ComputeFavorites summarizes the favorites list. Prices that fail to
// parse are skipped; with no priced favorites all price fields are 0.
func ComputeFavorites(favs []models.FavoriteItem) FavoritesSummary {
	s := FavoritesSummary{Total: len(favs)}
	var sum float64
	var priced int
	for _, f := range favs {
		p, ok := f.PriceValue()
		if !ok {
			continue
		}
		if priced == 0 || p < s.MinPrice {
			s.MinPrice = p
		}
		if priced == 0 || p > s.MaxPrice {
			s.MaxPrice = p
		}
		sum += p
		priced++
	}
	if priced > 0 {
		s.AvgPrice = sum / float64(priced)
	}
	return s
}

// FavoritesByRestaurant counts favorites per restaurant display name.
func FavoritesByRestaurant(favs []models.FavoriteItem) map[string]int {
	out := make(map[string]int)
	for _, f := range favs {
		out[f.Restaurant]++
	}
	return out
}

// FavoritesHistogram buckets favorites into (-inf,1], (1,2], (2,inf).
func FavoritesHistogram(favs []models.FavoriteItem) Histogram {
	var h Histogram
	for _, f := range favs {
		p, ok := f.PriceValue()
		if !ok {
			continue
		}
		switch {
		case p <= 1:
			h.UpTo1++
		case p <= 2:
			h.UpTo2++
		default:
			h.Over2++
		}
	}
	return h
}
