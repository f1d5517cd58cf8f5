// Package models defines the domain types for Menza.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Section names inside a meal, in upstream order.
const (
	SectionMenu    = "menu"
	SectionVege    = "vege_menu"
	SectionIzbor   = "izbor"
	SectionPrilozi = "prilozi"
)

// SectionNames lists every section in display order.
var SectionNames = []string{SectionMenu, SectionVege, SectionIzbor, SectionPrilozi}

// Meal names.
const (
	MealRucak  = "rucak"
	MealVecera = "vecera"
)

// MealNames lists the meals in display order (lunch, dinner).
var MealNames = []string{MealRucak, MealVecera}

// MenuItem is one dish as published by the upstream menus API.
// Price is a decimal string without a currency unit; Allergens is a
// comma-separated list of codes where a trailing '*' marks traces.
type MenuItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Allergens string `json:"allergens"`
	Weight    string `json:"weight,omitempty"`
}

// PriceValue parses the price string. ok is false when the price is
// missing or not a number; such items are skipped by every price-based
// computation but remain visible in unfiltered listings.
func (m MenuItem) PriceValue() (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(m.Price), 64)
	if err != nil {
		return 0, false
	}
	return p, true
}

// HasAllergens reports whether the item declares any allergens.
// The upstream uses "-" (and sometimes an empty string) for none.
func (m MenuItem) HasAllergens() bool {
	s := strings.TrimSpace(m.Allergens)
	return s != "" && s != "-"
}

// AllergenCodes returns the item's allergen codes with whitespace and the
// trailing trace marker '*' stripped. Returns nil for items without
// allergens.
func (m MenuItem) AllergenCodes() []string {
	if !m.HasAllergens() {
		return nil
	}
	parts := strings.Split(m.Allergens, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		code := strings.TrimSuffix(strings.TrimSpace(p), "*")
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// MenuProducts groups the item lists of one meal. Any section may be
// absent; an absent section decodes to an empty slice.
type MenuProducts struct {
	Menu    []MenuItem `json:"menu,omitempty"`
	Vege    []MenuItem `json:"vege_menu,omitempty"`
	Izbor   []MenuItem `json:"izbor,omitempty"`
	Prilozi []MenuItem `json:"prilozi,omitempty"`
}

// Section returns the item list for a section name.
func (p *MenuProducts) Section(name string) []MenuItem {
	switch name {
	case SectionMenu:
		return p.Menu
	case SectionVege:
		return p.Vege
	case SectionIzbor:
		return p.Izbor
	case SectionPrilozi:
		return p.Prilozi
	}
	return nil
}

// SetSection replaces the item list for a section name.
func (p *MenuProducts) SetSection(name string, items []MenuItem) {
	switch name {
	case SectionMenu:
		p.Menu = items
	case SectionVege:
		p.Vege = items
	case SectionIzbor:
		p.Izbor = items
	case SectionPrilozi:
		p.Prilozi = items
	}
}

// MealTypes maps meal names to their sections. Either meal may be absent.
type MealTypes struct {
	Rucak  *MenuProducts `json:"rucak,omitempty"`
	Vecera *MenuProducts `json:"vecera,omitempty"`
}

// Meal returns the products for a meal name, or nil when absent.
func (t *MealTypes) Meal(name string) *MenuProducts {
	switch name {
	case MealRucak:
		return t.Rucak
	case MealVecera:
		return t.Vecera
	}
	return nil
}

// SetMeal replaces the products for a meal name.
func (t *MealTypes) SetMeal(name string, p *MenuProducts) {
	switch name {
	case MealRucak:
		t.Rucak = p
	case MealVecera:
		t.Vecera = p
	}
}

// RenderedTitle mirrors the WordPress rendered-title envelope.
type RenderedTitle struct {
	Rendered string `json:"rendered"`
}

// DayMeta carries the canonical date and the nested menu data.
type DayMeta struct {
	MenuDate     string    `json:"menu_date"`
	MenuProducts MealTypes `json:"menu_products"`
}

// RestaurantDay is one published menu record: one restaurant, one date.
// ID is only unique within a single upstream response.
type RestaurantDay struct {
	ID    json.Number   `json:"id"`
	Title RenderedTitle `json:"title"`
	Meta  DayMeta       `json:"meta"`
}

// FavoriteItem is a favorited MenuItem tagged with the source restaurant
// display name and the moment it was added (RFC 3339).
type FavoriteItem struct {
	MenuItem
	Restaurant string `json:"restaurant"`
	DateAdded  string `json:"dateAdded"`
}
