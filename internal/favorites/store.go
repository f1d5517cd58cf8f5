// Package favorites implements the persistent favorites list: an ordered
// collection of favorited menu items with toggle/remove/clear/sort
// operations and CSV/JSON export. Every mutation is persisted to the
// storage backend before it returns.
package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/menza/internal/apperr"
	"github.com/starford/menza/internal/models"
	"github.com/starford/menza/internal/storage"
)

// StorageKey is the single key the favorites list lives under.
const StorageKey = "favorites"

// Change event kinds passed to the change callback.
const (
	EventAdded    = "favorite.added"
	EventRemoved  = "favorite.removed"
	EventCleared  = "favorites.cleared"
	EventReloaded = "favorites.reloaded"
)

// ChangeFunc observes store mutations. item is nil for cleared/reloaded.
type ChangeFunc func(kind string, item *models.FavoriteItem)

// Store is the favorites list. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	provider storage.Provider
	items    []models.FavoriteItem
	onChange ChangeFunc
	collator *collate.Collator
}

// NewStore loads the favorites list from the provider. A missing key
// yields an empty list; a corrupt stored value is reset to empty with a
// warning, never an error.
func NewStore(provider storage.Provider) (*Store, error) {
	s := &Store{
		provider: provider,
		collator: collate.New(language.Croatian),
	}
	items, err := load(provider)
	if err != nil {
		return nil, err
	}
	s.items = items
	return s, nil
}

// OnChange registers the mutation observer. Call before serving traffic.
func (s *Store) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func load(provider storage.Provider) ([]models.FavoriteItem, error) {
	data, err := provider.Get(StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.FavoriteItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("favorites: load: %w", err)
	}
	var items []models.FavoriteItem
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("favorites: stored value is corrupt, resetting to empty",
			slog.String("error", err.Error()))
		return []models.FavoriteItem{}, nil
	}
	if items == nil {
		items = []models.FavoriteItem{}
	}
	return items, nil
}

// List returns a copy of the favorites in their current order.
func (s *Store) List() []models.FavoriteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FavoriteItem, len(s.items))
	copy(out, s.items)
	return out
}

// Toggle adds the item when its id is not yet favorited and removes the
// first favorite with that id otherwise. Returns whether the item is a
// favorite after the call.
func (s *Store) Toggle(item models.MenuItem, restaurant string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.items {
		if f.ID == item.ID {
			removed := s.items[i]
			s.items = append(s.items[:i], s.items[i+1:]...)
			if err := s.persistLocked(); err != nil {
				return true, err
			}
			s.notifyLocked(EventRemoved, &removed)
			return false, nil
		}
	}

	fav := models.FavoriteItem{
		MenuItem:   item,
		Restaurant: restaurant,
		DateAdded:  time.Now().UTC().Format(time.RFC3339),
	}
	s.items = append(s.items, fav)
	if err := s.persistLocked(); err != nil {
		return false, err
	}
	s.notifyLocked(EventAdded, &fav)
	return true, nil
}

// Remove deletes the favorite matching the exact (id, dateAdded) pair.
// The pair match (rather than id alone) keeps removal well-defined even
// when an externally edited favorites file contains duplicate ids.
func (s *Store) Remove(id, dateAdded string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.items {
		if f.ID == id && f.DateAdded == dateAdded {
			removed := s.items[i]
			s.items = append(s.items[:i], s.items[i+1:]...)
			if err := s.persistLocked(); err != nil {
				return err
			}
			s.notifyLocked(EventRemoved, &removed)
			return nil
		}
	}
	return fmt.Errorf("favorites: remove %s@%s: %w", id, dateAdded, apperr.ErrNotFound)
}

// Clear removes every favorite.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []models.FavoriteItem{}
	if err := s.persistLocked(); err != nil {
		return err
	}
	s.notifyLocked(EventCleared, nil)
	return nil
}

// SortByPrice orders favorites ascending by numeric price; items whose
// price does not parse sort last. The new order is persisted.
func (s *Store) SortByPrice() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.items, func(i, j int) bool {
		pa, okA := s.items[i].PriceValue()
		pb, okB := s.items[j].PriceValue()
		if okA != okB {
			return okA
		}
		return pa < pb
	})
	return s.persistLocked()
}

// SortByName orders favorites by title under Croatian collation and
// persists the new order.
func (s *Store) SortByName() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.items, func(i, j int) bool {
		return s.collator.CompareString(s.items[i].Title, s.items[j].Title) < 0
	})
	return s.persistLocked()
}

// Reload re-reads the list from the backend. Returns true when the
// in-memory state actually changed (used by the file watcher to suppress
// events for our own writes).
func (s *Store) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := load(s.provider)
	if err != nil {
		return false, err
	}
	if equal(items, s.items) {
		return false, nil
	}
	s.items = items
	s.notifyLocked(EventReloaded, nil)
	return true, nil
}

func (s *Store) persistLocked() error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("favorites: marshal: %w", err)
	}
	if err := s.provider.Set(StorageKey, data); err != nil {
		return fmt.Errorf("favorites: persist: %w", err)
	}
	return nil
}

func (s *Store) notifyLocked(kind string, item *models.FavoriteItem) {
	if s.onChange != nil {
		s.onChange(kind, item)
	}
}

func equal(a, b []models.FavoriteItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
