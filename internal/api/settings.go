package api

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/starford/menza/internal/storage"
)

// SettingsKey is the storage key for display settings.
const SettingsKey = "settings"

// Settings holds the user-facing display toggles. They only affect how
// clients render menus; the server never interprets them beyond storing.
type Settings struct {
	ShowPrices            bool `json:"showPrices"`
	ShowAllergens         bool `json:"showAllergens"`
	ShowWeights           bool `json:"showWeights"`
	CompactView           bool `json:"compactView"`
	DailyNotifications    bool `json:"dailyNotifications"`
	FavoriteNotifications bool `json:"favoriteNotifications"`
}

// DefaultSettings returns the settings used when nothing is stored yet.
func DefaultSettings() Settings {
	return Settings{
		ShowPrices:            true,
		ShowAllergens:         true,
		FavoriteNotifications: true,
	}
}

// loadSettings reads settings from the provider. A missing key yields the
// defaults; unreadable state resets to defaults with a warning rather
// than failing the request.
func loadSettings(provider storage.Provider) Settings {
	data, err := provider.Get(SettingsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("settings read failed, using defaults", slog.String("error", err.Error()))
		}
		return DefaultSettings()
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("settings state corrupt, using defaults", slog.String("error", err.Error()))
		return DefaultSettings()
	}
	return s
}

func saveSettings(provider storage.Provider, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return provider.Set(SettingsKey, data)
}
