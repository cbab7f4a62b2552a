package models

// Preference keys persisted in the key-value store.
const (
	PrefDarkMode         = "ui.dark_mode"
	PrefSelectedCurrency = "finance.selected_currency"
)

// Preferences are the UI settings that survive restarts.
type Preferences struct {
	DarkMode         bool   `json:"darkMode"`
	SelectedCurrency string `json:"selectedCurrency"`
}
