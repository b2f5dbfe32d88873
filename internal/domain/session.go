package domain

// Client storage keys, shared with the browser build of the app.
const (
	StorageKeyLoggedIn = "isLoggedIn"
	StorageKeyDarkMode = "darkMode"
)

// Session is the binary logged-in flag. There is no identity or expiry.
type Session struct {
	Authenticated bool `json:"authenticated"`
}

// ThemePreference is the persisted dark/light flag.
type ThemePreference struct {
	Dark bool `json:"dark"`
}

// Attribute returns the value of the data-theme display attribute.
func (t ThemePreference) Attribute() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

// BackgroundColor returns the page background matching the theme.
func (t ThemePreference) BackgroundColor() string {
	if t.Dark {
		return "#121212"
	}
	return "#f1f1f1"
}
