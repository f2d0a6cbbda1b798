package game

import "fmt"

// Theme identifies one of the fixed adventure settings a session
// can be created with. The set is closed; the oracle prompt for each
// theme lives in pkg/prompts.
type Theme string

const (
	ThemeFantasy Theme = "fantasy"
	ThemeSciFi   Theme = "sci-fi"
	ThemeMystery Theme = "mystery"
	ThemeHorror  Theme = "horror"
	ThemePirate  Theme = "pirate"
)

// Themes returns all valid themes in display order.
func Themes() []Theme {
	return []Theme{ThemeFantasy, ThemeSciFi, ThemeMystery, ThemeHorror, ThemePirate}
}

// ParseTheme validates a raw theme string from the transport boundary.
func ParseTheme(s string) (Theme, error) {
	for _, t := range Themes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown theme: %q", s)
}
