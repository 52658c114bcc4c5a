// Package ui holds the terminal color themes used by the CLI, the REPL and
// the usage text. Every color is an ANSI escape sequence; the NoColor theme
// maps every role to the empty string.
package ui

import (
	"os"
	"sync"
)

// Theme maps display roles to escape sequences.
type Theme struct {
	Name string

	// Index colors the "S(i)" label in front of each term.
	Index string
	// Value colors the term itself.
	Value string
	// Marker highlights calls that carried a control signal.
	Marker string
	// Muted is used for hints, defaults and truncation notes.
	Muted string

	Success string
	Warning string
	Error   string

	Bold  string
	Reset string
}

var (
	DarkTheme = Theme{
		Name:    "dark",
		Index:   "\033[38;5;39m",  // bright blue
		Value:   "\033[38;5;255m", // white
		Marker:  "\033[38;5;213m", // pink
		Muted:   "\033[38;5;245m", // grey
		Success: "\033[38;5;82m",
		Warning: "\033[38;5;220m",
		Error:   "\033[38;5;196m",
		Bold:    "\033[1m",
		Reset:   "\033[0m",
	}

	LightTheme = Theme{
		Name:    "light",
		Index:   "\033[38;5;27m",
		Value:   "\033[38;5;232m",
		Marker:  "\033[38;5;126m",
		Muted:   "\033[38;5;240m",
		Success: "\033[38;5;28m",
		Warning: "\033[38;5;130m",
		Error:   "\033[38;5;124m",
		Bold:    "\033[1m",
		Reset:   "\033[0m",
	}

	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name ("dark", "light", "none"). Unknown
// names select the dark theme.
func SetTheme(name string) {
	SetCurrentTheme(ThemeByName(name))
}

// ThemeByName looks a theme up without activating it.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme
	case "none":
		return NoColorTheme
	default:
		return DarkTheme
	}
}

// InitTheme selects the startup theme. Colors are disabled when noColor is
// set or when NO_COLOR is present in the environment (https://no-color.org/).
// FIBSEQ_THEME may name "light" or "dark".
func InitTheme(noColor bool) {
	if noColor {
		SetCurrentTheme(NoColorTheme)
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv("FIBSEQ_THEME"))
}
