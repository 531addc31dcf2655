// Package prefs holds locally persisted client preferences. Preferences
// never leave the machine; they shape presentation only.
package prefs

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/usstm/unionclient/internal/platform/errors"
)

// Supported UI themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Supported locales. These track the locales the message catalogs ship.
var supportedLocales = []string{"en-CA", "fr-CA"}

// ErrNotFound is returned by stores when no preferences were saved yet.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "preferences not found")

// Preferences are the user's persisted client settings.
type Preferences struct {
	Locale string
	Theme  string
}

// Defaults returns the preferences used before the user saves any.
func Defaults() Preferences {
	return Preferences{Locale: "en-CA", Theme: ThemeLight}
}

// Normalize trims and lowercases the theme and canonicalizes locale casing.
func Normalize(p Preferences) Preferences {
	p.Theme = strings.ToLower(strings.TrimSpace(p.Theme))
	p.Locale = canonicalLocale(strings.TrimSpace(p.Locale))
	return p
}

// Validate reports whether the preferences can be persisted.
func Validate(p Preferences) error {
	if !isSupportedLocale(p.Locale) {
		return apperrors.WithMetadata(apperrors.CodePrefsInvalidLocale,
			fmt.Sprintf("unsupported locale %q", p.Locale),
			map[string]string{"locale": p.Locale})
	}
	switch p.Theme {
	case ThemeLight, ThemeDark:
	default:
		return apperrors.WithMetadata(apperrors.CodePrefsInvalidTheme,
			fmt.Sprintf("unsupported theme %q", p.Theme),
			map[string]string{"theme": p.Theme})
	}
	return nil
}

// Store persists preferences across runs.
type Store interface {
	Get(ctx context.Context) (Preferences, error)
	Put(ctx context.Context, p Preferences) error
	Close() error
}

func canonicalLocale(locale string) string {
	for _, supported := range supportedLocales {
		if strings.EqualFold(locale, supported) {
			return supported
		}
	}
	return locale
}

func isSupportedLocale(locale string) bool {
	for _, supported := range supportedLocales {
		if locale == supported {
			return true
		}
	}
	return false
}
