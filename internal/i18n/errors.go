package i18n

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTranslation is returned when no text is stored for a key
var ErrMissingTranslation = errors.New("missing translation")

func missing(locale, key string) error {
	return fmt.Errorf("%w: %s.%s", ErrMissingTranslation, locale, key)
}

// Key joins scope and key into a dotted translation key. Empty scope
// segments are skipped.
func Key(key string, scope []string) string {
	parts := make([]string, 0, len(scope)+1)
	for _, s := range scope {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(append(parts, key), ".")
}
