package i18n

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
)

// Catalog is an in-memory store of texts per locale. Lookups for a locale
// without the key fall back to the closest supported locale, then to the
// catalog's fallback locale.
type Catalog struct {
	mu       sync.RWMutex
	fallback language.Tag
	tags     []language.Tag
	texts    map[language.Tag]map[string]string
	matcher  language.Matcher
}

// NewCatalog creates an empty catalog
func NewCatalog(fallback language.Tag) *Catalog {
	return &Catalog{
		fallback: fallback,
		tags:     []language.Tag{fallback},
		texts:    map[language.Tag]map[string]string{fallback: {}},
	}
}

// Add stores text under the dotted key for locale
func (c *Catalog) Add(locale, key, text string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	texts, ok := c.texts[tag]
	if !ok {
		texts = make(map[string]string)
		c.texts[tag] = texts
		c.tags = append(c.tags, tag)
		c.matcher = nil
	}
	texts[key] = text
	return nil
}

// Locales returns the locales holding texts, fallback first
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, len(c.tags))
	for i, tag := range c.tags {
		out[i] = tag.String()
	}
	return out
}

// Lookup returns the text for key in the locale closest to locale
func (c *Catalog) Lookup(locale, key string) (string, error) {
	want, err := language.Parse(locale)
	if err != nil {
		want = c.fallback
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.matcher == nil {
		c.matcher = language.NewMatcher(c.tags)
	}

	_, idx, confidence := c.matcher.Match(want)
	candidates := []language.Tag{c.fallback}
	if confidence != language.No && idx < len(c.tags) {
		candidates = []language.Tag{c.tags[idx], c.fallback}
	}

	for _, tag := range candidates {
		if text, ok := c.texts[tag][key]; ok {
			return text, nil
		}
	}
	return "", missing(want.String(), key)
}

// Locale returns a Translator bound to locale
func (c *Catalog) Locale(locale string) *LocaleTranslator {
	return &LocaleTranslator{catalog: c, locale: locale}
}

// LocaleTranslator reads a catalog in one locale
type LocaleTranslator struct {
	catalog *Catalog
	locale  string
}

// Translate implements Translator
func (t *LocaleTranslator) Translate(key string, scope []string) (string, error) {
	return t.catalog.Lookup(t.locale, Key(key, scope))
}
