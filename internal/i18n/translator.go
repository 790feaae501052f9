// Package i18n provides text-resource services that label enum values:
// an in-memory catalog with locale fallback, Rails style YAML locale files,
// a Redis hash store, and composition helpers.
package i18n

import (
	"errors"
	"sync"
)

// Translator returns the text stored under key within scope
type Translator interface {
	Translate(key string, scope []string) (string, error)
}

// Chain tries each translator in order and returns the first hit
type Chain []Translator

// Translate implements Translator
func (c Chain) Translate(key string, scope []string) (string, error) {
	var errs []error
	for _, t := range c {
		if t == nil {
			continue
		}
		text, err := t.Translate(key, scope)
		if err == nil {
			return text, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", missing("*", Key(key, scope))
	}
	return "", errors.Join(errs...)
}

// Cached memoizes the results of another translator. Hits and definite
// misses are kept; other errors, such as a store timeout, are retried on
// the next call.
type Cached struct {
	next    Translator
	entries sync.Map
}

type cachedEntry struct {
	text string
	err  error
}

// NewCached wraps next with a memo
func NewCached(next Translator) *Cached {
	return &Cached{next: next}
}

// Translate implements Translator
func (c *Cached) Translate(key string, scope []string) (string, error) {
	k := Key(key, scope)
	if v, ok := c.entries.Load(k); ok {
		e := v.(cachedEntry)
		return e.text, e.err
	}

	text, err := c.next.Translate(key, scope)
	if err == nil || isMiss(err) {
		c.entries.Store(k, cachedEntry{text: text, err: err})
	}
	return text, err
}

// isMiss reports whether err says only that the text is absent. A joined
// error is a miss when every part is.
func isMiss(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !isMiss(e) {
				return false
			}
		}
		return true
	}
	return errors.Is(err, ErrMissingTranslation)
}

// Reset drops every memoized entry
func (c *Cached) Reset() {
	c.entries.Range(func(key, value interface{}) bool {
		c.entries.Delete(key)
		return true
	})
}
