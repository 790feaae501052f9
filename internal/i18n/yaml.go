package i18n

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a locale file into the catalog. The top level maps locale
// names to nested sections; nested keys are flattened with dots, so
//
//	en:
//	  post:
//	    status:
//	      draft: Work in progress
//
// stores "post.status.draft" for locale "en".
func (c *Catalog) LoadYAML(r io.Reader) error {
	var doc map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode locale file: %w", err)
	}

	locales := make([]string, 0, len(doc))
	for locale := range doc {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		flat := make(map[string]string)
		if err := flatten("", doc[locale], flat); err != nil {
			return fmt.Errorf("locale %s: %w", locale, err)
		}
		for key, text := range flat {
			if err := c.Add(locale, key, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadFiles reads each locale file in order; later files override earlier ones
func (c *Catalog) LoadFiles(paths ...string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open locale file: %w", err)
		}
		err = c.LoadYAML(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func flatten(prefix string, node interface{}, out map[string]string) error {
	switch n := node.(type) {
	case map[string]interface{}:
		for k, v := range n {
			if err := flatten(join(prefix, k), v, out); err != nil {
				return err
			}
		}
	case map[interface{}]interface{}:
		for k, v := range n {
			if err := flatten(join(prefix, fmt.Sprint(k)), v, out); err != nil {
				return err
			}
		}
	case nil:
		// empty section
	case []interface{}:
		return fmt.Errorf("unexpected sequence at %q", prefix)
	default:
		if prefix == "" {
			return fmt.Errorf("locale root must be a mapping")
		}
		out[prefix] = fmt.Sprint(n)
	}
	return nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
