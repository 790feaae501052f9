// Package render turns enum column metadata into option lists for select
// and radio form controls.
package render

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/conduit-lang/enumtrait/internal/orm/schema"
)

// ErrUnknownEnumOptions is returned when a control has no option source:
// no explicit options and no enum metadata on the column.
var ErrUnknownEnumOptions = errors.New("can't find enum options")

// Control identifies the form control used for a column
type Control int

const (
	ControlDefault Control = iota
	ControlSelect
	ControlRadio
)

// String returns the control name
func (c Control) String() string {
	switch c {
	case ControlSelect:
		return "select"
	case ControlRadio:
		return "radio"
	default:
		return "default"
	}
}

// ControlFor picks the control for a column: enum columns default to a select
func ControlFor(col *schema.Field) Control {
	if col.IsEnum() {
		return ControlSelect
	}
	return ControlDefault
}

// Config tunes an option list
type Config struct {
	// Options overrides the column's enum options
	Options []schema.EnumOption
	// Only keeps entries whose label or value matches
	Only []string
	// Exclude drops entries whose label or value matches
	Exclude []string
	// Prompt adds a leading blank choice to selects
	Prompt string
	// ID is the base of radio input ids, defaulting to the column name
	ID string
}

// Choice is one rendered option
type Choice struct {
	Label    string
	Value    string
	Raw      interface{}
	Selected bool
	ID       string
}

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

func sanitizeLabel(raw string) string {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(labelPolicy.Sanitize(raw))
}

// valueString is the form a value takes in markup
func valueString(v interface{}) string {
	if v == nil {
		return ""
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

func source(col *schema.Field, cfg Config) ([]schema.EnumOption, error) {
	if cfg.Options != nil {
		return cfg.Options, nil
	}
	if col.IsEnum() {
		return col.EnumOptions(), nil
	}
	name := ""
	if col != nil {
		name = col.Name
	}
	return nil, fmt.Errorf("%w for %s", ErrUnknownEnumOptions, name)
}

func matches(opt schema.EnumOption, names []string) bool {
	value := valueString(opt.Value)
	for _, n := range names {
		if n == opt.Label || n == value {
			return true
		}
	}
	return false
}

func filter(opts []schema.EnumOption, cfg Config) []schema.EnumOption {
	out := make([]schema.EnumOption, 0, len(opts))
	for _, opt := range opts {
		if len(cfg.Only) > 0 && !matches(opt, cfg.Only) {
			continue
		}
		if matches(opt, cfg.Exclude) {
			continue
		}
		out = append(out, opt)
	}
	return out
}

func choices(col *schema.Field, current interface{}, cfg Config) ([]Choice, error) {
	opts, err := source(col, cfg)
	if err != nil {
		return nil, err
	}

	selected := ""
	if current != nil {
		selected = valueString(current)
	}

	out := make([]Choice, 0, len(opts)+1)
	for _, opt := range filter(opts, cfg) {
		value := valueString(opt.Value)
		out = append(out, Choice{
			Label:    sanitizeLabel(opt.Label),
			Value:    value,
			Raw:      opt.Value,
			Selected: current != nil && value == selected,
		})
	}
	return out, nil
}

// SelectOptions lists the choices of a select control for col
func SelectOptions(col *schema.Field, current interface{}, cfg Config) ([]Choice, error) {
	out, err := choices(col, current, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Prompt != "" {
		blank := Choice{Label: sanitizeLabel(cfg.Prompt), Selected: current == nil}
		out = append([]Choice{blank}, out...)
	}
	return out, nil
}

// RadioOptions lists the buttons of a radio group for col. Each button id
// is the base id joined to the value.
func RadioOptions(col *schema.Field, current interface{}, cfg Config) ([]Choice, error) {
	out, err := choices(col, current, cfg)
	if err != nil {
		return nil, err
	}

	base := cfg.ID
	if base == "" && col != nil {
		base = col.Name
	}
	for i := range out {
		out[i].ID = base + "_" + out[i].Value
	}
	return out, nil
}

// DisplayValue returns the label shown for value, or its plain form when
// the column has no label for it
func DisplayValue(col *schema.Field, value interface{}) string {
	if value == nil {
		return ""
	}
	if label, ok := col.EnumDisplay(value); ok {
		return label
	}
	return valueString(value)
}

// ParseDisplay maps a submitted label back to the raw value
func ParseDisplay(col *schema.Field, display string) (interface{}, bool) {
	return col.EnumValue(display)
}
