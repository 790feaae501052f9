package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders rows under bold headers with aligned columns
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{writer: w, headers: headers, noColor: noColor}
}

// AddRow adds a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	head := style(t.noColor, color.Bold, color.FgCyan)
	rule := style(t.noColor, color.FgHiBlack)

	t.line(widths, t.headers, head)
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	t.line(widths, seps, rule)
	for _, row := range t.rows {
		t.line(widths, row, nil)
	}
}

func (t *Table) line(widths []int, cells []string, c *color.Color) {
	last := len(cells) - 1
	for i, cell := range cells {
		if i < last {
			cell = padRight(cell, widths[i]) + "  "
		}
		if c != nil {
			c.Fprint(t.writer, cell)
		} else {
			fmt.Fprint(t.writer, cell)
		}
	}
	fmt.Fprintln(t.writer)
}

// KeyValueTable renders aligned "key: value" lines
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render writes the pairs, indented by indent spaces
func (t *KeyValueTable) Render(indent int) {
	keyWidth := 0
	for _, k := range t.keys {
		if w := width(k) + 1; w > keyWidth {
			keyWidth = w
		}
	}

	cyan := style(t.noColor, color.FgCyan)
	pad := strings.Repeat(" ", indent)
	for i, k := range t.keys {
		fmt.Fprint(t.writer, pad)
		cyan.Fprint(t.writer, padRight(k+":", keyWidth))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

// Header renders a title underlined to its width
func Header(w io.Writer, title string, noColor bool) {
	style(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	style(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", width(title)))
}

func style(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

// padRight pads s with spaces to the target display width
func padRight(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
