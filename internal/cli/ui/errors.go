package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Details      []string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized message with suggestions and help commands
//
// Example output:
//
//	❌ UNKNOWN FIELD: Post.stauts
//	   Did you mean: status?
//
//	   → List enum fields: enumctl resolve models.yaml
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var attr color.Attribute
	var symbol string
	switch opts.Level {
	case ErrorLevelWarning:
		attr, symbol = color.FgYellow, "⚠️"
	case ErrorLevelInfo:
		attr, symbol = color.FgCyan, "ℹ️"
	default:
		attr, symbol = color.FgRed, "❌"
	}

	header := style(opts.NoColor, attr, color.Bold)
	body := style(opts.NoColor, attr)

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	for _, d := range opts.Details {
		body.Fprintf(&b, "   %s\n", d)
	}

	if len(opts.Suggestions) > 0 {
		style(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := style(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return style(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// UnknownModelError reports a model missing from the manifest
func UnknownModelError(name string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "UNKNOWN MODEL",
		Problem:      name,
		Suggestions:  Suggest(name, known),
		HelpCommands: []string{"List models and enums: enumctl resolve <manifest>"},
		NoColor:      noColor,
	})
}

// UnknownFieldError reports a field that is not an enum field of model
func UnknownFieldError(model, field string, known []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context:      "UNKNOWN FIELD",
		Problem:      model + "." + field,
		Suggestions:  Suggest(field, known),
		HelpCommands: []string{"List models and enums: enumctl resolve <manifest>"},
		NoColor:      noColor,
	})
}

// DeclarationError reports a manifest that failed to apply
func DeclarationError(err error, noColor bool) string {
	return FormatError(ErrorOptions{
		Context: "DECLARATION FAILED",
		Problem: err.Error(),
		HelpCommands: []string{
			"Check aliases and labels match the number of values",
			"Get help: enumctl resolve --help",
		},
		NoColor: noColor,
	})
}

// InvalidRecordError reports validation failures of one record
func InvalidRecordError(label string, messages []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context: "INVALID RECORD",
		Problem: label,
		Details: messages,
		NoColor: noColor,
	})
}

// ConfigError reports an unusable configuration
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat enumctl.yaml",
			"Get help: enumctl --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}
