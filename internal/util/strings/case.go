package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase to snake_case
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				// Add underscore before uppercase letter if:
				// 1. Previous char is lowercase or a digit
				// 2. Next char is lowercase (for acronyms like HTTPRequest -> http_request)
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					result.WriteRune('_')
				} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Underscore turns an arbitrary token into a lowercase, underscore separated
// word ("BlueGreen" -> "blue_green", "in-progress" -> "in_progress").
func Underscore(s string) string {
	s = strings.ReplaceAll(s, "::", "/")
	s = ToSnakeCase(s)

	var result strings.Builder
	lastUnderscore := false
	for _, r := range s {
		if r == '-' || r == ' ' || r == '_' {
			if !lastUnderscore && result.Len() > 0 {
				result.WriteRune('_')
			}
			lastUnderscore = true
			continue
		}
		result.WriteRune(unicode.ToLower(r))
		lastUnderscore = false
	}
	return strings.TrimSuffix(result.String(), "_")
}

// Humanize produces a display form of an underscored token: underscores
// become spaces, a trailing "_id" is dropped and the first letter is
// capitalized ("excellent_one" -> "Excellent one").
func Humanize(s string) string {
	s = strings.TrimSuffix(s, "_id")
	s = strings.TrimLeft(s, "_")
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))

	runes := []rune(s)
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Pluralize adds simple English pluralization
func Pluralize(s string) string {
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "s") ||
		strings.HasSuffix(s, "x") ||
		strings.HasSuffix(s, "z") ||
		strings.HasSuffix(s, "ch") ||
		strings.HasSuffix(s, "sh") {
		return s + "es"
	}
	if strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])) {
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}

// TableName converts a resource name to a table name (snake_case plural)
func TableName(resourceName string) string {
	return Pluralize(ToSnakeCase(resourceName))
}
