package schema

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ============================================================================
// HEADER MATCHING
// ============================================================================
// Matches a CSV header row against the schema layout.
// Required columns are matched exactly after trimming whitespace and a
// leading byte-order mark. Extra columns are reported, never fatal.
// ============================================================================

// ErrMissingColumns is returned when a required column is absent.
var ErrMissingColumns = errors.New("missing required columns")

// ErrDuplicateColumn is returned when a required column appears twice.
var ErrDuplicateColumn = errors.New("duplicate column")

const bom = "\uFEFF"

// HeaderMatch is the outcome of matching a header row against a Config.
type HeaderMatch struct {
	Names   []string        // cleaned header names, in file order
	Index   map[string]int  // column key → position in the row
	Skipped []SkippedColumn // columns outside the schema
}

// MatchHeader validates a header row. Every column in c.Columns must be present.
func (c Config) MatchHeader(headers []string) (*HeaderMatch, error) {
	m := &HeaderMatch{
		Names: make([]string, len(headers)),
		Index: make(map[string]int, len(c.Columns)),
	}

	byHeader := make(map[string]ColumnMeta, len(c.Columns))
	for _, col := range c.Columns {
		byHeader[col.Header] = col
	}

	for i, h := range headers {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimSpace(strings.TrimPrefix(name, bom))
		}
		m.Names[i] = name

		col, ok := byHeader[name]
		if !ok {
			m.Skipped = append(m.Skipped, SkippedColumn{
				Column: name,
				Reason: "not part of the " + c.Name + " schema",
			})
			continue
		}
		if _, dup := m.Index[col.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		m.Index[col.Key] = i
	}

	var missing []string
	for _, col := range c.Columns {
		if _, ok := m.Index[col.Key]; ok {
			continue
		}
		missing = append(missing, describeMissing(col.Header, m.Names))
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return m, nil
}

// describeMissing names a missing header and, when a differently cased or
// spaced variant is present, points at it.
func describeMissing(want string, have []string) string {
	target := ToSnakeCase(want)
	for _, h := range have {
		if h != want && ToSnakeCase(h) == target {
			return fmt.Sprintf("%s (found %q)", want, h)
		}
	}
	return want
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// ToSnakeCase converts "Column Name" or "columnName" → "column_name".
func ToSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_")
	return s
}

// ToDisplayName cleans a key for human display.
// "extreme_weather_events" → "Extreme Weather Events"
func ToDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
