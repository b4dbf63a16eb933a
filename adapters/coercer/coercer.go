package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"profitpulse/domain/table"
)

// TypeCoercer applies the per-role cleaning rules to raw text cells
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	// ParenthesesNegative reads "(500.00)" as -500 in monetary cells.
	// Off by default: the stripping rule only removes "$", "," and spaces.
	ParenthesesNegative bool `json:"parentheses_negative"`
	// DateLayouts are tried in order; the first successful parse wins.
	DateLayouts []string `json:"date_layouts"`
}

// DefaultDateLayouts covers the date shapes spreadsheet exports produce
var DefaultDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"01-02-2006",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
}

// naTokens mirror the tokens a dataframe reader treats as missing
var naTokens = map[string]bool{
	"":          true,
	"#N/A":      true,
	"#N/A N/A":  true,
	"#NA":       true,
	"-1.#IND":   true,
	"-1.#QNAN":  true,
	"-NaN":      true,
	"-nan":      true,
	"1.#IND":    true,
	"1.#QNAN":   true,
	"<NA>":      true,
	"N/A":       true,
	"NA":        true,
	"NULL":      true,
	"NaN":       true,
	"None":      true,
	"n/a":       true,
	"nan":       true,
	"null":      true,
}

// DefaultCoercionConfig returns literal-parity defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		ParenthesesNegative: false,
		DateLayouts:         DefaultDateLayouts,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if len(config.DateLayouts) == 0 {
		config.DateLayouts = DefaultDateLayouts
	}
	return &TypeCoercer{config: config}
}

// IsNAToken reports whether a raw cell denotes a missing value
func IsNAToken(raw string) bool {
	return naTokens[strings.TrimSpace(raw)]
}

// InferColumn turns raw source cells into values. When every present cell is a
// plain number the column becomes numeric, otherwise it stays textual.
func (c *TypeCoercer) InferColumn(raw []string) []table.Value {
	numbers := make([]float64, len(raw))
	numeric := true
	for i, cell := range raw {
		if IsNAToken(cell) {
			continue
		}
		n, ok := parseFinite(strings.TrimSpace(cell))
		if !ok {
			numeric = false
			break
		}
		numbers[i] = n
	}

	out := make([]table.Value, len(raw))
	for i, cell := range raw {
		switch {
		case IsNAToken(cell):
			out[i] = table.NewMissingValue()
		case numeric:
			out[i] = table.NewNumericValue(numbers[i])
		default:
			out[i] = table.NewStringValue(cell)
		}
	}
	return out
}

// CoerceMonetary strips "$", "," and spaces and parses the remainder
func (c *TypeCoercer) CoerceMonetary(raw string) table.Value {
	clean := strings.TrimSpace(raw)

	negative := false
	if c.config.ParenthesesNegative && strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = clean[1 : len(clean)-1]
		negative = true
	}

	clean = strings.NewReplacer("$", "", ",", "", " ", "").Replace(clean)
	n, ok := parseFinite(clean)
	if !ok {
		return table.NewMissingValue()
	}
	if negative {
		n = -n
	}
	return table.NewNumericValue(n)
}

// CoercePercentage strips "%" and returns the value as a fraction
func (c *TypeCoercer) CoercePercentage(raw string) table.Value {
	clean := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	n, ok := parseFinite(clean)
	if !ok {
		return table.NewMissingValue()
	}
	return table.NewNumericValue(n / 100)
}

// CoerceDate parses a calendar date or timestamp
func (c *TypeCoercer) CoerceDate(raw string) table.Value {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return table.NewMissingValue()
	}
	for _, layout := range c.config.DateLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return table.NewTimestampValue(t)
		}
	}
	return table.NewMissingValue()
}

// Coerce dispatches a raw cell to the rule for role. Text and derived cells pass through.
func (c *TypeCoercer) Coerce(role table.Role, raw string) table.Value {
	if IsNAToken(raw) {
		return table.NewMissingValue()
	}
	switch role {
	case table.RoleMonetary:
		return c.CoerceMonetary(raw)
	case table.RolePercentage:
		return c.CoercePercentage(raw)
	case table.RoleDate:
		return c.CoerceDate(raw)
	default:
		return table.NewStringValue(raw)
	}
}

// CoerceNumericCell is the chart-time safety pass. Numbers pass through;
// strings lose "$" and "," and percent strings are divided by 100.
func CoerceNumericCell(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case table.Value:
		if v.Missing() {
			return 0, false
		}
		if n, ok := v.Float64(); ok {
			return n, true
		}
		if s, ok := v.Text(); ok {
			return CoerceNumericCell(s)
		}
		return 0, false
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return CoerceNumericCell(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		clean := strings.TrimSpace(v)
		percent := strings.Contains(clean, "%")
		clean = strings.NewReplacer("$", "", ",", "", "%", "").Replace(clean)
		n, ok := parseFinite(strings.TrimSpace(clean))
		if !ok {
			return 0, false
		}
		if percent {
			n /= 100
		}
		return n, true
	}
	return 0, false
}

// parseFinite parses a float and rejects NaN and infinities
func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
