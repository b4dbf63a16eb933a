package coercer

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"profitpulse/domain/table"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders a value as "$1,234.50". Strings may carry "$", ","
// spaces or a parenthesized negative. Anything unusable renders as "$0.00".
func FormatCurrency(value interface{}) string {
	n, ok := currencyAmount(value)
	if !ok {
		return "$0.00"
	}
	return printer.Sprintf("$%.2f", n)
}

// FormatPercentage renders a fraction as "12.50%". Strings are read as percent
// text ("12.5%" or "12.5") and divided by 100 first.
func FormatPercentage(value interface{}) string {
	var n float64
	switch v := value.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(v, "%", "")), 64)
		if err != nil {
			return "0.00%"
		}
		n = f / 100
	case table.Value:
		if s, ok := v.Text(); ok {
			return FormatPercentage(s)
		}
		f, ok := v.Float64()
		if !ok {
			return "0.00%"
		}
		n = f
	default:
		f, ok := CoerceNumericCell(value)
		if !ok {
			return "0.00%"
		}
		n = f
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0.00%"
	}
	return strconv.FormatFloat(n*100, 'f', 2, 64) + "%"
}

func currencyAmount(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case string:
		clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(v))
		if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
			clean = "-" + clean[1:len(clean)-1]
		}
		return parseFinite(clean)
	case table.Value:
		if s, ok := v.Text(); ok {
			return currencyAmount(s)
		}
		return v.Float64()
	default:
		return CoerceNumericCell(value)
	}
}
