package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// 1 299,99 groups thousands with spaces; everything else is one run.
	numericRun = regexp.MustCompile(`\d{1,3}(?:[ \x{00A0}]\d{3})+(?:[.,]\d+)?|\d[\d.,]*`)
	// RRP £129.99, Was: £129.99
	listPriceMention = regexp.MustCompile(`(?i)\b(?:rrp|was)\b[^\d£$€]*[£$€]?\s*(\d[\d.,]*)`)
)

// ParsePrice reads the first amount in text. Unparsable or non-positive
// amounts yield 0.
func ParsePrice(text string) float64 {
	loc := numericRun.FindStringIndex(text)
	if loc == nil {
		return 0
	}
	if before := text[:loc[0]]; strings.HasSuffix(before, "-") || strings.HasSuffix(before, "\u2212") {
		return 0
	}
	run := strings.TrimRight(text[loc[0]:loc[1]], ".,")
	run = strings.NewReplacer(" ", "", "\u00a0", "").Replace(run)

	v, err := strconv.ParseFloat(normalizeSeparators(run), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

// normalizeSeparators rewrites a digit run with mixed thousands and decimal
// separators into the form strconv expects.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastDot > lastComma {
			return strings.ReplaceAll(s, ",", "")
		}
		s = strings.ReplaceAll(s, ".", "")
		return decimalAtLast(s, ",")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return decimalAtLast(s, ".")
	}
	return s
}

func decimalAtLast(s, sep string) string {
	i := strings.LastIndex(s, sep)
	return strings.ReplaceAll(s[:i], sep, "") + "." + s[i+len(sep):]
}

// ListPriceFromName finds an "RRP £x" or "Was £x" amount inside a product
// name, as some retailers print the list price next to the title.
func ListPriceFromName(name string) float64 {
	m := listPriceMention.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	return ParsePrice(m[1])
}

// Discount returns the percentage saved against original, or nil when
// original is missing or not above current.
func Discount(current float64, original *float64) *float64 {
	if original == nil || *original <= current || *original <= 0 {
		return nil
	}
	d := (*original - current) / *original * 100
	return &d
}
