package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	numeralPattern = regexp.MustCompile(`[-+]?(\d+\.?\d*|\.\d+)`)
	nonCountChars  = regexp.MustCompile(`[^0-9-]`)
)

// Distance extracts the first numeral in raw and returns it as "N.NN km".
// Text without a numeral yields "0 km".
func Distance(raw string) string {
	value, ok := firstNumeral(raw)
	if !ok {
		return "0 km"
	}
	return fmt.Sprintf("%.2f km", value)
}

// DistanceValue is the numeric magnitude of a distance cell, 0 when none.
func DistanceValue(raw string) decimal.Decimal {
	match := numeralPattern.FindString(raw)
	if match == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(strings.TrimPrefix(match, "+"))
	if err != nil {
		return decimal.Zero
	}
	return value
}

// SumDistances adds the numeric value of every distance string.
// Unparseable entries contribute zero.
func SumDistances(values []string) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(DistanceValue(v))
	}
	return total
}

// FormatKilometres renders a total the way distances are displayed.
func FormatKilometres(value decimal.Decimal) string {
	return value.StringFixed(2) + " km"
}

// TripCount keeps only digits and minus signs and parses the rest.
// Empty, unparseable and negative values yield 0.
func TripCount(raw string) int {
	cleaned := nonCountChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func firstNumeral(raw string) (float64, bool) {
	match := numeralPattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
