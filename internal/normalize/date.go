// Package normalize converts the loosely formatted values found in uploaded
// trip spreadsheets into the canonical forms used for storage and display.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical textual date: zero padded DD-MM-YYYY.
const DateLayout = "02-01-2006"

// maxSerial is 31-12-9999, the last day a spreadsheet can represent.
const maxSerial = 2958465

// RangeSeparator marks a period string such as "01-07-2025 - 31-07-2025".
const RangeSeparator = " - "

var (
	dmyPattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{2}|\d{4})$`)
	isoPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	serialText = regexp.MustCompile(`^\d+(\.\d+)?$`)

	spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

	fallbackLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"02.01.2006",
		"2 Jan 2006",
		"2 January 2006",
		"02-Jan-2006",
		"Jan 2, 2006",
		"January 2, 2006",
	}
)

// Date returns the canonical DD-MM-YYYY form of raw. Accepted inputs are
// time.Time, spreadsheet serial numbers (numeric types or digit-only
// strings), D-M-Y / D/M/Y with 2 or 4 digit years, ISO Y-M-D, and a handful
// of common layouts as a last resort. Strings containing RangeSeparator are
// rejected.
func Date(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case time.Time:
		if v.IsZero() {
			return "", false
		}
		return formatFields(v.Year(), v.Month(), v.Day()), true
	case *time.Time:
		if v == nil {
			return "", false
		}
		return Date(*v)
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case string:
		return fromText(v)
	default:
		return fromText(fmt.Sprint(v))
	}
}

// IsRange reports whether text denotes a period rather than a single day.
func IsRange(text string) bool {
	return strings.Contains(text, RangeSeparator)
}

// ParseCanonical parses a DD-MM-YYYY string into a UTC midnight time.
func ParseCanonical(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

// FormatDate renders t in the canonical layout using its own calendar fields.
func FormatDate(t time.Time) string {
	return formatFields(t.Year(), t.Month(), t.Day())
}

func fromText(text string) (string, bool) {
	if IsRange(text) {
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if serialText.MatchString(text) {
		serial, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return "", false
		}
		return fromSerial(serial)
	}

	if m := dmyPattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year = expandYear(year)
		}
		return fromFields(year, month, day)
	}

	if m := isoPattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return fromFields(year, month, day)
	}

	for _, layout := range fallbackLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return formatFields(parsed.Year(), parsed.Month(), parsed.Day()), true
		}
	}
	return "", false
}

// fromSerial converts a spreadsheet serial day number counted from
// 1899-12-30, so serial 1 is 31-12-1899.
func fromSerial(serial float64) (string, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 || serial > maxSerial {
		return "", false
	}
	// The fractional part is a time of day and never moves the calendar date.
	t := spreadsheetEpoch.AddDate(0, 0, int(math.Floor(serial)))
	return formatFields(t.Year(), t.Month(), t.Day()), true
}

func expandYear(year int) int {
	if year >= 70 {
		return 1900 + year
	}
	return 2000 + year
}

// fromFields rejects calendar overflow such as 31-02.
func fromFields(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return formatFields(year, time.Month(month), day), true
}

func formatFields(year int, month time.Month, day int) string {
	return fmt.Sprintf("%02d-%02d-%04d", day, int(month), year)
}
