package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetops/distance-report/internal/normalize"
)

func TestDistance(t *testing.T) {
	cases := map[string]string{
		"123.45 km extra notes": "123.45 km",
		"12.5":                  "12.50 km",
		"approx 7 km":           "7.00 km",
		"-3.456":                "-3.46 km",
		".5 km":                 "0.50 km",
		"":                      "0 km",
		"n/a":                   "0 km",
	}
	for raw, want := range cases {
		assert.Equal(t, want, normalize.Distance(raw), "raw=%q", raw)
	}
}

func TestSumDistances_ignoresUnparseable(t *testing.T) {
	total := normalize.SumDistances([]string{"12.50 km", "not a number", "7.5"})

	assert.Equal(t, "20.00 km", normalize.FormatKilometres(total))
}

func TestSumDistances_empty(t *testing.T) {
	assert.Equal(t, "0.00 km", normalize.FormatKilometres(normalize.SumDistances(nil)))
}

func TestTripCount(t *testing.T) {
	cases := map[string]int{
		"3":         3,
		" 12 trips": 12,
		"1,204":     1204,
		"":          0,
		"none":      0,
		"-":         0,
		"-2":        0,
		"1-2":       0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, normalize.TripCount(raw), "raw=%q", raw)
	}
}
