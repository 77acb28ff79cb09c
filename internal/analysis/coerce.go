package analysis

import (
	"strconv"
	"strings"
	"time"

	"salescope/internal/models"
)

// Candidate layouts for best-effort, locale-agnostic date parsing, most
// specific first. Purely numeric cells are not interpreted as dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
}

// parseDate coerces a cell to a calendar date+time. Returns false for
// missing cells, numeric cells, and text no candidate layout accepts.
func parseDate(c models.Cell) (time.Time, bool) {
	if c.Kind != models.CellText {
		return time.Time{}, false
	}
	s := c.Text()
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumber coerces a cell to a decimal value using standard numeric
// parsing. Non-numeric text is missing; no separator or currency stripping.
func parseNumber(c models.Cell) (float64, bool) {
	switch c.Kind {
	case models.CellNumber:
		return c.Number, true
	case models.CellText:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.Raw), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// dateOnly truncates a timestamp to its calendar date in UTC so that
// window comparisons are day-granular and timezone-stable.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
