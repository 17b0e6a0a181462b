// Package dates turns user date phrases into calendar dates.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/todo/internal/models"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	relative = regexp.MustCompile(`^in (\d+) (day|week|month)s?$`)
	strict   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Parser resolves strict dates, a few fixed phrases and anything the
// natural-language rules of olebedev/when understand.
type Parser struct {
	w *when.Parser
}

// NewParser builds a parser with the English and common rule sets.
func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// Parse resolves input relative to now.
func (p *Parser) Parse(input string, now time.Time) (models.Date, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return models.Date{}, fmt.Errorf("empty date")
	}

	if strict.MatchString(s) {
		d, err := models.ParseDate(s)
		if err != nil {
			return models.Date{}, fmt.Errorf("invalid date %q: %w", input, err)
		}
		return d, nil
	}

	today := models.DateOf(now)
	switch s {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}

	if m := relative.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return models.Date{}, fmt.Errorf("parse %q: %w", input, err)
		}
		switch m[2] {
		case "day":
			return today.AddDays(n), nil
		case "week":
			return today.AddDays(7 * n), nil
		case "month":
			return addMonths(today, n), nil
		}
	}

	r, err := p.w.Parse(s, now)
	if err != nil {
		return models.Date{}, fmt.Errorf("parse %q: %w", input, err)
	}
	// when matches fragments; anything left over means the phrase was
	// not understood as a whole.
	if r == nil || r.Index != 0 || len(r.Text) != len(s) {
		return models.Date{}, fmt.Errorf("could not parse date %q (try tomorrow, next friday, in 3 days or YYYY-MM-DD)", input)
	}
	return models.DateOf(r.Time), nil
}

// addMonths moves d by n calendar months, clamping the day to the end of
// the target month: Jan 31 + 1 month is Feb 28.
func addMonths(d models.Date, n int) models.Date {
	total := int(d.Month()) - 1 + n
	year := d.Year() + total/12
	month := time.Month(total%12 + 1)
	return models.NewDate(year, month, min(d.Day(), models.DaysIn(year, month)))
}
