package library

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-contacts/internal/config"
)

var (
	formatsWithYear    = []string{config.DateFormatFullBasic, config.DateFormatFullDash}
	formatsWithoutYear = []string{config.DateFormatNoYearB, config.DateFormatNoYearD}
)

// ParseDate interprets the date part of a structured card date.
// It accepts YYYYMMDD, YYYY-MM-DD, --MMDD and --MM-DD. Year-less dates are placed
// in config.DefaultLeapYear so that --0229 stays representable; yearKnown is false for them.
// Anything after a 'T' separator is ignored.
func ParseDate(value string) (date time.Time, yearKnown bool, err error) {
	value, _, _ = strings.Cut(value, "T")
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}
	return time.Time{}, false, errors.New(config.ErrDateParse)
}

// Month returns the month of a structured date, if it parses.
func (d Date) Month() (time.Month, bool) {
	if d.Text || d.Value == "" {
		return 0, false
	}
	t, _, err := ParseDate(d.Value)
	if err != nil {
		return 0, false
	}
	return t.Month(), true
}

// ValidateMonth checks a --month argument. config.NoMonthFilter disables filtering.
func ValidateMonth(month int) error {
	if month == config.NoMonthFilter {
		return nil
	}
	if month < config.MinMonth || month > config.MaxMonth {
		return fmt.Errorf("%s: %d", config.ErrMonthRange, month)
	}
	return nil
}

// FilterByMonth keeps the entries whose birthday falls in month.
// config.NoMonthFilter returns entries unchanged.
func FilterByMonth(entries []Entry, month int) []Entry {
	if month == config.NoMonthFilter {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if m, ok := e.Birthday.Month(); ok && int(m) == month {
			out = append(out, e)
		}
	}
	return out
}
