package models

import (
	"fmt"
	"strconv"
	"time"
)

// Period identifies the billing month a payment obligation covers.
// The wire and storage format is exactly "YYYY-MM": four-digit year,
// hyphen, two-digit zero-padded month.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a "YYYY-MM" token. It is strict about the format:
// "2025-3" and "2025-13" are both rejected.
func ParsePeriod(s string) (Period, error) {
	if len(s) != 7 || s[4] != '-' {
		return Period{}, fmt.Errorf("invalid period %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: bad year", s)
	}
	month, err := strconv.Atoi(s[5:])
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: bad month", s)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid period %q: month out of range", s)
	}
	if year < 1 {
		return Period{}, fmt.Errorf("invalid period %q: year out of range", s)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the period containing the given instant.
func PeriodOf(t time.Time) Period {
	year, month, _ := t.Date()
	return Period{Year: year, Month: month}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// DueDate combines the period with a fixed day of month. Days are clamped to
// 1..28 at configuration time, so every month can hold the due day.
func (p Period) DueDate(day int) time.Time {
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}
