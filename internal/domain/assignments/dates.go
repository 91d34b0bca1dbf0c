package assignments

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date key used by batches and ledger entries.
const DateLayout = "2006-01-02"

func DateKey(t time.Time) string { return t.Format(DateLayout) }

func YesterdayKey(t time.Time) string { return t.AddDate(0, 0, -1).Format(DateLayout) }

// DaysAgoKey is the date key n calendar days before t.
func DaysAgoKey(t time.Time, n int) string { return t.AddDate(0, 0, -n).Format(DateLayout) }

// NormalizeDate checks s is a YYYY-MM-DD calendar date and returns it canonically.
func NormalizeDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("date %q must be formatted as YYYY-MM-DD", s)
	}
	return d.Format(DateLayout), nil
}

// IsOddDay reports whether t falls on an odd day of the month.
func IsOddDay(t time.Time) bool { return t.Day()%2 == 1 }
