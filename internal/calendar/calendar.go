package calendar

import (
	"fmt"
	"time"
)

// DateKeyLayout is the layout of the keys the trainings are grouped by
const DateKeyLayout = "2006-01-02"

// GridSize is the number of cells in the month view (6 rows x 7 columns)
const GridSize = 42

type Day struct {
	Date           time.Time `json:"date"`
	InCurrentMonth bool      `json:"inCurrentMonth"`
}

// DateKey returns the calendar day of t formatted as YYYY-MM-DD.
// Time of day is ignored, the day is taken from t's own location, not UTC: callers
// wanting a UTC day pass t.UTC(). ParseDateKey and the HTTP handlers use UTC midnights,
// so keys round-trip.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey returns the UTC midnight of the given date key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key [%s]: %w", key, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// mondayOffset returns how many days t is after the Monday of its week
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekDays returns the 7 days of the Monday-first week containing t.
// Sunday belongs to the week that ends on it.
func WeekDays(t time.Time) []time.Time {
	monday := StartOfDay(t).AddDate(0, 0, -mondayOffset(t))
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

// MonthDays returns the 6x7 Monday-first grid for the given month.
// Out of range months are normalized the same way time.Date does it.
func MonthDays(year int, month time.Month) []Day {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -mondayOffset(first))

	days := make([]Day, GridSize)
	for i := range days {
		d := start.AddDate(0, 0, i)
		days[i] = Day{
			Date:           d,
			InCurrentMonth: d.Year() == first.Year() && d.Month() == first.Month(),
		}
	}
	return days
}

// DaysIn returns the number of days of the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
