package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ViewMode is the calendar view persisted with the user's trainings document
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// DefaultViewMode is used for fresh documents
const DefaultViewMode = ViewWeek

func (vm ViewMode) String() string {
	return string(vm)
}

func (vm ViewMode) IsValid() bool {
	switch vm {
	case ViewDay, ViewWeek, ViewMonth:
		return true
	default:
		return false
	}
}

func ParseViewMode(s string) (ViewMode, error) {
	vm := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	if !vm.IsValid() {
		return "", fmt.Errorf("unknown view mode: %q", s)
	}
	return vm, nil
}

// RangeFor returns the inclusive [start, end] days shown by the given view.
// Anything that is not a day or week view gets the month range.
func RangeFor(mode ViewMode, t time.Time) (start, end time.Time) {
	switch mode {
	case ViewDay:
		day := StartOfDay(t)
		return day, day
	case ViewWeek:
		days := WeekDays(t)
		return days[0], days[len(days)-1]
	default:
		year, month, _ := t.Date()
		first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
		return first, first.AddDate(0, 1, -1)
	}
}

// Navigate moves t by one view step in the given direction (negative is backwards).
func Navigate(mode ViewMode, t time.Time, direction int) time.Time {
	switch mode {
	case ViewDay:
		return t.AddDate(0, 0, direction)
	case ViewWeek:
		return t.AddDate(0, 0, 7*direction)
	default:
		return t.AddDate(0, direction, 0)
	}
}

// GridFor returns the days rendered by the given view.
func GridFor(mode ViewMode, t time.Time) []Day {
	switch mode {
	case ViewDay:
		return []Day{{Date: StartOfDay(t), InCurrentMonth: true}}
	case ViewWeek:
		week := WeekDays(t)
		days := make([]Day, len(week))
		for i, d := range week {
			days[i] = Day{Date: d, InCurrentMonth: true}
		}
		return days
	default:
		return MonthDays(t.Year(), t.Month())
	}
}

var (
	dayNamesPL = [...]string{
		"Niedziela", "Poniedziałek", "Wtorek", "Środa", "Czwartek", "Piątek", "Sobota",
	}
	monthNamesPL = [...]string{
		"Styczeń", "Luty", "Marzec", "Kwiecień", "Maj", "Czerwiec",
		"Lipiec", "Sierpień", "Wrzesień", "Październik", "Listopad", "Grudzień",
	}
)

func DayName(wd time.Weekday) string {
	return dayNamesPL[wd]
}

func MonthName(m time.Month) string {
	return monthNamesPL[m-1]
}

func shortMonthName(m time.Month) string {
	return string([]rune(MonthName(m))[:3])
}

// Title returns the header shown above the calendar for the given view.
func Title(mode ViewMode, t time.Time) string {
	switch mode {
	case ViewDay:
		return fmt.Sprintf("%s, %d %s %d", DayName(t.Weekday()), t.Day(), MonthName(t.Month()), t.Year())
	case ViewWeek:
		days := WeekDays(t)
		start, end := days[0], days[6]
		if start.Month() == end.Month() {
			return fmt.Sprintf("%d - %d %s %d", start.Day(), end.Day(), MonthName(start.Month()), start.Year())
		}
		return fmt.Sprintf(
			"%d %s - %d %s %d",
			start.Day(), shortMonthName(start.Month()),
			end.Day(), shortMonthName(end.Month()), end.Year(),
		)
	default:
		return fmt.Sprintf("%s %d", MonthName(t.Month()), t.Year())
	}
}
