package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateExpression is returned by Parse for input it cannot
// resolve to a calendar date.
var ErrInvalidDateExpression = errors.New("invalid date expression")

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Layouts tried for absolute dates carrying a year. Month names match
// case-insensitively in time.Parse.
var absoluteLayouts = []string{
	ISOLayout,
	"2006/01/02",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// Layouts without a year resolve within today's year.
var yearlessLayouts = []string{
	"Jan 2",
	"January 2",
	"2 Jan",
	"2 January",
}

// Parse resolves a due-date expression against today.
//
// Accepted forms:
//
//	today, tomorrow, yesterday
//	monday .. sunday (and three-letter forms): the next such day, today included
//	this <weekday>: same as the bare weekday
//	next <weekday>: the first such day strictly after today
//	last <weekday>: the latest such day strictly before today
//	next week: the next Monday
//	in N days, in N weeks
//	2026-01-15, 2026/01/15
//	Jan 15, January 15, 15 Jan, Jan 15 2026, 15 January 2026
//
// Anything else fails with ErrInvalidDateExpression.
func Parse(expr string, today Date) (Date, error) {
	s := normalize(expr)
	if s == "" {
		return Date{}, invalid(expr)
	}

	switch s {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "next week":
		return nextWeekday(today, time.Monday, false), nil
	}

	if wd, ok := weekdays[s]; ok {
		return nextWeekday(today, wd, true), nil
	}

	fields := strings.Fields(s)
	if len(fields) == 2 {
		if wd, ok := weekdays[fields[1]]; ok {
			switch fields[0] {
			case "this":
				return nextWeekday(today, wd, true), nil
			case "next":
				return nextWeekday(today, wd, false), nil
			case "last":
				return lastWeekday(today, wd), nil
			}
		}
	}

	if len(fields) == 3 && fields[0] == "in" {
		n, err := strconv.Atoi(fields[1])
		if err == nil && n >= 0 {
			switch fields[2] {
			case "day", "days":
				return today.AddDays(n), nil
			case "week", "weeks":
				return today.AddDays(7 * n), nil
			}
		}
		return Date{}, invalid(expr)
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Of(today.Year, t.Month(), t.Day()), nil
		}
	}

	return Date{}, invalid(expr)
}

func normalize(expr string) string {
	s := strings.ToLower(strings.TrimSpace(expr))
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}

// nextWeekday returns the first date on or after today (inclusive) or
// strictly after today falling on wd.
func nextWeekday(today Date, wd time.Weekday, inclusive bool) Date {
	delta := (int(wd) - int(today.Weekday()) + 7) % 7
	if delta == 0 && !inclusive {
		delta = 7
	}
	return today.AddDays(delta)
}

// lastWeekday returns the latest date strictly before today falling on wd.
func lastWeekday(today Date, wd time.Weekday) Date {
	delta := (int(today.Weekday()) - int(wd) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return today.AddDays(-delta)
}

func invalid(expr string) error {
	return fmt.Errorf("%w: %q", ErrInvalidDateExpression, expr)
}
