package focus

import (
	"fmt"
	"regexp"

	"todo/internal/cache"
	"todo/internal/dates"
	"todo/internal/service"
)

var (
	weekSectionPattern = regexp.MustCompile(`^Daily Focuses \((\d{4}-\d{2}-\d{2}) to (\d{4}-\d{2}-\d{2})\)$`)
	dayTaskPattern     = regexp.MustCompile(`^Daily Focus for \w+ \((\d{4}-\d{2}-\d{2})\)$`)
)

// FocusDay is the focus project's entry for one calendar date: a task in
// the section covering that date's week.
type FocusDay struct {
	Date     dates.Date
	WeekFrom dates.Date
	WeekTo   dates.Date
	Section  service.Section
	Task     service.Task
}

// WeekSectionName returns the section name for the Monday-to-Sunday week
// containing d.
func WeekSectionName(d dates.Date) string {
	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDays(-offset)
	return fmt.Sprintf("Daily Focuses (%s to %s)", monday, monday.AddDays(6))
}

// DayTaskName returns the focus task name for d.
func DayTaskName(d dates.Date) string {
	return fmt.Sprintf("Daily Focus for %s (%s)", d.Weekday(), d)
}

// TodayFocus finds the focus entry for date in the selected focus project
// using cached data only.
func TodayFocus(snap *cache.Snapshot, sel Selection, date dates.Date) (FocusDay, bool) {
	if snap == nil || sel.ProjectID == "" {
		return FocusDay{}, false
	}

	for _, sec := range snap.SectionsOf(sel.ProjectID) {
		from, to, ok := parseWeekSection(sec.Name)
		if !ok || date.Before(from) || date.After(to) {
			continue
		}
		for _, t := range snap.Tasks {
			if t.SectionID != sec.ID {
				continue
			}
			if d, ok := parseDayTask(t.Name); ok && d == date {
				return FocusDay{Date: date, WeekFrom: from, WeekTo: to, Section: sec, Task: t}, true
			}
		}
	}
	return FocusDay{}, false
}

func parseWeekSection(name string) (from, to dates.Date, ok bool) {
	m := weekSectionPattern.FindStringSubmatch(name)
	if m == nil {
		return dates.Date{}, dates.Date{}, false
	}
	from, err := dates.ParseISO(m[1])
	if err != nil {
		return dates.Date{}, dates.Date{}, false
	}
	to, err = dates.ParseISO(m[2])
	if err != nil {
		return dates.Date{}, dates.Date{}, false
	}
	return from, to, true
}

func parseDayTask(name string) (dates.Date, bool) {
	m := dayTaskPattern.FindStringSubmatch(name)
	if m == nil {
		return dates.Date{}, false
	}
	d, err := dates.ParseISO(m[1])
	if err != nil {
		return dates.Date{}, false
	}
	return d, true
}
