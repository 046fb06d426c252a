package focus_test

import (
	"testing"
	"time"

	"todo/internal/cache"
	"todo/internal/dates"
	"todo/internal/focus"
	"todo/internal/service"
)

func TestNames(t *testing.T) {
	d := dates.Of(2026, time.March, 4) // Wednesday

	if got, want := focus.WeekSectionName(d), "Daily Focuses (2026-03-02 to 2026-03-08)"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got, want := focus.DayTaskName(d), "Daily Focus for Wednesday (2026-03-04)"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	sunday := dates.Of(2026, time.March, 8)
	if got, want := focus.WeekSectionName(sunday), "Daily Focuses (2026-03-02 to 2026-03-08)"; got != want {
		t.Errorf("expected Sunday to close the week: want %q, got %q", want, got)
	}
}

func TestTodayFocus(t *testing.T) {
	day := dates.Of(2026, time.March, 4)
	snap := cache.New(time.Now())
	snap.Sections = []service.Section{
		{ID: "s-old", Name: "Daily Focuses (2026-02-23 to 2026-03-01)", ProjectID: "p1"},
		{ID: "s-now", Name: focus.WeekSectionName(day), ProjectID: "p1"},
		{ID: "s-other", Name: focus.WeekSectionName(day), ProjectID: "p2"},
	}
	snap.Tasks = []service.Task{
		{ID: "t-tue", Name: focus.DayTaskName(day.AddDays(-1)), ProjectID: "p1", SectionID: "s-now"},
		{ID: "t-wed", Name: focus.DayTaskName(day), ProjectID: "p1", SectionID: "s-now"},
		{ID: "t-p2", Name: focus.DayTaskName(day), ProjectID: "p2", SectionID: "s-other"},
	}
	sel := focus.Selection{WorkspaceID: "ws1", ProjectID: "p1"}

	fd, ok := focus.TodayFocus(snap, sel, day)
	if !ok {
		t.Fatal("expected focus day to be found")
	}
	if fd.Task.ID != "t-wed" || fd.Section.ID != "s-now" {
		t.Errorf("expected t-wed in s-now, got %s in %s", fd.Task.ID, fd.Section.ID)
	}
	if fd.WeekFrom != dates.Of(2026, time.March, 2) || fd.WeekTo != dates.Of(2026, time.March, 8) {
		t.Errorf("unexpected week range %s to %s", fd.WeekFrom, fd.WeekTo)
	}

	if _, ok := focus.TodayFocus(snap, sel, day.AddDays(1)); ok {
		t.Error("expected no focus entry for Thursday")
	}
	if _, ok := focus.TodayFocus(nil, sel, day); ok {
		t.Error("expected no focus entry without a snapshot")
	}
}
