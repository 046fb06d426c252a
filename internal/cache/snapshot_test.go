package cache_test

import (
	"testing"
	"time"

	"todo/internal/cache"
	"todo/internal/service"
)

func TestIsStale(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := cache.New(fetched)

	tests := []struct {
		name   string
		maxAge time.Duration
		now    time.Time
		want   bool
	}{
		{"just fetched", 5 * time.Minute, fetched, false},
		{"at limit", 5 * time.Minute, fetched.Add(5 * time.Minute), false},
		{"past limit", 5 * time.Minute, fetched.Add(5*time.Minute + time.Second), true},
		{"zero tolerance", 0, fetched.Add(time.Nanosecond), true},
		{"never stale", cache.NeverStale, fetched.Add(10 * 365 * 24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cache.IsStale(snap, tt.maxAge, tt.now); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsStale_Monotonic(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := cache.New(fetched)
	now := fetched.Add(7 * time.Minute)

	ages := []time.Duration{time.Minute, 3 * time.Minute, 7 * time.Minute, 10 * time.Minute, time.Hour}
	prev := true
	for _, age := range ages {
		stale := cache.IsStale(snap, age, now)
		if stale && !prev {
			t.Errorf("staleness flipped back to true at max age %v", age)
		}
		prev = stale
	}

	later := []time.Time{now, now.Add(time.Minute), now.Add(time.Hour)}
	wasStale := false
	for _, at := range later {
		stale := cache.IsStale(snap, 5*time.Minute, at)
		if wasStale && !stale {
			t.Errorf("snapshot became fresh again at %v", at)
		}
		wasStale = stale
	}
}

func TestSnapshot_SelectionValid(t *testing.T) {
	snap := cache.New(time.Now())
	snap.Workspaces = []service.Workspace{{ID: "ws1"}, {ID: "ws2"}}
	snap.Projects = []service.Project{
		{ID: "p1", WorkspaceID: "ws1"},
		{ID: "p2", WorkspaceID: "ws2"},
	}

	tests := []struct {
		name    string
		ws, prj string
		want    bool
	}{
		{"valid", "ws1", "p1", true},
		{"no selection", "", "", false},
		{"project vanished", "ws1", "p9", false},
		{"workspace vanished", "ws9", "p1", false},
		{"project in other workspace", "ws1", "p2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap.WorkspaceID = tt.ws
			snap.FocusProjectID = tt.prj
			if got := snap.SelectionValid(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSnapshot_Lookups(t *testing.T) {
	snap := cache.New(time.Now())
	snap.Projects = []service.Project{{ID: "p1"}, {ID: "p2"}}
	snap.Sections = []service.Section{
		{ID: "s2", ProjectID: "p1"},
		{ID: "s1", ProjectID: "p1"},
		{ID: "s3", ProjectID: "p2"},
	}
	snap.Tasks = []service.Task{
		{ID: "t1", ProjectID: "p2"},
		{ID: "t2", ProjectID: "p1"},
	}

	secs := snap.SectionsOf("p1")
	if len(secs) != 2 || secs[0].ID != "s2" || secs[1].ID != "s1" {
		t.Errorf("expected sections [s2 s1] in snapshot order, got %+v", secs)
	}
	if tasks := snap.TasksIn("p1"); len(tasks) != 1 || tasks[0].ID != "t2" {
		t.Errorf("expected [t2], got %+v", tasks)
	}
	if !snap.HasProject("p2") || snap.HasProject("p3") {
		t.Error("HasProject returned wrong result")
	}
	if _, ok := snap.Task("t1"); !ok {
		t.Error("expected to find task t1")
	}

	c := snap.Clone()
	c.Tasks[0].Name = "changed"
	if snap.Tasks[0].Name == "changed" {
		t.Error("Clone shares task storage with the original")
	}
}
