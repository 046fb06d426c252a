// Package agenda arranges tasks for display: by project and section, or
// by how soon they are due.
package agenda

import (
	"sort"

	"todo/internal/cache"
	"todo/internal/dates"
	"todo/internal/service"
)

// NoProjectName labels the group of tasks whose project is unknown.
const NoProjectName = "No project"

// Group is the tasks of one (project, section) pair.
type Group struct {
	ProjectID   string
	ProjectName string
	SectionID   string
	SectionName string
	Tasks       []service.Task
}

// Options tune Group.
type Options struct {
	// HideCompleted drops completed tasks.
	HideCompleted bool

	// CompletedInline sorts completed tasks among the open ones instead
	// of after them.
	CompletedInline bool
}

type groupKey struct {
	project string
	section string
}

// GroupTasks arranges tasks into groups. Projects follow snapshot order, then
// a trailing group for tasks whose project the snapshot does not know.
// Within a project, tasks without a known section come first, followed by
// sections in snapshot order. Empty groups are omitted. The output is
// fully determined by the inputs.
func GroupTasks(snap *cache.Snapshot, tasks []service.Task, opts Options) []Group {
	buckets := make(map[groupKey][]service.Task)
	sectionProject := make(map[string]string)
	for _, s := range snap.Sections {
		sectionProject[s.ID] = s.ProjectID
	}

	for _, t := range tasks {
		if opts.HideCompleted && t.Completed {
			continue
		}
		key := groupKey{}
		if snap.HasProject(t.ProjectID) {
			key.project = t.ProjectID
			if t.SectionID != "" && sectionProject[t.SectionID] == t.ProjectID {
				key.section = t.SectionID
			}
		}
		buckets[key] = append(buckets[key], t)
	}

	var groups []Group
	emit := func(g Group, key groupKey) {
		ts := buckets[key]
		if len(ts) == 0 {
			return
		}
		sortTasks(ts, opts.CompletedInline)
		g.Tasks = ts
		groups = append(groups, g)
	}

	for _, p := range snap.Projects {
		emit(Group{ProjectID: p.ID, ProjectName: p.Name}, groupKey{project: p.ID})
		for _, s := range snap.SectionsOf(p.ID) {
			emit(Group{ProjectID: p.ID, ProjectName: p.Name, SectionID: s.ID, SectionName: s.Name},
				groupKey{project: p.ID, section: s.ID})
		}
	}
	emit(Group{ProjectName: NoProjectName}, groupKey{})

	return groups
}

// sortTasks orders by due date ascending with undated tasks last, then by
// name, then by ID. Unless inline, completed tasks follow open ones.
func sortTasks(tasks []service.Task, completedInline bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !completedInline && a.Completed != b.Completed {
			return !a.Completed
		}
		if c := compareDue(a.Due, b.Due); c != 0 {
			return c < 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// compareDue orders dated before undated.
func compareDue(a, b dates.Date) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	default:
		return a.Compare(b)
	}
}
