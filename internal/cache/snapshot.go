// Package cache persists the last-fetched view of the remote service and
// decides whether it is still fresh enough to use.
package cache

import (
	"math"
	"time"

	"todo/internal/service"
)

// SchemaVersion is the snapshot layout this build reads and writes. A
// snapshot carrying any other version is discarded wholesale.
const SchemaVersion = 2

// NeverStale is the maximum age that no snapshot exceeds.
const NeverStale = time.Duration(math.MaxInt64)

// Snapshot is a full replacement copy of the remote state plus the
// locally persisted focus selection.
type Snapshot struct {
	SchemaVersion  int       `json:"schema_version"`
	FetchedAt      time.Time `json:"fetched_at"`
	WorkspaceID    string    `json:"selected_workspace_id,omitempty"`
	FocusProjectID string    `json:"selected_focus_project_id,omitempty"`

	// IncludesCompleted records that completed tasks were fetched too.
	IncludesCompleted bool `json:"includes_completed,omitempty"`

	Workspaces []service.Workspace `json:"workspaces"`
	Projects   []service.Project   `json:"projects"`
	Sections   []service.Section   `json:"sections"`
	Tasks      []service.Task      `json:"tasks"`
}

// New returns an empty snapshot stamped with the current schema version.
func New(fetchedAt time.Time) *Snapshot {
	return &Snapshot{
		SchemaVersion: SchemaVersion,
		FetchedAt:     fetchedAt,
	}
}

// IsStale reports whether snap is older than maxAge at now.
func IsStale(snap *Snapshot, maxAge time.Duration, now time.Time) bool {
	if maxAge == NeverStale {
		return false
	}
	return now.Sub(snap.FetchedAt) > maxAge
}

// Age returns how long ago snap was fetched.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Workspace looks up a workspace by ID.
func (s *Snapshot) Workspace(id string) (service.Workspace, bool) {
	for _, w := range s.Workspaces {
		if w.ID == id {
			return w, true
		}
	}
	return service.Workspace{}, false
}

// Project looks up a project by ID.
func (s *Snapshot) Project(id string) (service.Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return service.Project{}, false
}

// HasProject reports whether id names a project in the snapshot.
func (s *Snapshot) HasProject(id string) bool {
	_, ok := s.Project(id)
	return ok
}

// ProjectsIn returns the projects of a workspace in snapshot order.
func (s *Snapshot) ProjectsIn(workspaceID string) []service.Project {
	var out []service.Project
	for _, p := range s.Projects {
		if p.WorkspaceID == workspaceID {
			out = append(out, p)
		}
	}
	return out
}

// SectionsOf returns the sections of a project in snapshot order.
func (s *Snapshot) SectionsOf(projectID string) []service.Section {
	var out []service.Section
	for _, sec := range s.Sections {
		if sec.ProjectID == projectID {
			out = append(out, sec)
		}
	}
	return out
}

// TasksIn returns the tasks of a project in snapshot order.
func (s *Snapshot) TasksIn(projectID string) []service.Task {
	var out []service.Task
	for _, t := range s.Tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// Task looks up a task by ID.
func (s *Snapshot) Task(id string) (service.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// HasSelection reports whether a focus selection is persisted.
func (s *Snapshot) HasSelection() bool {
	return s.WorkspaceID != "" && s.FocusProjectID != ""
}

// SelectionValid reports whether the persisted selection still resolves:
// the workspace is known and the focus project exists in that workspace.
func (s *Snapshot) SelectionValid() bool {
	if !s.HasSelection() {
		return false
	}
	if _, ok := s.Workspace(s.WorkspaceID); !ok {
		return false
	}
	p, ok := s.Project(s.FocusProjectID)
	return ok && p.WorkspaceID == s.WorkspaceID
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Workspaces = append([]service.Workspace(nil), s.Workspaces...)
	c.Projects = append([]service.Project(nil), s.Projects...)
	c.Sections = append([]service.Section(nil), s.Sections...)
	c.Tasks = append([]service.Task(nil), s.Tasks...)
	return &c
}
