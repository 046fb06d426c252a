package service

import (
	"time"

	"todo/internal/dates"
)

// Workspace is the top-level container of projects.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Project belongs to a workspace. FocusCandidate marks projects that may
// serve as the focus project when none is selected explicitly.
type Project struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	WorkspaceID    string `json:"workspace_id"`
	FocusCandidate bool   `json:"focus_candidate,omitempty"`
}

// Section groups tasks inside a project.
type Section struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
}

// Task is a single task item as last seen remotely.
type Task struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Completed  bool       `json:"completed"`
	Due        dates.Date `json:"due"`
	ProjectID  string     `json:"project_id,omitempty"`
	SectionID  string     `json:"section_id,omitempty"`
	ModifiedAt time.Time  `json:"modified_at"`
}

// HasDue reports whether the task carries a due date.
func (t Task) HasDue() bool {
	return !t.Due.IsZero()
}

// NewTask describes a task to create.
type NewTask struct {
	Name        string
	Notes       string
	Due         dates.Date
	WorkspaceID string
	ProjectID   string
	SectionID   string
}
