// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"todo/internal/service"
)

// FakeRemote is an in-memory implementation of service.Remote for testing.
type FakeRemote struct {
	mu          sync.RWMutex
	workspaces  []service.Workspace
	projects    []service.Project
	sections    []service.Section
	tasks       []service.Task
	taskSpaces  map[string]string // taskID -> workspaceID
	calls       map[string]int
	lastFilters []service.TaskFilter

	// Now stamps ModifiedAt on created and completed tasks.
	Now func() time.Time

	// Error injection for testing
	WorkspacesErr   error
	ProjectsErr     error
	SectionsErr     error
	TasksErr        error
	CreateTaskErr   error
	CompleteTaskErr error
}

// NewFakeRemote creates an empty FakeRemote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		taskSpaces: make(map[string]string),
		calls:      make(map[string]int),
		Now:        time.Now,
	}
}

// FailAll makes every method return err. Pass nil to heal the remote.
func (f *FakeRemote) FailAll(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WorkspacesErr = err
	f.ProjectsErr = err
	f.SectionsErr = err
	f.TasksErr = err
	f.CreateTaskErr = err
	f.CompleteTaskErr = err
}

// AddWorkspace adds a workspace.
func (f *FakeRemote) AddWorkspace(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workspaces = append(f.workspaces, service.Workspace{ID: id, Name: name})
}

// RemoveWorkspace deletes a workspace and its projects, as if the user
// lost access to it.
func (f *FakeRemote) RemoveWorkspace(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.workspaces {
		if w.ID == id {
			f.workspaces = append(f.workspaces[:i], f.workspaces[i+1:]...)
			break
		}
	}
	var kept []service.Project
	for _, p := range f.projects {
		if p.WorkspaceID != id {
			kept = append(kept, p)
		}
	}
	f.projects = kept
}

// AddProject adds a project to a workspace.
func (f *FakeRemote) AddProject(workspaceID, id, name string, focusCandidate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, service.Project{
		ID:             id,
		Name:           name,
		WorkspaceID:    workspaceID,
		FocusCandidate: focusCandidate,
	})
}

// RemoveProject deletes a project, as if archived remotely.
func (f *FakeRemote) RemoveProject(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return
		}
	}
}

// AddSection adds a section to a project.
func (f *FakeRemote) AddSection(projectID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections = append(f.sections, service.Section{ID: id, Name: name, ProjectID: projectID})
}

// AddTask adds a task to a workspace. The task's ProjectID and SectionID
// are taken as given.
func (f *FakeRemote) AddTask(workspaceID string, task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	f.taskSpaces[task.ID] = workspaceID
}

// Task returns the remote copy of a task.
func (f *FakeRemote) Task(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Calls returns how many times the named method was invoked.
func (f *FakeRemote) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeRemote) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// LastFilters returns the filters passed to Tasks, oldest first.
func (f *FakeRemote) LastFilters() []service.TaskFilter {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.TaskFilter(nil), f.lastFilters...)
}

// ResetCalls zeroes the call counters.
func (f *FakeRemote) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = make(map[string]int)
	f.lastFilters = nil
}

func (f *FakeRemote) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

// Workspaces implements service.Remote.
func (f *FakeRemote) Workspaces(ctx context.Context) ([]service.Workspace, error) {
	f.record("Workspaces")
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.WorkspacesErr != nil {
		return nil, f.WorkspacesErr
	}
	return append([]service.Workspace(nil), f.workspaces...), nil
}

// Projects implements service.Remote.
func (f *FakeRemote) Projects(ctx context.Context, workspaceID string) ([]service.Project, error) {
	f.record("Projects")
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.ProjectsErr != nil {
		return nil, f.ProjectsErr
	}
	if !f.hasWorkspace(workspaceID) {
		return nil, service.ErrNotFound
	}
	var out []service.Project
	for _, p := range f.projects {
		if p.WorkspaceID == workspaceID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Sections implements service.Remote.
func (f *FakeRemote) Sections(ctx context.Context, projectID string) ([]service.Section, error) {
	f.record("Sections")
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.SectionsErr != nil {
		return nil, f.SectionsErr
	}
	if !f.hasProject(projectID) {
		return nil, service.ErrNotFound
	}
	var out []service.Section
	for _, s := range f.sections {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out, nil
}

// Tasks implements service.Remote.
func (f *FakeRemote) Tasks(ctx context.Context, scope service.TaskScope, filter service.TaskFilter) ([]service.Task, error) {
	f.record("Tasks")
	f.mu.Lock()
	f.lastFilters = append(f.lastFilters, filter)
	f.mu.Unlock()

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.TasksErr != nil {
		return nil, f.TasksErr
	}
	var out []service.Task
	for _, t := range f.tasks {
		if t.Completed && !filter.IncludeCompleted {
			continue
		}
		if scope.ProjectID != "" && t.ProjectID != scope.ProjectID {
			continue
		}
		if scope.WorkspaceID != "" && f.taskSpaces[t.ID] != scope.WorkspaceID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// CreateTask implements service.Remote.
func (f *FakeRemote) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	f.record("CreateTask")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	if nt.ProjectID != "" && !f.hasProject(nt.ProjectID) {
		return service.Task{}, service.ErrNotFound
	}

	t := service.Task{
		ID:         uuid.NewString(),
		Name:       nt.Name,
		Due:        nt.Due,
		ProjectID:  nt.ProjectID,
		SectionID:  nt.SectionID,
		ModifiedAt: f.Now(),
	}
	f.tasks = append(f.tasks, t)
	f.taskSpaces[t.ID] = nt.WorkspaceID
	return t, nil
}

// CompleteTask implements service.Remote.
func (f *FakeRemote) CompleteTask(ctx context.Context, taskID string) error {
	f.record("CompleteTask")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CompleteTaskErr != nil {
		return f.CompleteTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == taskID {
			f.tasks[i].Completed = true
			f.tasks[i].ModifiedAt = f.Now()
			return nil
		}
	}
	return service.ErrNotFound
}

func (f *FakeRemote) hasWorkspace(id string) bool {
	for _, w := range f.workspaces {
		if w.ID == id {
			return true
		}
	}
	return false
}

func (f *FakeRemote) hasProject(id string) bool {
	for _, p := range f.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Compile-time check that FakeRemote implements service.Remote.
var _ service.Remote = (*FakeRemote)(nil)
