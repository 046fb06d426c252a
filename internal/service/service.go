// Package service defines the backend-agnostic interface to the remote
// project-management service.
package service

import "context"

// Remote defines the operations the cache core needs from the hosted
// service. Backends implement it; commands and the sync core never import
// a backend SDK directly.
type Remote interface {
	// Workspaces returns all workspaces visible to the credential, in
	// remote order.
	Workspaces(ctx context.Context) ([]Workspace, error)

	// Projects returns the active projects of a workspace, in remote
	// order, with FocusCandidate set by the backend's marking rule.
	Projects(ctx context.Context, workspaceID string) ([]Project, error)

	// Sections returns the sections of a project in remote order.
	Sections(ctx context.Context, projectID string) ([]Section, error)

	// Tasks returns the tasks in scope.
	Tasks(ctx context.Context, scope TaskScope, filter TaskFilter) ([]Task, error)

	// CreateTask creates a task and returns it as stored remotely.
	CreateTask(ctx context.Context, task NewTask) (Task, error)

	// CompleteTask marks a task completed.
	CompleteTask(ctx context.Context, taskID string) error
}

// TaskScope selects which tasks Tasks returns. Exactly one of ProjectID
// and WorkspaceID is set.
type TaskScope struct {
	WorkspaceID string
	ProjectID   string
}

// ProjectScope returns a scope covering one project.
func ProjectScope(projectID string) TaskScope {
	return TaskScope{ProjectID: projectID}
}

// WorkspaceScope returns a scope covering the user's tasks in a workspace.
func WorkspaceScope(workspaceID string) TaskScope {
	return TaskScope{WorkspaceID: workspaceID}
}

// TaskFilter narrows a Tasks call.
type TaskFilter struct {
	// IncludeCompleted returns completed tasks as well as open ones.
	IncludeCompleted bool
}
