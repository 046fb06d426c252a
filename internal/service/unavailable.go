package service

import "context"

// Unavailable returns a Remote whose every call fails with err. It stands
// in for a backend that could not be constructed, so cache reads still
// work and remote reads report the construction error.
func Unavailable(err error) Remote {
	return unavailable{err: err}
}

type unavailable struct {
	err error
}

func (u unavailable) Workspaces(ctx context.Context) ([]Workspace, error) { return nil, u.err }

func (u unavailable) Projects(ctx context.Context, workspaceID string) ([]Project, error) {
	return nil, u.err
}

func (u unavailable) Sections(ctx context.Context, projectID string) ([]Section, error) {
	return nil, u.err
}

func (u unavailable) Tasks(ctx context.Context, scope TaskScope, filter TaskFilter) ([]Task, error) {
	return nil, u.err
}

func (u unavailable) CreateTask(ctx context.Context, task NewTask) (Task, error) {
	return Task{}, u.err
}

func (u unavailable) CompleteTask(ctx context.Context, taskID string) error { return u.err }
