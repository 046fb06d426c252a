// Package syncer decides when cached data is used, when the remote is
// consulted, and how fresh remote state is merged with the locally
// persisted focus selection.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"todo/internal/cache"
	"todo/internal/clock"
	"todo/internal/focus"
	"todo/internal/service"
)

// ErrNoCacheAvailable is returned when a cache-only read finds no usable
// snapshot, or a refresh fails with nothing cached to fall back on.
var ErrNoCacheAvailable = cache.ErrNoCacheAvailable

// Mode selects how GetTaskView treats the cache.
type Mode int

const (
	// CacheOnly reads the snapshot and never contacts the remote.
	CacheOnly Mode = iota
	// PreferCache uses a fresh snapshot and refreshes a stale one.
	PreferCache
	// ForceRefresh always refreshes first.
	ForceRefresh
)

func (m Mode) String() string {
	switch m {
	case CacheOnly:
		return "cache-only"
	case PreferCache:
		return "prefer-cache"
	case ForceRefresh:
		return "force-refresh"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// View is the result of a read or mutation: the snapshot to show, the
// selection it was resolved under, and non-fatal problems.
type View struct {
	Snapshot  *cache.Snapshot
	Selection focus.Selection
	Warnings  []error
	Refreshed bool
}

// StaleCacheFallback is the warning attached to a view served from cache
// after a refresh failed.
type StaleCacheFallback struct {
	FetchedAt time.Time
	Age       time.Duration
	Err       error
}

func (e *StaleCacheFallback) Error() string {
	if e.FetchedAt.IsZero() {
		return fmt.Sprintf("refresh failed, showing cached data of unknown age: %v", e.Err)
	}
	return fmt.Sprintf("refresh failed, showing cached data from %s ago: %v", e.Age.Round(time.Second), e.Err)
}

func (e *StaleCacheFallback) Unwrap() error {
	return e.Err
}

// Options configures a Core.
type Options struct {
	Store  *cache.Store
	Remote service.Remote
	Clock  clock.Clock
	Logger *slog.Logger

	// Override is the explicit workspace/project selection from flags or
	// settings. It is honoured on every call and never persisted.
	Override focus.Override

	// IncludeCompleted fetches completed tasks as well as open ones.
	IncludeCompleted bool
}

// Core coordinates the cache store, the remote and the focus resolver.
type Core struct {
	store            *cache.Store
	remote           service.Remote
	resolver         *focus.Resolver
	clock            clock.Clock
	logger           *slog.Logger
	override         focus.Override
	includeCompleted bool
}

// New returns a Core. Remote may be nil, in which case only cache-only
// reads succeed.
func New(opts Options) *Core {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Core{
		store:            opts.Store,
		remote:           opts.Remote,
		resolver:         focus.NewResolver(opts.Remote, logger),
		clock:            clk,
		logger:           logger,
		override:         opts.Override,
		includeCompleted: opts.IncludeCompleted,
	}
}

// GetTaskView returns the task view for mode. maxAge bounds how old a
// snapshot PreferCache accepts; cache.NeverStale accepts any.
func (c *Core) GetTaskView(ctx context.Context, mode Mode, maxAge time.Duration) (*View, error) {
	prev := c.store.Load()

	switch mode {
	case CacheOnly:
		if prev == nil {
			return nil, ErrNoCacheAvailable
		}
		return c.cachedView(ctx, prev)

	case PreferCache:
		if prev != nil && !cache.IsStale(prev, maxAge, c.clock.Now()) && c.covers(prev) {
			c.logger.Debug("cache is fresh", "age", prev.Age(c.clock.Now()), "max_age", maxAge)
			return c.cachedView(ctx, prev)
		}
		return c.refreshOrFallback(ctx, prev)

	case ForceRefresh:
		return c.refreshOrFallback(ctx, prev)

	default:
		return nil, fmt.Errorf("unknown mode %v", mode)
	}
}

// Refresh is GetTaskView with ForceRefresh.
func (c *Core) Refresh(ctx context.Context) (*View, error) {
	return c.GetTaskView(ctx, ForceRefresh, 0)
}

// CreateTask creates a task remotely and refreshes the cache. A task
// without a workspace is created in the selected workspace.
func (c *Core) CreateTask(ctx context.Context, nt service.NewTask) (*View, service.Task, error) {
	if c.remote == nil {
		return nil, service.Task{}, fmt.Errorf("creating a task: %w", service.ErrRemoteUnavailable)
	}
	prev := c.store.Load()

	if nt.WorkspaceID == "" {
		res, err := c.resolver.Resolve(ctx, focus.Request{Override: c.override, Snapshot: prev})
		if err != nil {
			return nil, service.Task{}, err
		}
		nt.WorkspaceID = res.WorkspaceID
	}

	task, err := c.remote.CreateTask(ctx, nt)
	if err != nil {
		return nil, service.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	c.logger.Debug("created task", "id", task.ID, "workspace", nt.WorkspaceID, "project", nt.ProjectID)

	return c.afterMutation(ctx, prev, "task created"), task, nil
}

// CompleteTask marks a task completed remotely and refreshes the cache.
func (c *Core) CompleteTask(ctx context.Context, taskID string) (*View, error) {
	if c.remote == nil {
		return nil, fmt.Errorf("completing a task: %w", service.ErrRemoteUnavailable)
	}
	prev := c.store.Load()

	if err := c.remote.CompleteTask(ctx, taskID); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}
	c.logger.Debug("completed task", "id", taskID)

	return c.afterMutation(ctx, prev, "task completed"), nil
}

// Select persists workspaceID/projectID as the focus selection and
// refreshes. The project is validated against the cache when it knows the
// project, otherwise against the remote.
func (c *Core) Select(ctx context.Context, workspaceID, projectID string) (*View, error) {
	prev := c.store.Load()

	if err := c.validateSelection(ctx, prev, workspaceID, projectID); err != nil {
		return nil, err
	}

	next := prev
	if next == nil {
		next = cache.New(time.Time{})
	} else {
		next = prev.Clone()
	}
	next.WorkspaceID = workspaceID
	next.FocusProjectID = projectID
	if err := c.store.Save(next); err != nil {
		return nil, fmt.Errorf("failed to save focus selection: %w", err)
	}
	c.logger.Debug("persisted focus selection", "workspace", workspaceID, "project", projectID)

	if c.remote == nil {
		return &View{Snapshot: next, Selection: focus.Selection{WorkspaceID: workspaceID, ProjectID: projectID, Provenance: focus.Cached}}, nil
	}

	// Refreshing under the choice as an override keeps the persisted
	// selection of next in the new snapshot.
	view, err := c.refresh(ctx, next, focus.Override{WorkspaceID: workspaceID, ProjectID: projectID})
	if err != nil {
		return &View{
			Snapshot:  next,
			Selection: focus.Selection{WorkspaceID: workspaceID, ProjectID: projectID, Provenance: focus.Cached},
			Warnings:  []error{fmt.Errorf("selection saved but refresh failed: %w", err)},
		}, nil
	}
	view.Selection.Provenance = focus.Cached
	return view, nil
}

// ClearSelection forgets the persisted focus selection.
func (c *Core) ClearSelection() error {
	prev := c.store.Load()
	if prev == nil || (prev.WorkspaceID == "" && prev.FocusProjectID == "") {
		return nil
	}
	next := prev.Clone()
	next.WorkspaceID = ""
	next.FocusProjectID = ""
	if err := c.store.Save(next); err != nil {
		return fmt.Errorf("failed to clear focus selection: %w", err)
	}
	return nil
}

func (c *Core) validateSelection(ctx context.Context, prev *cache.Snapshot, workspaceID, projectID string) error {
	if prev != nil {
		if p, ok := prev.Project(projectID); ok {
			if p.WorkspaceID != workspaceID {
				return fmt.Errorf("project %q is not in workspace %q: %w", projectID, workspaceID, service.ErrNotFound)
			}
			return nil
		}
	}
	if c.remote == nil {
		return fmt.Errorf("project %q: %w", projectID, ErrNoCacheAvailable)
	}
	projects, err := c.remote.Projects(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if !containsProject(projects, projectID) {
		return fmt.Errorf("project %q is not in workspace %q: %w", projectID, workspaceID, service.ErrNotFound)
	}
	return nil
}

// afterMutation refreshes synchronously. When that fails the prior
// snapshot is invalidated so the next prefer-cache read goes remote.
func (c *Core) afterMutation(ctx context.Context, prev *cache.Snapshot, what string) *View {
	view, err := c.refresh(ctx, prev, c.override)
	if err == nil {
		return view
	}

	c.logger.Debug("refresh after mutation failed", "error", err)
	warn := fmt.Errorf("%s, but refreshing the cache failed: %w", what, err)
	if prev == nil {
		return &View{Warnings: []error{warn}}
	}

	out := &View{Snapshot: prev, Warnings: []error{warn}}
	if ierr := c.store.Invalidate(prev); ierr != nil {
		out.Warnings = append(out.Warnings, fmt.Errorf("failed to invalidate cache: %w", ierr))
	}
	if res, rerr := c.resolver.Resolve(ctx, focus.Request{Override: c.override, Snapshot: prev, CacheOnly: true}); rerr == nil {
		out.Selection = res.Selection
	}
	return out
}

func (c *Core) refreshOrFallback(ctx context.Context, prev *cache.Snapshot) (*View, error) {
	view, err := c.refresh(ctx, prev, c.override)
	if err == nil {
		return view, nil
	}
	if prev == nil {
		return nil, err
	}
	if errors.Is(err, focus.ErrAmbiguousSelection) || errors.Is(err, service.ErrAuth) {
		return nil, err
	}

	c.logger.Debug("refresh failed, falling back to cache", "error", err)
	fallback, cerr := c.cachedView(ctx, prev)
	if cerr != nil {
		// The tasks are still worth showing without a focus selection.
		c.logger.Debug("no focus selection for cached data", "error", cerr)
		fallback = &View{Snapshot: prev}
	}
	now := c.clock.Now()
	fallback.Warnings = append(fallback.Warnings, &StaleCacheFallback{
		FetchedAt: prev.FetchedAt,
		Age:       prev.Age(now),
		Err:       err,
	})
	return fallback, nil
}

// covers reports whether snap holds every task kind this core fetches.
func (c *Core) covers(snap *cache.Snapshot) bool {
	return !c.includeCompleted || snap.IncludesCompleted
}

func (c *Core) cachedView(ctx context.Context, snap *cache.Snapshot) (*View, error) {
	res, err := c.resolver.Resolve(ctx, focus.Request{Override: c.override, Snapshot: snap, CacheOnly: true})
	if err != nil {
		return nil, err
	}
	return &View{Snapshot: snap, Selection: res.Selection}, nil
}

// refresh fetches the remote state under a freshly resolved selection,
// saves it and returns the new view.
func (c *Core) refresh(ctx context.Context, prev *cache.Snapshot, override focus.Override) (*View, error) {
	if c.remote == nil {
		return nil, fmt.Errorf("refresh: %w", service.ErrRemoteUnavailable)
	}

	res, err := c.resolver.Resolve(ctx, focus.Request{Override: override, Snapshot: prev})
	if err != nil {
		return nil, err
	}

	workspaces := res.Workspaces
	if workspaces == nil {
		if workspaces, err = c.remote.Workspaces(ctx); err != nil {
			return nil, fmt.Errorf("failed to list workspaces: %w", err)
		}
	}
	if res.Provenance == focus.Cached && !containsWorkspace(workspaces, res.WorkspaceID) {
		c.logger.Info("persisted workspace no longer exists, resolving again", "workspace", res.WorkspaceID)
		if res, err = c.resolver.Resolve(ctx, focus.Request{Override: override}); err != nil {
			return nil, err
		}
		workspaces = res.Workspaces
	}

	projects := res.Projects
	if projects == nil {
		if projects, err = c.remote.Projects(ctx, res.WorkspaceID); err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
	}

	if !containsProject(projects, res.ProjectID) {
		if res.Provenance != focus.Cached {
			return nil, fmt.Errorf("focus project %q: %w", res.ProjectID, service.ErrNotFound)
		}
		c.logger.Info("persisted focus project no longer exists, resolving again", "project", res.ProjectID)
		if res, err = c.resolver.Resolve(ctx, focus.Request{Override: override}); err != nil {
			return nil, err
		}
		workspaces = res.Workspaces
		projects = res.Projects
	}

	sections, err := c.remote.Sections(ctx, res.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	filter := service.TaskFilter{IncludeCompleted: c.includeCompleted}
	tasks, err := c.remote.Tasks(ctx, service.WorkspaceScope(res.WorkspaceID), filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	// Completed focus-day entries are needed to tell today's state.
	focusTasks, err := c.remote.Tasks(ctx, service.ProjectScope(res.ProjectID), service.TaskFilter{IncludeCompleted: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list focus project tasks: %w", err)
	}

	snap := cache.New(c.clock.Now())
	snap.Workspaces = workspaces
	snap.Projects = projects
	snap.Sections = sections
	snap.Tasks = mergeTasks(tasks, focusTasks)
	snap.IncludesCompleted = c.includeCompleted

	if res.Provenance == focus.Explicit {
		if prev != nil {
			snap.WorkspaceID = prev.WorkspaceID
			snap.FocusProjectID = prev.FocusProjectID
		}
	} else {
		snap.WorkspaceID = res.WorkspaceID
		snap.FocusProjectID = res.ProjectID
	}

	view := &View{Snapshot: snap, Selection: res.Selection, Refreshed: true}
	if err := c.store.Save(snap); err != nil {
		c.logger.Debug("could not save cache", "error", err)
		view.Warnings = append(view.Warnings, fmt.Errorf("failed to save cache: %w", err))
	}
	c.logger.Debug("refreshed cache", "workspace", res.WorkspaceID, "project", res.ProjectID,
		"provenance", res.Provenance, "tasks", len(snap.Tasks))
	return view, nil
}

// mergeTasks appends the focus project's tasks that the workspace listing
// did not already include.
func mergeTasks(tasks, extra []service.Task) []service.Task {
	seen := make(map[string]bool, len(tasks))
	out := make([]service.Task, 0, len(tasks)+len(extra))
	for _, t := range tasks {
		seen[t.ID] = true
		out = append(out, t)
	}
	for _, t := range extra {
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out
}

func containsWorkspace(workspaces []service.Workspace, id string) bool {
	for _, w := range workspaces {
		if w.ID == id {
			return true
		}
	}
	return false
}

func containsProject(projects []service.Project, id string) bool {
	for _, p := range projects {
		if p.ID == id {
			return true
		}
	}
	return false
}
