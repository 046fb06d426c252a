// Package focus decides which workspace and focus project a command works
// against.
package focus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"todo/internal/cache"
	"todo/internal/service"
)

// ErrAmbiguousSelection means no single workspace or focus project could
// be chosen without asking the user.
var ErrAmbiguousSelection = errors.New("ambiguous focus selection")

// Provenance records how a selection was made.
type Provenance int

const (
	// Explicit selections come from a flag or the settings file.
	Explicit Provenance = iota
	// Cached selections come from the snapshot: persisted by an earlier
	// run, or its only focus candidate when the remote may not be asked.
	Cached
	// Queried selections were derived from the remote's workspaces and
	// focus candidates.
	Queried
)

func (p Provenance) String() string {
	switch p {
	case Explicit:
		return "explicit"
	case Cached:
		return "cached"
	case Queried:
		return "queried"
	default:
		return fmt.Sprintf("Provenance(%d)", int(p))
	}
}

// Override is a user-supplied selection. Either field may be empty.
type Override struct {
	WorkspaceID string
	ProjectID   string
}

// IsZero reports whether no override was given.
func (o Override) IsZero() bool {
	return o.WorkspaceID == "" && o.ProjectID == ""
}

// Selection is the resolved workspace and focus project.
type Selection struct {
	WorkspaceID string
	ProjectID   string
	Provenance  Provenance
}

// Request carries the inputs of one resolution.
type Request struct {
	Override Override
	Snapshot *cache.Snapshot

	// CacheOnly forbids remote calls.
	CacheOnly bool
}

// Resolution is a Selection plus whatever remote lists were fetched to
// reach it. Workspaces is nil unless fetched; Projects holds the projects
// of the selected workspace when they were fetched.
type Resolution struct {
	Selection
	Workspaces []service.Workspace
	Projects   []service.Project
}

// Candidate is one of the choices an AmbiguousError offers.
type Candidate struct {
	ID   string
	Name string
}

// AmbiguousError lists the choices that prevented an automatic selection.
type AmbiguousError struct {
	// Kind is "workspace" or "focus project".
	Kind       string
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no %s found; select one explicitly", e.Kind)
	}
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = fmt.Sprintf("%s [%s]", c.Name, c.ID)
	}
	return fmt.Sprintf("cannot choose a %s automatically, candidates: %s", e.Kind, strings.Join(names, ", "))
}

func (e *AmbiguousError) Unwrap() error {
	return ErrAmbiguousSelection
}

// Resolver applies the selection priority: explicit override, then the
// persisted selection, then a unique remote choice (a unique choice in the
// snapshot when cache-only).
type Resolver struct {
	remote service.Remote
	logger *slog.Logger
}

// NewResolver returns a Resolver. remote may be nil when only cache-only
// resolution is needed.
func NewResolver(remote service.Remote, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{remote: remote, logger: logger}
}

// Resolve picks the workspace and focus project for req. The result
// depends only on req and on what the remote returns.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Resolution, error) {
	snap := req.Snapshot
	ov := req.Override

	if ov.ProjectID != "" {
		return r.resolveExplicit(ctx, req)
	}

	if snap != nil && snap.SelectionValid() && (ov.WorkspaceID == "" || ov.WorkspaceID == snap.WorkspaceID) {
		r.logger.Debug("using persisted focus selection", "workspace", snap.WorkspaceID, "project", snap.FocusProjectID)
		return Resolution{Selection: Selection{
			WorkspaceID: snap.WorkspaceID,
			ProjectID:   snap.FocusProjectID,
			Provenance:  Cached,
		}}, nil
	}

	if req.CacheOnly || r.remote == nil {
		if snap == nil {
			return Resolution{}, cache.ErrNoCacheAvailable
		}
		return fromSnapshot(snap, ov.WorkspaceID)
	}

	return r.query(ctx, ov.WorkspaceID)
}

// resolveExplicit handles an override naming a project. A missing
// workspace is taken from the snapshot or, failing that, queried.
func (r *Resolver) resolveExplicit(ctx context.Context, req Request) (Resolution, error) {
	ov := req.Override
	snap := req.Snapshot

	sel := Selection{WorkspaceID: ov.WorkspaceID, ProjectID: ov.ProjectID, Provenance: Explicit}
	if sel.WorkspaceID != "" {
		return Resolution{Selection: sel}, nil
	}
	if snap != nil {
		if p, ok := snap.Project(ov.ProjectID); ok && p.WorkspaceID != "" {
			sel.WorkspaceID = p.WorkspaceID
			return Resolution{Selection: sel}, nil
		}
	}
	if req.CacheOnly || r.remote == nil {
		if snap == nil {
			return Resolution{}, cache.ErrNoCacheAvailable
		}
		return Resolution{}, &AmbiguousError{Kind: "workspace", Candidates: workspaceCandidates(snap.Workspaces)}
	}

	workspaces, err := r.remote.Workspaces(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to list workspaces: %w", err)
	}
	if len(workspaces) != 1 {
		return Resolution{}, &AmbiguousError{Kind: "workspace", Candidates: workspaceCandidates(workspaces)}
	}
	sel.WorkspaceID = workspaces[0].ID
	return Resolution{Selection: sel, Workspaces: workspaces}, nil
}

// query derives the selection from remote data: the only workspace (or
// the overridden one) and its only focus candidate.
func (r *Resolver) query(ctx context.Context, workspaceID string) (Resolution, error) {
	res := Resolution{Selection: Selection{Provenance: Queried}}

	workspaces, err := r.remote.Workspaces(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to list workspaces: %w", err)
	}
	res.Workspaces = workspaces

	switch {
	case workspaceID != "":
		res.WorkspaceID = workspaceID
	case len(workspaces) == 1:
		res.WorkspaceID = workspaces[0].ID
	default:
		return Resolution{}, &AmbiguousError{Kind: "workspace", Candidates: workspaceCandidates(workspaces)}
	}

	projects, err := r.remote.Projects(ctx, res.WorkspaceID)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to list projects: %w", err)
	}
	res.Projects = projects

	candidates := focusCandidates(projects)
	if len(candidates) != 1 {
		if len(candidates) == 0 {
			candidates = projects
		}
		return Resolution{}, &AmbiguousError{Kind: "focus project", Candidates: projectCandidates(candidates)}
	}
	res.ProjectID = candidates[0].ID

	r.logger.Debug("resolved focus selection from remote", "workspace", res.WorkspaceID, "project", res.ProjectID)
	return res, nil
}

// fromSnapshot applies the unique-choice rule to the snapshot's
// workspaces and projects.
func fromSnapshot(snap *cache.Snapshot, workspaceID string) (Resolution, error) {
	if workspaceID == "" {
		if len(snap.Workspaces) != 1 {
			return Resolution{}, &AmbiguousError{Kind: "workspace", Candidates: workspaceCandidates(snap.Workspaces)}
		}
		workspaceID = snap.Workspaces[0].ID
	}
	projects := snap.ProjectsIn(workspaceID)
	candidates := focusCandidates(projects)
	if len(candidates) != 1 {
		if len(candidates) == 0 {
			candidates = projects
		}
		return Resolution{}, &AmbiguousError{Kind: "focus project", Candidates: projectCandidates(candidates)}
	}
	return Resolution{Selection: Selection{
		WorkspaceID: workspaceID,
		ProjectID:   candidates[0].ID,
		Provenance:  Cached,
	}}, nil
}

func focusCandidates(projects []service.Project) []service.Project {
	var out []service.Project
	for _, p := range projects {
		if p.FocusCandidate {
			out = append(out, p)
		}
	}
	return out
}

func workspaceCandidates(workspaces []service.Workspace) []Candidate {
	out := make([]Candidate, len(workspaces))
	for i, w := range workspaces {
		out[i] = Candidate{ID: w.ID, Name: w.Name}
	}
	return out
}

func projectCandidates(projects []service.Project) []Candidate {
	out := make([]Candidate, len(projects))
	for i, p := range projects {
		out[i] = Candidate{ID: p.ID, Name: p.Name}
	}
	return out
}
