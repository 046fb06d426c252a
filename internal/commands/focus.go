package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
	"todo/internal/focus"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&FocusCmd{})
}

// FocusCmd implements the focus command: show, set or clear the focus
// selection and show today's focus entry.
type FocusCmd struct {
	read readFlags
}

func (c *FocusCmd) Name() string      { return "focus" }
func (c *FocusCmd) Aliases() []string { return nil }
func (c *FocusCmd) Synopsis() string  { return "Show or change the focus project" }
func (c *FocusCmd) Usage() string {
	return "todo focus [--offline|--refresh] | focus set [--workspace <id>] <project-id> | focus clear"
}
func (c *FocusCmd) NeedsAuth() bool { return true }

func (c *FocusCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.read.register(fs)
}

func (c *FocusCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return c.show(ctx, env, out, errOut)
	}

	switch args[0] {
	case "set":
		if len(args) != 2 {
			fmt.Fprintln(errOut, "error: usage: todo focus set [--workspace <id>] <project-id>")
			return exitcode.UserError
		}
		return c.set(ctx, env, args[1], out, errOut)
	case "clear":
		if err := env.Core().ClearSelection(); err != nil {
			return fail(errOut, err)
		}
		if !env.Config.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	default:
		fmt.Fprintf(errOut, "error: unknown focus action: %s\n", args[0])
		return exitcode.UserError
	}
}

func (c *FocusCmd) show(ctx context.Context, env *Env, out, errOut io.Writer) int {
	view, code := c.read.view(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}

	p := output.New(out)
	p.Selection(view.Snapshot, view.Selection)
	today := env.Today()
	day, ok := focus.TodayFocus(view.Snapshot, view.Selection, today)
	p.FocusDay(day, ok, today)
	return exitcode.Success
}

func (c *FocusCmd) set(ctx context.Context, env *Env, projectID string, out, errOut io.Writer) int {
	workspaceID, err := c.workspaceFor(ctx, env, projectID)
	if err != nil {
		return fail(errOut, err)
	}

	view, err := env.Core().Select(ctx, workspaceID, projectID)
	if err != nil {
		return fail(errOut, err)
	}
	warn(env, errOut, view)

	if !env.Config.Quiet {
		output.New(out).Selection(view.Snapshot, view.Selection)
	}
	return exitcode.Success
}

// workspaceFor picks the workspace of a new selection: the --workspace
// flag, the cached project's workspace, or the only remote workspace.
func (c *FocusCmd) workspaceFor(ctx context.Context, env *Env, projectID string) (string, error) {
	if env.Override.WorkspaceID != "" {
		return env.Override.WorkspaceID, nil
	}
	if snap := env.Cache.Load(); snap != nil {
		if p, ok := snap.Project(projectID); ok {
			return p.WorkspaceID, nil
		}
	}

	workspaces, err := env.Remote.Workspaces(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list workspaces: %w", err)
	}
	switch len(workspaces) {
	case 0:
		return "", fmt.Errorf("no workspaces: %w", service.ErrNotFound)
	case 1:
		return workspaces[0].ID, nil
	}
	candidates := make([]focus.Candidate, len(workspaces))
	for i, ws := range workspaces {
		candidates[i] = focus.Candidate{ID: ws.ID, Name: ws.Name}
	}
	return "", &focus.AmbiguousError{Kind: "workspace", Candidates: candidates}
}
