package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/agenda"
	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list`.
type ListCmd struct {
	read   readFlags
	inline bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks by project and section" }
func (c *ListCmd) Usage() string {
	return "todo list [--offline|--refresh] [--completed [--inline]]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.read.register(fs)
	fs.BoolVarP(&c.read.completed, "completed", "c", false, "show completed tasks")
	fs.BoolVar(&c.inline, "inline", false, "sort completed tasks among open ones")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	view, code := c.read.view(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}

	snap := view.Snapshot
	groups := agenda.GroupTasks(snap, snap.Tasks, agenda.Options{
		HideCompleted:   !c.read.completed && !env.Config.Settings.ShowCompleted,
		CompletedInline: c.inline,
	})
	if len(groups) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.New(out).Groups(groups, env.Today())
	return exitcode.Success
}
