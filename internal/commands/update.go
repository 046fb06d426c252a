package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&UpdateCmd{})
}

// UpdateCmd implements the update command: refresh the cache now.
type UpdateCmd struct{}

func (c *UpdateCmd) Name() string      { return "update" }
func (c *UpdateCmd) Aliases() []string { return []string{"refresh", "sync"} }
func (c *UpdateCmd) Synopsis() string  { return "Refresh the cache from the service" }
func (c *UpdateCmd) Usage() string     { return "todo update" }
func (c *UpdateCmd) NeedsAuth() bool   { return true }

func (c *UpdateCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *UpdateCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	view, err := env.Core().Refresh(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if !view.Refreshed {
		if len(view.Warnings) == 0 {
			return exitcode.BackendError
		}
		for _, w := range view.Warnings[1:] {
			output.New(errOut).Warning(w)
		}
		return fail(errOut, view.Warnings[0])
	}
	warn(env, errOut, view)
	if !env.Config.Quiet {
		snap := view.Snapshot
		fmt.Fprintf(out, "%d projects, %d tasks\n", len(snap.Projects), len(snap.Tasks))
	}
	return exitcode.Success
}
