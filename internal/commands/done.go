package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "todo done <number|task-id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// Numbers refer to the list as last shown, so they resolve against the
	// cache without refreshing it first.
	task, err := lookupTask(env.Cache.Load(), ref)
	if err != nil {
		return fail(errOut, err)
	}
	if task.Completed {
		if !env.Config.Quiet {
			fmt.Fprintf(out, "already done: %s\n", task.Name)
		}
		return exitcode.Success
	}

	view, err := env.Core().CompleteTask(ctx, task.ID)
	if err != nil {
		return fail(errOut, err)
	}
	warn(env, errOut, view)

	if !env.Config.Quiet {
		if task.Name != "" {
			fmt.Fprintf(out, "done: %s\n", task.Name)
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
