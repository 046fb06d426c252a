package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&ProjectsCmd{})
}

// ProjectsCmd implements the projects command.
type ProjectsCmd struct {
	read readFlags
}

func (c *ProjectsCmd) Name() string      { return "projects" }
func (c *ProjectsCmd) Aliases() []string { return []string{"lists"} }
func (c *ProjectsCmd) Synopsis() string  { return "Print workspaces and projects" }
func (c *ProjectsCmd) Usage() string     { return "todo projects [--offline|--refresh]" }
func (c *ProjectsCmd) NeedsAuth() bool   { return true }

func (c *ProjectsCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.read.register(fs)
}

func (c *ProjectsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	view, code := c.read.view(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}

	output.New(out).Projects(view.Snapshot, view.Selection)
	return exitcode.Success
}
