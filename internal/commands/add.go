package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/dates"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	due       string
	projectID string
	sectionID string
	notes     string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todo add [--due <when>] [--in <project-id>] [--section <section-id>] [--notes <text>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.due, "due", "d", "", "due date: today, friday, next week, 2026-03-04, ...")
	fs.StringVar(&c.projectID, "in", "", "project to create the task in")
	fs.StringVar(&c.sectionID, "section", "", "section to create the task in")
	fs.StringVar(&c.notes, "notes", "", "task description")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return fail(errOut, errTitleRequired)
	}

	nt := service.NewTask{
		Name:        title,
		Notes:       c.notes,
		WorkspaceID: env.Override.WorkspaceID,
		ProjectID:   c.projectID,
		SectionID:   c.sectionID,
	}
	if c.due != "" {
		due, err := dates.Parse(c.due, env.Today())
		if err != nil {
			return fail(errOut, err)
		}
		nt.Due = due
	}
	if nt.SectionID != "" && nt.ProjectID == "" {
		fmt.Fprintln(errOut, "error: --section requires --in")
		return exitcode.UserError
	}

	view, task, err := env.Core().CreateTask(ctx, nt)
	if err != nil {
		return fail(errOut, err)
	}
	warn(env, errOut, view)

	if !env.Config.Quiet {
		fmt.Fprintf(out, "created %s\n", task.ID)
	}
	return exitcode.Success
}
