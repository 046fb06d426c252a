package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/agenda"
	"todo/internal/exitcode"
	"todo/internal/focus"
	"todo/internal/output"
)

func init() {
	Register(&SummaryCmd{})
}

// SummaryCmd implements the summary command: open tasks by due date plus
// today's focus entry.
type SummaryCmd struct {
	read readFlags
}

func (c *SummaryCmd) Name() string      { return "summary" }
func (c *SummaryCmd) Aliases() []string { return []string{"due"} }
func (c *SummaryCmd) Synopsis() string  { return "Show overdue and upcoming tasks" }
func (c *SummaryCmd) Usage() string     { return "todo summary [--offline|--refresh]" }
func (c *SummaryCmd) NeedsAuth() bool   { return true }

func (c *SummaryCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.read.register(fs)
}

func (c *SummaryCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	view, code := c.read.view(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}

	today := env.Today()
	p := output.New(out)
	p.Summary(agenda.ByDue(view.Snapshot.Tasks, today), today)
	if view.Selection.ProjectID != "" {
		day, ok := focus.TodayFocus(view.Snapshot, view.Selection, today)
		p.FocusDay(day, ok, today)
	}
	return exitcode.Success
}
