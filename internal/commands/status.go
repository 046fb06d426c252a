package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"todo/internal/agenda"
	"todo/internal/cache"
	"todo/internal/dates"
	"todo/internal/exitcode"
	"todo/internal/focus"
	"todo/internal/output"
)

func init() {
	Register(&StatusCmd{})
}

// Status formats.
const (
	formatShort = "short"
	formatJSON  = "json"
)

// StatusCmd implements the status command: a compact due-task and focus
// summary for shell prompts and status bars.
type StatusCmd struct {
	read   readFlags
	format string
}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"st"} }
func (c *StatusCmd) Synopsis() string  { return "One-line status for prompts and status bars" }
func (c *StatusCmd) Usage() string {
	return "todo status [--format short|json] [--offline|--refresh]"
}
func (c *StatusCmd) NeedsAuth() bool { return true }

func (c *StatusCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.read.register(fs)
	fs.StringVarP(&c.format, "format", "f", formatShort, "output format: short or json")
}

// statusReport is the json format.
type statusReport struct {
	Overdue   int          `json:"overdue"`
	DueToday  int          `json:"due_today"`
	Urgent    int          `json:"urgent"`
	Focus     *focusReport `json:"focus"`
	FetchedAt time.Time    `json:"fetched_at"`
	Stale     bool         `json:"stale"`
}

type focusReport struct {
	Name      string     `json:"name"`
	Date      dates.Date `json:"date"`
	Completed bool       `json:"completed"`
}

func (c *StatusCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.format != formatShort && c.format != formatJSON {
		fmt.Fprintf(errOut, "error: unknown format: %s (want %s or %s)\n", c.format, formatShort, formatJSON)
		return exitcode.UserError
	}

	view, code := c.read.view(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}

	today := env.Today()
	buckets := agenda.ByDue(view.Snapshot.Tasks, today)
	day, found := focus.TodayFocus(view.Snapshot, view.Selection, today)

	if c.format == formatShort {
		output.New(out).Status(buckets, day, found, view.Selection.ProjectID != "")
		return exitcode.Success
	}

	report := statusReport{
		Overdue:   len(buckets.Overdue),
		DueToday:  len(buckets.Today),
		Urgent:    buckets.Urgent(),
		FetchedAt: view.Snapshot.FetchedAt.UTC(),
		Stale:     !view.Refreshed && cache.IsStale(view.Snapshot, env.MaxAge(), env.Clock.Now()),
	}
	if found {
		report.Focus = &focusReport{Name: day.Task.Name, Date: day.Date, Completed: day.Task.Completed}
	}
	if err := json.NewEncoder(out).Encode(report); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
