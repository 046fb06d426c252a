package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todo help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(out, "  %s\n", cmd.Usage())
	}

	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		line := fmt.Sprintf("  %-10s %s", cmd.Name(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `
Running todo without a command lists open tasks.

Common flags:
  --config <dir>          Override config directory
  --cache <file>          Override cache file
  -w, --workspace <id>    Use this workspace for this run
  -p, --project <id>      Use this focus project for this run
  -q, --quiet             Suppress informational output
  --debug                 Print debug logs to stderr

Dates for --due: today, tomorrow, yesterday, friday, next friday, last friday,
next week, in 3 days, in 2 weeks, 2026-03-04, 2026/03/04, Mar 4, 4 March 2026.
`
