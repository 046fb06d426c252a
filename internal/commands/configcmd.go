package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"todo/internal/exitcode"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd implements the config command: print file locations and the
// effective settings.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string      { return "config" }
func (c *ConfigCmd) Aliases() []string { return nil }
func (c *ConfigCmd) Synopsis() string  { return "Print paths and effective settings" }
func (c *ConfigCmd) Usage() string     { return "todo config" }
func (c *ConfigCmd) NeedsAuth() bool   { return false }

func (c *ConfigCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ConfigCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cfg := env.Config
	fmt.Fprintf(out, "# settings: %s\n", cfg.SettingsPath())
	fmt.Fprintf(out, "# token: %s\n", env.Credentials.Path())
	fmt.Fprintf(out, "# cache: %s\n", env.Cache.Path())
	if err := cfg.Settings.Encode(out); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
