package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/cache"
	"todo/internal/clock"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/credential"
	"todo/internal/exitcode"
	"todo/internal/focus"
	"todo/internal/service"
)

// RemoteFactory opens the backend for a command that needs it.
// Used to inject the backend during dispatch.
type RemoteFactory func(ctx context.Context, env *commands.Env) (service.Remote, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  RemoteFactory
	clock    clock.Clock
}

// NewDispatcher creates a new dispatcher with the given registry and remote factory.
func NewDispatcher(registry *commands.Registry, factory RemoteFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		clock:    clock.Real(),
	}
}

// SetClock replaces the wall clock (for testing).
func (d *Dispatcher) SetClock(c clock.Clock) {
	d.clock = c
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir   string
	cachePath   string
	workspaceID string
	projectID   string
	quiet       bool
	debug       bool
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "config directory")
	fs.StringVar(&f.cachePath, "cache", "", "cache file")
	fs.StringVarP(&f.workspaceID, "workspace", "w", "", "workspace for this run")
	fs.StringVarP(&f.projectID, "project", "p", "", "focus project for this run")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress informational output")
	fs.BoolVar(&f.debug, "debug", false, "print debug logs to stderr")
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n\n%s", cmd.Usage(), fs.FlagUsages())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(common.configDir, common.cachePath)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	logger := newLogger(errOut, common.debug)
	env := &commands.Env{
		Config:      cfg,
		Logger:      logger,
		Clock:       d.clock,
		Cache:       cache.NewStore(cfg.CachePath, logger),
		Credentials: credential.NewStore(cfg.TokenPath(), logger),
		Override: focus.Override{
			WorkspaceID: firstNonEmpty(common.workspaceID, cfg.Settings.Workspace),
			ProjectID:   firstNonEmpty(common.projectID, cfg.Settings.FocusProject),
		},
	}

	if cmd.NeedsAuth() {
		remote, err := d.openRemote(ctx, env)
		if err != nil {
			// Cached reads still work; remote calls report err.
			logger.Debug("backend unavailable", "error", err)
			remote = service.Unavailable(err)
		}
		env.Remote = remote
	}

	return cmd.Run(ctx, env, fs.Args(), out, errOut)
}

func (d *Dispatcher) openRemote(ctx context.Context, env *commands.Env) (service.Remote, error) {
	if d.factory == nil {
		return nil, fmt.Errorf("no backend configured: %w", service.ErrRemoteUnavailable)
	}
	return d.factory(ctx, env)
}

// newLogger returns a text logger on w: debug level with --debug, warnings
// only otherwise.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
