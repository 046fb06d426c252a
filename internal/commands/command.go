// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"todo/internal/cache"
	"todo/internal/clock"
	"todo/internal/config"
	"todo/internal/credential"
	"todo/internal/dates"
	"todo/internal/exitcode"
	"todo/internal/focus"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/syncer"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command talks to the remote service.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// env is always provided; env.Remote is nil if NeedsAuth() returns
	// false. args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env is everything a command needs besides its own flags.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  clock.Clock

	// Remote is the configured backend. When it could not be opened, it
	// is a service.Unavailable carrying the reason.
	Remote service.Remote

	Cache       *cache.Store
	Credentials *credential.Store

	// Override is the explicit selection from flags or settings.
	Override focus.Override
}

// Core returns a sync core over the environment.
func (e *Env) Core() *syncer.Core {
	return e.core(false)
}

// core returns a sync core that also fetches completed tasks when asked
// to or when the settings show them.
func (e *Env) core(completed bool) *syncer.Core {
	return syncer.New(syncer.Options{
		Store:            e.Cache,
		Remote:           e.Remote,
		Clock:            e.Clock,
		Logger:           e.Logger,
		Override:         e.Override,
		IncludeCompleted: completed || e.Config.Settings.ShowCompleted,
	})
}

// Today returns the current local date.
func (e *Env) Today() dates.Date {
	return dates.Today(e.Clock.Now())
}

// MaxAge returns the configured cache freshness bound.
func (e *Env) MaxAge() time.Duration {
	return time.Duration(e.Config.Settings.MaxAge)
}

// readFlags are the cache-mode flags shared by read commands.
type readFlags struct {
	offline bool
	refresh bool

	// completed asks for completed tasks as well. It is set by commands,
	// not registered as a flag here.
	completed bool
}

func (f *readFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.offline, "offline", false, "use cached data only")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore the cache and fetch")
}

// view fetches the task view in the mode the flags select and prints its
// warnings. On failure it prints the error and returns the exit code.
func (f *readFlags) view(ctx context.Context, env *Env, errOut io.Writer) (*syncer.View, int) {
	if f.offline && f.refresh {
		output.New(errOut).Error(errConflictingModes)
		return nil, exitcode.UserError
	}

	mode := syncer.PreferCache
	switch {
	case f.offline:
		mode = syncer.CacheOnly
	case f.refresh:
		mode = syncer.ForceRefresh
	}

	view, err := env.core(f.completed).GetTaskView(ctx, mode, env.MaxAge())
	if err != nil {
		return nil, fail(errOut, err)
	}
	warn(env, errOut, view)
	return view, exitcode.Success
}

// warn prints the warnings of a view unless quiet.
func warn(env *Env, errOut io.Writer, view *syncer.View) {
	if env.Config.Quiet || view == nil {
		return
	}
	p := output.New(errOut)
	for _, w := range view.Warnings {
		p.Warning(w)
	}
}

// fail prints err and returns the matching exit code.
func fail(errOut io.Writer, err error) int {
	output.New(errOut).Error(err)
	return exitcode.For(err)
}
