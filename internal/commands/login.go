package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"todo/internal/backend"
	"todo/internal/config"
	"todo/internal/credential"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	token string
	force bool
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Authenticate with the service" }
func (c *LoginCmd) Usage() string     { return "todo login [--token <personal-access-token>] [--force]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.token, "token", "", "store an Asana personal access token")
	fs.BoolVar(&c.force, "force", false, "log in again even if a valid credential exists")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cfg := env.Config

	if c.token != "" {
		if cfg.Settings.Backend != config.BackendAsana {
			fmt.Fprintf(errOut, "error: --token is only supported by the %s backend\n", config.BackendAsana)
			return exitcode.UserError
		}
		if err := env.Credentials.Save(credential.PersonalAccessToken(strings.TrimSpace(c.token))); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
		return ok(cfg, out)
	}

	oauthCfg, err := backend.OAuthConfig(cfg)
	if err != nil {
		if errors.Is(err, service.ErrAuth) && cfg.Settings.Backend == config.BackendGoogleTasks {
			printGoogleSetup(cfg, errOut)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if oauthCfg == nil {
		fmt.Fprintln(errOut, "error: no Asana OAuth app configured")
		fmt.Fprintln(errOut, "Run 'todo login --token <personal access token>', or set asana.client_id")
		fmt.Fprintf(errOut, "and asana.client_secret in %s.\n", cfg.SettingsPath())
		return exitcode.AuthError
	}

	if !c.force && c.hasValidCredential(ctx, env, oauthCfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	lock, err := credential.AcquireLock(cfg.LockPath(), env.Clock.Now())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer func() {
		if err := lock.Release(); err != nil {
			env.Logger.Warn("failed to release auth lock", "error", err)
		}
	}()

	token, err := credential.Loopback(ctx, oauthCfg, func(url string) {
		fmt.Fprintln(errOut, "Open this URL in your browser:")
		fmt.Fprintln(errOut, url)
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := env.Credentials.Save(credential.FromToken(token)); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	return ok(cfg, out)
}

// hasValidCredential reports whether the stored credential yields a token,
// refreshing it if needed.
func (c *LoginCmd) hasValidCredential(ctx context.Context, env *Env, oauthCfg *oauth2.Config) bool {
	if !env.Credentials.Exists() {
		return false
	}
	src, err := credential.NewSource(ctx, env.Credentials, oauthCfg, env.Clock)
	if err != nil {
		env.Logger.Debug("stored credential unusable", "error", err)
		return false
	}
	if src.Kind() != credential.KindOAuth {
		return false
	}
	tok, err := src.Token()
	if err != nil {
		env.Logger.Debug("stored credential rejected", "error", err)
		return false
	}
	return tok.RefreshToken != ""
}

func printGoogleSetup(cfg *config.Config, errOut io.Writer) {
	fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
	fmt.Fprintln(errOut, "To authenticate with Google Tasks, you need OAuth credentials:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Create a project (or select an existing one)")
	fmt.Fprintln(errOut, "3. Enable the Google Tasks API:")
	fmt.Fprintln(errOut, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
	fmt.Fprintln(errOut, "4. Create OAuth 2.0 credentials:")
	fmt.Fprintln(errOut, "   - Click 'Create Credentials' > 'OAuth client ID'")
	fmt.Fprintln(errOut, "   - Choose 'Desktop app' as application type")
	fmt.Fprintln(errOut, "   - Download the JSON file")
	fmt.Fprintln(errOut, "5. Save it as:")
	fmt.Fprintf(errOut, "   %s\n", cfg.OAuthClientPath())
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "Then run 'todo login' again.")
}

func ok(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
