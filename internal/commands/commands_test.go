package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"todo/internal/cache"
	"todo/internal/clock"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/credential"
	"todo/internal/dates"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/testutil"
)

var start = time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)

var errOffline = fmt.Errorf("connection refused: %w", service.ErrRemoteUnavailable)

type harness struct {
	remote *testutil.FakeRemote
	clock  *clock.Fake
	env    *commands.Env
}

// newHarness returns an environment over a FakeRemote with one workspace,
// a focus project and a work project holding two open tasks.
func newHarness(t *testing.T) *harness {
	t.Helper()

	remote := testutil.NewFakeRemote()
	remote.AddWorkspace("ws1", "Acme")
	remote.AddProject("ws1", "p1", "Focus", true)
	remote.AddProject("ws1", "p2", "Work", false)
	remote.AddSection("p2", "s1", "Backlog")
	remote.AddTask("ws1", service.Task{ID: "t1", Name: "Write report", ProjectID: "p2", Due: dates.Of(2026, time.January, 1)})
	remote.AddTask("ws1", service.Task{ID: "t2", Name: "Plan sprint", ProjectID: "p2", SectionID: "s1", Due: dates.Of(2026, time.January, 5)})

	clk := clock.NewFake(start)
	remote.Now = clk.Now

	dir := t.TempDir()
	cfg, err := config.New(filepath.Join(dir, "config"), filepath.Join(dir, "cache", "cache.json"))
	if err != nil {
		t.Fatalf("failed to create config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	creds := credential.NewStore(cfg.TokenPath(), logger)
	creds.Getenv = func(string) string { return "" }

	return &harness{
		remote: remote,
		clock:  clk,
		env: &commands.Env{
			Config:      cfg,
			Logger:      logger,
			Clock:       clk,
			Remote:      remote,
			Cache:       cache.NewStore(cfg.CachePath, logger),
			Credentials: creds,
		},
	}
}

// run parses args with the command's flags and runs it.
func (h *harness) run(t *testing.T, cmd commands.Command, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse %v: %v", args, err)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), h.env, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.VersionCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.HelpCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "Commands:", "todo done <number|task-id>", "(alias: create)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
const listOutput = "Work\n" +
	"   1  Write report  (today)\n" +
	"  Backlog\n" +
	"     2  Plan sprint  (2026-01-05)\n"

func TestListCommand_Refreshes(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != listOutput {
		t.Errorf("expected %q, got %q", listOutput, stdout)
	}
	if h.env.Cache.Load() == nil {
		t.Error("expected the snapshot to be cached")
	}
}

func TestListCommand_FreshCacheSkipsRemote(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.ListCmd{})
	h.remote.ResetCalls()
	h.clock.Advance(time.Minute)

	stdout, _, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != listOutput {
		t.Errorf("expected %q, got %q", listOutput, stdout)
	}
	if n := h.remote.TotalCalls(); n != 0 {
		t.Errorf("expected no remote calls, got %d", n)
	}
}

func TestListCommand_OfflineWithoutCache(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.ListCmd{}, "--offline")

	if code != exitcode.Offline {
		t.Errorf("expected exit code %d, got %d", exitcode.Offline, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: no cached data available\n" {
		t.Errorf("expected %q, got %q", "error: no cached data available\n", stderr)
	}
	if n := h.remote.TotalCalls(); n != 0 {
		t.Errorf("expected no remote calls, got %d", n)
	}
}

func TestListCommand_OfflineUsesStaleCache(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.ListCmd{})
	h.remote.ResetCalls()
	h.clock.Advance(24 * time.Hour)

	stdout, _, code := h.run(t, &commands.ListCmd{}, "--offline")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "Write report") {
		t.Errorf("expected cached tasks, got %q", stdout)
	}
	if n := h.remote.TotalCalls(); n != 0 {
		t.Errorf("expected no remote calls, got %d", n)
	}
}

func TestListCommand_ConflictingModes(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.ListCmd{}, "--offline", "--refresh")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "mutually exclusive") {
		t.Errorf("expected conflict error, got %q", stderr)
	}
}

func TestListCommand_StaleFallbackWarns(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.ListCmd{})
	h.clock.Advance(10 * time.Minute)
	h.remote.FailAll(errOffline)

	stdout, stderr, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != listOutput {
		t.Errorf("expected %q, got %q", listOutput, stdout)
	}
	if !strings.HasPrefix(stderr, "warning: refresh failed") {
		t.Errorf("expected stale cache warning, got %q", stderr)
	}
}

func TestListCommand_StaleFallbackQuiet(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.ListCmd{})
	h.clock.Advance(10 * time.Minute)
	h.remote.FailAll(errOffline)
	h.env.Config.Quiet = true

	_, stderr, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr in quiet mode, got %q", stderr)
	}
}

func TestListCommand_RemoteDownWithoutCache(t *testing.T) {
	h := newHarness(t)
	h.remote.FailAll(errOffline)

	_, stderr, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "connection refused") {
		t.Errorf("expected the remote error, got %q", stderr)
	}
}

func TestListCommand_NotLoggedIn(t *testing.T) {
	h := newHarness(t)
	h.env.Remote = service.Unavailable(credential.ErrNoCredential)

	_, stderr, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "todo login") {
		t.Errorf("expected a login hint, got %q", stderr)
	}
}

func TestListCommand_Empty(t *testing.T) {
	h := newHarness(t)
	h.remote.CompleteTask(context.Background(), "t1")
	h.remote.CompleteTask(context.Background(), "t2")

	stdout, _, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	h := newHarness(t)
	h.remote.CompleteTask(context.Background(), "t1")
	h.remote.CompleteTask(context.Background(), "t2")
	h.env.Config.Quiet = true

	stdout, _, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	// Quiet mode should suppress "no tasks found"
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_CompletedFlagFetchesCompletedTasks(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask("ws1", service.Task{ID: "t3", Name: "Filed taxes", ProjectID: "p2", Completed: true})

	stdout, _, code := h.run(t, &commands.ListCmd{})
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if strings.Contains(stdout, "Filed taxes") {
		t.Errorf("expected completed task hidden, got %q", stdout)
	}

	// The cache is fresh but holds no completed tasks, so this fetches.
	stdout, stderr, code := h.run(t, &commands.ListCmd{}, "--completed")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(stdout, "Filed taxes") {
		t.Errorf("expected completed task listed, got %q", stdout)
	}
	if !strings.Contains(stdout, "Write report") {
		t.Errorf("expected open tasks too, got %q", stdout)
	}
}

func TestListCommand_AmbiguousFocus(t *testing.T) {
	h := newHarness(t)
	h.remote.AddProject("ws1", "p3", "Focus two", true)

	_, stderr, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "choose a focus project with --project:\n  p1  Focus\n  p3  Focus two\n") {
		t.Errorf("expected candidates, got %q", stderr)
	}
}

func TestListCommand_ExplicitProjectNotPersisted(t *testing.T) {
	h := newHarness(t)
	h.remote.AddProject("ws1", "p3", "Focus two", true)
	h.env.Override.ProjectID = "p3"

	_, stderr, code := h.run(t, &commands.ListCmd{})

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	snap := h.env.Cache.Load()
	if snap == nil {
		t.Fatal("expected a cached snapshot")
	}
	if snap.FocusProjectID != "" {
		t.Errorf("expected no persisted focus project, got %q", snap.FocusProjectID)
	}
}

// Tests for summary command
func TestSummaryCommand(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.SummaryCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "0 overdue, 1 due today, 1 due this week\n" +
		"Today (1)\n" +
		"  Write report  (today)\n" +
		"This week (1)\n" +
		"  Plan sprint  (2026-01-05)\n" +
		`today: no "Daily Focus for Thursday (2026-01-01)" in "Daily Focuses (2025-12-29 to 2026-01-04)"` + "\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.AddCmd{}, "--due", "tomorrow", "Buy", "milk")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.HasPrefix(stdout, "created ") {
		t.Fatalf("expected created output, got %q", stdout)
	}

	id := strings.TrimSpace(strings.TrimPrefix(stdout, "created "))
	task, ok := h.remote.Task(id)
	if !ok {
		t.Fatalf("expected task %q to exist remotely", id)
	}
	if task.Name != "Buy milk" {
		t.Errorf("expected name %q, got %q", "Buy milk", task.Name)
	}
	if want := dates.Of(2026, time.January, 2); task.Due != want {
		t.Errorf("expected due %s, got %s", want, task.Due)
	}

	snap := h.env.Cache.Load()
	if snap == nil {
		t.Fatal("expected the cache to be refreshed")
	}
	if _, ok := snap.Task(id); !ok {
		t.Error("expected the new task in the cache")
	}
}

func TestAddCommand_IntoProject(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.AddCmd{}, "--in", "p2", "--section", "s1", "Review")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	task, _ := h.remote.Task(strings.TrimSpace(strings.TrimPrefix(stdout, "created ")))
	if task.ProjectID != "p2" || task.SectionID != "s1" {
		t.Errorf("expected task in p2/s1, got %q/%q", task.ProjectID, task.SectionID)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	h := newHarness(t)
	h.env.Config.Quiet = true

	stdout, _, code := h.run(t, &commands.AddCmd{}, "Buy", "milk")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.AddCmd{}, " ")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: title required\n" {
		t.Errorf("expected %q, got %q", "error: title required\n", stderr)
	}
}

func TestAddCommand_InvalidDue(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.AddCmd{}, "--due", "someday", "Buy milk")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "invalid date expression") {
		t.Errorf("expected date error, got %q", stderr)
	}
	if n := h.remote.Calls("CreateTask"); n != 0 {
		t.Errorf("expected no CreateTask call, got %d", n)
	}
}

func TestAddCommand_SectionWithoutProject(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.AddCmd{}, "--section", "s1", "Review")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: --section requires --in\n" {
		t.Errorf("expected %q, got %q", "error: --section requires --in\n", stderr)
	}
}

func TestAddCommand_RemoteDown(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.ListCmd{})
	h.remote.FailAll(errOffline)

	_, _, code := h.run(t, &commands.AddCmd{}, "Buy milk")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
}

// Tests for done command
func TestDoneCommand_ByNumber(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.ListCmd{})

	stdout, stderr, code := h.run(t, &commands.DoneCmd{}, "2")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "done: Plan sprint\n" {
		t.Errorf("expected %q, got %q", "done: Plan sprint\n", stdout)
	}
	if task, _ := h.remote.Task("t2"); !task.Completed {
		t.Error("expected t2 to be completed remotely")
	}
	if snap := h.env.Cache.Load(); snap != nil {
		if _, ok := snap.Task("t2"); ok {
			t.Error("expected t2 to leave the open-task cache")
		}
	}
}

func TestDoneCommand_ByID(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.DoneCmd{}, "t1")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}
	if task, _ := h.remote.Task("t1"); !task.Completed {
		t.Error("expected t1 to be completed remotely")
	}
}

func TestDoneCommand_NoRef(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.DoneCmd{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task reference required\n" {
		t.Errorf("expected %q, got %q", "error: task reference required\n", stderr)
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.ListCmd{})

	_, stderr, code := h.run(t, &commands.DoneCmd{}, "9")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "task number out of range: 9") {
		t.Errorf("expected out of range error, got %q", stderr)
	}
	if n := h.remote.Calls("CompleteTask"); n != 0 {
		t.Errorf("expected no CompleteTask call, got %d", n)
	}
}

func TestDoneCommand_UnknownID(t *testing.T) {
	h := newHarness(t)

	_, _, code := h.run(t, &commands.DoneCmd{}, "nope")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

func TestDoneCommand_RefreshFailureInvalidatesCache(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.ListCmd{})
	h.remote.TasksErr = errOffline

	_, stderr, code := h.run(t, &commands.DoneCmd{}, "1")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "warning: task completed, but refreshing the cache failed") {
		t.Errorf("expected refresh warning, got %q", stderr)
	}
	snap := h.env.Cache.Load()
	if snap == nil {
		t.Fatal("expected the invalidated snapshot to remain")
	}
	if !cache.IsStale(snap, time.Hour, h.clock.Now()) {
		t.Error("expected the snapshot to be stale after a failed refresh")
	}
}

// Tests for focus command
func TestFocusCommand_Show(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.FocusCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "workspace: Acme (ws1)\n" +
		"focus project: Focus (p1) [queried]\n" +
		`today: no "Daily Focus for Thursday (2026-01-01)" in "Daily Focuses (2025-12-29 to 2026-01-04)"` + "\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestFocusCommand_ShowsTodayEntry(t *testing.T) {
	h := newHarness(t)
	h.remote.AddSection("p1", "w1", "Daily Focuses (2025-12-29 to 2026-01-04)")
	h.remote.AddTask("ws1", service.Task{ID: "f1", Name: "Daily Focus for Thursday (2026-01-01)", ProjectID: "p1", SectionID: "w1"})

	stdout, _, code := h.run(t, &commands.FocusCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasSuffix(stdout, "today: Daily Focus for Thursday (2026-01-01) [open]\n") {
		t.Errorf("expected today's entry, got %q", stdout)
	}
}

func TestFocusCommand_SetThenShowCached(t *testing.T) {
	h := newHarness(t)

	stdout, stderr, code := h.run(t, &commands.FocusCmd{}, "set", "p2")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	expected := "workspace: Acme (ws1)\nfocus project: Work (p2) [cached]\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	stdout, _, code = h.run(t, &commands.FocusCmd{}, "--offline")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "focus project: Work (p2) [cached]\n") {
		t.Errorf("expected cached selection, got %q", stdout)
	}
}

func TestFocusCommand_SetUnknownProject(t *testing.T) {
	h := newHarness(t)

	_, _, code := h.run(t, &commands.FocusCmd{}, "set", "p9")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

func TestFocusCommand_Clear(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.FocusCmd{}, "set", "p2")

	stdout, _, code := h.run(t, &commands.FocusCmd{}, "clear")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected %q, got %q", "ok\n", stdout)
	}
	if snap := h.env.Cache.Load(); snap == nil || snap.FocusProjectID != "" {
		t.Error("expected the focus selection to be cleared")
	}
}

func TestFocusCommand_UnknownAction(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run(t, &commands.FocusCmd{}, "bogus")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown focus action: bogus\n" {
		t.Errorf("expected %q, got %q", "error: unknown focus action: bogus\n", stderr)
	}
}

// Tests for projects command
func TestProjectsCommand(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.ProjectsCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "Acme\n  * Focus  p1 (focus)\n    Work  p2\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Tests for update command
func TestUpdateCommand(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.UpdateCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "2 projects, 2 tasks\n" {
		t.Errorf("expected %q, got %q", "2 projects, 2 tasks\n", stdout)
	}
}

func TestUpdateCommand_FailureKeepsCache(t *testing.T) {
	h := newHarness(t)
	h.run(t, &commands.UpdateCmd{})
	h.remote.FailAll(errOffline)

	_, stderr, code := h.run(t, &commands.UpdateCmd{})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.HasPrefix(stderr, "error: refresh failed") {
		t.Errorf("expected refresh error, got %q", stderr)
	}
	if h.env.Cache.Load() == nil {
		t.Error("expected the previous snapshot to survive")
	}
}

// Tests for config command
func TestConfigCommand(t *testing.T) {
	h := newHarness(t)

	stdout, _, code := h.run(t, &commands.ConfigCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"# cache: " + h.env.Config.CachePath, "# token: " + h.env.Credentials.Path(), "backend: asana", "max_age: 5m0s"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in %q", want, stdout)
		}
	}
}
