// Package asana implements service.Remote against the Asana REST API.
package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"todo/internal/dates"
	"todo/internal/service"
)

const (
	// DefaultBaseURL is the Asana API root.
	DefaultBaseURL = "https://app.asana.com/api/1.0"

	// AuthURL and TokenURL are Asana's OAuth endpoints.
	AuthURL  = "https://app.asana.com/-/oauth_authorize"
	TokenURL = "https://app.asana.com/-/oauth_token"

	// APITimeout is the timeout for a single API request.
	APITimeout = 10 * time.Second

	// PageSize is the number of items requested per page.
	PageSize = 100
)

// DefaultFocusPattern marks projects whose name mentions "focus".
var DefaultFocusPattern = regexp.MustCompile(`(?i)focus`)

// Refresher forces a new access token after the API rejected the current
// one.
type Refresher interface {
	ForceRefresh() error
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides DefaultBaseURL (for testing).
	BaseURL string

	// HTTPClient defaults to a client without timeout; requests carry
	// their own deadline.
	HTTPClient *http.Client

	// Tokens supplies the bearer token for each request.
	Tokens oauth2.TokenSource

	// Refresher, when set, is asked once per request for a new token
	// after a 401.
	Refresher Refresher

	// FocusPattern marks focus-candidate projects by name. Defaults to
	// DefaultFocusPattern.
	FocusPattern *regexp.Regexp

	Logger *slog.Logger
}

// Client implements service.Remote using the Asana API.
type Client struct {
	baseURL      string
	http         *http.Client
	tokens       oauth2.TokenSource
	refresher    Refresher
	focusPattern *regexp.Regexp
	logger       *slog.Logger
}

// New creates a new Asana client.
func New(opts Options) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		http:         opts.HTTPClient,
		tokens:       opts.Tokens,
		refresher:    opts.Refresher,
		focusPattern: opts.FocusPattern,
		logger:       opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.focusPattern == nil {
		c.focusPattern = DefaultFocusPattern
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// OAuthConfig returns the OAuth client configuration for an Asana app.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"default"},
	}
}

type gidName struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

type apiTask struct {
	GID         string    `json:"gid"`
	Name        string    `json:"name"`
	Completed   bool      `json:"completed"`
	DueOn       *string   `json:"due_on"`
	ModifiedAt  time.Time `json:"modified_at"`
	Memberships []struct {
		Project *struct {
			GID string `json:"gid"`
		} `json:"project"`
		Section *struct {
			GID string `json:"gid"`
		} `json:"section"`
	} `json:"memberships"`
}

const taskFields = "gid,name,completed,due_on,modified_at,memberships.project.gid,memberships.section.gid"

// Workspaces implements service.Remote.
func (c *Client) Workspaces(ctx context.Context) ([]service.Workspace, error) {
	items, err := getAll[gidName](ctx, c, "/workspaces", url.Values{"opt_fields": {"gid,name"}})
	if err != nil {
		return nil, err
	}
	out := make([]service.Workspace, len(items))
	for i, w := range items {
		out[i] = service.Workspace{ID: w.GID, Name: w.Name}
	}
	return out, nil
}

// Projects implements service.Remote.
func (c *Client) Projects(ctx context.Context, workspaceID string) ([]service.Project, error) {
	q := url.Values{
		"workspace":  {workspaceID},
		"archived":   {"false"},
		"opt_fields": {"gid,name"},
	}
	items, err := getAll[gidName](ctx, c, "/projects", q)
	if err != nil {
		return nil, err
	}
	out := make([]service.Project, len(items))
	for i, p := range items {
		out[i] = service.Project{
			ID:             p.GID,
			Name:           p.Name,
			WorkspaceID:    workspaceID,
			FocusCandidate: c.focusPattern.MatchString(p.Name),
		}
	}
	return out, nil
}

// Sections implements service.Remote.
func (c *Client) Sections(ctx context.Context, projectID string) ([]service.Section, error) {
	path := "/projects/" + url.PathEscape(projectID) + "/sections"
	items, err := getAll[gidName](ctx, c, path, url.Values{"opt_fields": {"gid,name"}})
	if err != nil {
		return nil, err
	}
	out := make([]service.Section, len(items))
	for i, s := range items {
		out[i] = service.Section{ID: s.GID, Name: s.Name, ProjectID: projectID}
	}
	return out, nil
}

// Tasks implements service.Remote. A workspace scope returns the tasks
// assigned to the authenticated user.
func (c *Client) Tasks(ctx context.Context, scope service.TaskScope, filter service.TaskFilter) ([]service.Task, error) {
	q := url.Values{"opt_fields": {taskFields}}
	if scope.ProjectID != "" {
		q.Set("project", scope.ProjectID)
	} else {
		q.Set("workspace", scope.WorkspaceID)
		q.Set("assignee", "me")
	}
	if !filter.IncludeCompleted {
		q.Set("completed_since", "now")
	}

	items, err := getAll[apiTask](ctx, c, "/tasks", q)
	if err != nil {
		return nil, err
	}
	out := make([]service.Task, 0, len(items))
	for _, t := range items {
		task, err := toTask(t, scope.ProjectID)
		if err != nil {
			c.logger.Warn("skipping task with unreadable due date", "task", t.GID, "error", err)
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

type createTaskRequest struct {
	Name        string             `json:"name"`
	Notes       string             `json:"notes,omitempty"`
	DueOn       string             `json:"due_on,omitempty"`
	Workspace   string             `json:"workspace,omitempty"`
	Assignee    string             `json:"assignee"`
	Projects    []string           `json:"projects,omitempty"`
	Memberships []createMembership `json:"memberships,omitempty"`
}

type createMembership struct {
	Project string `json:"project"`
	Section string `json:"section"`
}

// CreateTask implements service.Remote. The task is assigned to the
// authenticated user.
func (c *Client) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	req := createTaskRequest{
		Name:      nt.Name,
		Notes:     nt.Notes,
		Workspace: nt.WorkspaceID,
		Assignee:  "me",
	}
	if !nt.Due.IsZero() {
		req.DueOn = nt.Due.String()
	}
	switch {
	case nt.ProjectID != "" && nt.SectionID != "":
		req.Memberships = []createMembership{{Project: nt.ProjectID, Section: nt.SectionID}}
	case nt.ProjectID != "":
		req.Projects = []string{nt.ProjectID}
	}

	var created apiTask
	q := url.Values{"opt_fields": {taskFields}}
	if err := c.do(ctx, http.MethodPost, "/tasks", q, req, &created); err != nil {
		return service.Task{}, err
	}
	return toTask(created, nt.ProjectID)
}

// CompleteTask implements service.Remote.
func (c *Client) CompleteTask(ctx context.Context, taskID string) error {
	body := map[string]bool{"completed": true}
	return c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(taskID), url.Values{"opt_fields": {"gid"}}, body, nil)
}

// toTask maps an API task. projectID, when set, picks the membership
// whose section is reported.
func toTask(t apiTask, projectID string) (service.Task, error) {
	task := service.Task{
		ID:         t.GID,
		Name:       t.Name,
		Completed:  t.Completed,
		ModifiedAt: t.ModifiedAt,
	}
	if t.DueOn != nil && *t.DueOn != "" {
		due, err := dates.ParseISO(*t.DueOn)
		if err != nil {
			return service.Task{}, err
		}
		task.Due = due
	}
	for _, m := range t.Memberships {
		if m.Project == nil {
			continue
		}
		if projectID != "" && m.Project.GID != projectID {
			continue
		}
		task.ProjectID = m.Project.GID
		if m.Section != nil {
			task.SectionID = m.Section.GID
		}
		break
	}
	if task.ProjectID == "" {
		task.ProjectID = projectID
	}
	return task, nil
}

type page[T any] struct {
	Data     []T `json:"data"`
	NextPage *struct {
		Offset string `json:"offset"`
	} `json:"next_page"`
}

// getAll follows next_page offsets until the listing is exhausted.
func getAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("limit", fmt.Sprint(PageSize))

	var all []T
	for {
		var p page[T]
		if err := c.request(ctx, http.MethodGet, path, q, nil, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Data...)
		if p.NextPage == nil || p.NextPage.Offset == "" {
			return all, nil
		}
		q.Set("offset", p.NextPage.Offset)
	}
}

// do sends a request whose body and response use the {"data": ...}
// envelope.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload any
	if body != nil {
		payload = map[string]any{"data": body}
	}
	if out == nil {
		return c.request(ctx, method, path, query, payload, nil)
	}
	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	return c.request(ctx, method, path, query, payload, &envelope)
}

// request performs one API call, retrying once with a forced token
// refresh when the first attempt is rejected with 401.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	status, data, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && c.refresher != nil {
		c.logger.Debug("request unauthorized, refreshing token", "method", method, "path", path)
		if rerr := c.refresher.ForceRefresh(); rerr != nil {
			return rerr
		}
		if status, data, err = c.send(ctx, method, path, query, body); err != nil {
			return err
		}
	}

	if err := statusError(status, data); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: invalid response: %v: %w", method, path, err, service.ErrRemoteUnavailable)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return 0, nil, err
	}
	tok.SetAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, wrapTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, wrapTransportError(err)
	}
	c.logger.Debug("asana request", "method", method, "path", path, "status", resp.StatusCode)
	return resp.StatusCode, data, nil
}

type apiErrors struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// statusError maps an HTTP status to a service error kind, keeping the
// API's own message when it sent one.
func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	msg := http.StatusText(status)
	var ae apiErrors
	if json.Unmarshal(body, &ae) == nil && len(ae.Errors) > 0 {
		parts := make([]string, len(ae.Errors))
		for i, e := range ae.Errors {
			parts[i] = e.Message
		}
		msg = strings.Join(parts, "; ")
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s (run: todo login): %w", msg, service.ErrAuth)
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, service.ErrNotFound)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%s: %w", msg, service.ErrRemoteUnavailable)
	default:
		return fmt.Errorf("asana: %s (status %d)", msg, status)
	}
}

func wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", service.ErrRemoteUnavailable)
	}
	return fmt.Errorf("%v: %w", err, service.ErrRemoteUnavailable)
}

// Compile-time check that Client implements service.Remote.
var _ service.Remote = (*Client)(nil)
