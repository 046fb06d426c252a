// Package googletasks implements service.Remote using the Google Tasks API.
// Google Tasks has no workspaces or sections: a single synthetic workspace
// holds every task list, and each list is a project.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/dates"
	"todo/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// WorkspaceID and WorkspaceName describe the synthetic workspace.
	WorkspaceID   = "google"
	WorkspaceName = "Google Tasks"

	// PageSize is the number of items per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// idSeparator joins list and task IDs into one task ID.
	idSeparator = ":"
)

// Client implements service.Remote using Google Tasks API.
type Client struct {
	svc    *tasks.Service
	logger *slog.Logger
}

// OAuthConfig parses an oauth_client.json document.
func OAuthConfig(clientJSON []byte) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(clientJSON, tasks.TasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return cfg, nil
}

// New creates a new Google Tasks client authenticated by tokens.
func New(ctx context.Context, tokens oauth2.TokenSource, logger *slog.Logger) (*Client, error) {
	return NewWithHTTPClient(ctx, oauth2.NewClient(ctx, tokens), logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client. Extra
// options such as option.WithEndpoint are passed through (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{svc: svc, logger: logger}, nil
}

// Workspaces implements service.Remote.
func (c *Client) Workspaces(ctx context.Context) ([]service.Workspace, error) {
	return []service.Workspace{{ID: WorkspaceID, Name: WorkspaceName}}, nil
}

// Projects implements service.Remote. Task lists come back in API order;
// the default list is the focus candidate.
func (c *Client) Projects(ctx context.Context, workspaceID string) ([]service.Project, error) {
	if workspaceID != WorkspaceID {
		return nil, fmt.Errorf("workspace %q: %w", workspaceID, service.ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// First, get the default list to know its real ID
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []service.Project
	err = c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			isDefault := list.Id == defaultList.Id
			id := list.Id
			if isDefault {
				id = DefaultListID
			}
			result = append(result, service.Project{
				ID:             id,
				Name:           list.Title,
				WorkspaceID:    WorkspaceID,
				FocusCandidate: isDefault,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// Sections implements service.Remote. Task lists have no sections.
func (c *Client) Sections(ctx context.Context, projectID string) ([]service.Section, error) {
	return nil, nil
}

// Tasks implements service.Remote. A workspace scope covers every list.
func (c *Client) Tasks(ctx context.Context, scope service.TaskScope, filter service.TaskFilter) ([]service.Task, error) {
	listIDs := []string{scope.ProjectID}
	if scope.ProjectID == "" {
		projects, err := c.Projects(ctx, scope.WorkspaceID)
		if err != nil {
			return nil, err
		}
		listIDs = listIDs[:0]
		for _, p := range projects {
			listIDs = append(listIDs, p.ID)
		}
	}

	var result []service.Task
	for _, listID := range listIDs {
		ts, err := c.listTasks(ctx, listID, filter)
		if err != nil {
			return nil, err
		}
		result = append(result, ts...)
	}
	return result, nil
}

func (c *Client) listTasks(ctx context.Context, listID string, filter service.TaskFilter) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	call := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(filter.IncludeCompleted).
		ShowHidden(filter.IncludeCompleted).
		ShowDeleted(false)

	var result []service.Task
	err := call.Pages(ctx, func(resp *tasks.Tasks) error {
		for _, t := range resp.Items {
			task, err := toTask(listID, t)
			if err != nil {
				c.logger.Warn("skipping task with unreadable due date", "task", t.Id, "error", err)
				continue
			}
			result = append(result, task)
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// CreateTask implements service.Remote. Tasks without a project go to the
// default list.
func (c *Client) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	listID := nt.ProjectID
	if listID == "" {
		listID = DefaultListID
	}
	in := &tasks.Task{Title: nt.Name, Notes: nt.Notes}
	if !nt.Due.IsZero() {
		in.Due = nt.Due.Time(time.UTC).Format(time.RFC3339)
	}

	created, err := c.svc.Tasks.Insert(listID, in).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return toTask(listID, created)
}

// CompleteTask implements service.Remote.
func (c *Client) CompleteTask(ctx context.Context, taskID string) error {
	listID, id, ok := strings.Cut(taskID, idSeparator)
	if !ok {
		return fmt.Errorf("task %q: %w", taskID, service.ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.svc.Tasks.Patch(listID, id, &tasks.Task{
		Status: "completed",
	}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// toTask maps an API task. The due field is an RFC 3339 timestamp whose
// date part is the due date; the time part is always midnight UTC.
func toTask(listID string, t *tasks.Task) (service.Task, error) {
	task := service.Task{
		ID:        listID + idSeparator + t.Id,
		Name:      t.Title,
		Completed: t.Status == "completed",
		ProjectID: listID,
	}
	if t.Due != "" {
		due, err := time.Parse(time.RFC3339, t.Due)
		if err != nil {
			return service.Task{}, fmt.Errorf("invalid due %q: %w", t.Due, err)
		}
		task.Due = dates.FromTime(due.UTC())
	}
	if t.Updated != "" {
		if updated, err := time.Parse(time.RFC3339, t.Updated); err == nil {
			task.ModifiedAt = updated
		}
	}
	return task, nil
}

// wrapError classifies API errors into service error kinds.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", service.ErrRemoteUnavailable)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("token expired or revoked (run: todo login): %w", service.ErrAuth)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: todo login): %w", service.ErrAuth)
		case apiErr.Code == http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, service.ErrNotFound)
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
			return fmt.Errorf("%s: %w", apiErr.Message, service.ErrRemoteUnavailable)
		default:
			return err
		}
	}

	if errors.Is(err, service.ErrAuth) || errors.Is(err, service.ErrRemoteUnavailable) {
		return err
	}
	return fmt.Errorf("%v: %w", err, service.ErrRemoteUnavailable)
}

// Compile-time check that Client implements service.Remote.
var _ service.Remote = (*Client)(nil)
