package backlog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cli/go-gh/v2/pkg/api"
)

const (
	apiPrefix = "/api/v2/"

	defaultTimeout        = 30 * time.Second
	defaultMaxElapsedTime = 30 * time.Second

	formContentType = "application/x-www-form-urlencoded"
	dateLayout      = "2006-01-02"
)

// DefaultPriorityID is the "Normal" priority
const DefaultPriorityID = 3

// ClientOptions configures a Backlog API client
type ClientOptions struct {
	// Space is the space domain, e.g. example.backlog.com
	Space string
	// APIKey is sent as the apiKey query parameter on every request
	APIKey string
	// BaseURL overrides https://<Space> (used by tests)
	BaseURL string
	// Transport overrides http.DefaultTransport
	Transport http.RoundTripper
	// Log receives HTTP request logs when set
	Log io.Writer
	// Timeout for each request, defaults to 30s
	Timeout time.Duration
	// MaxRetryElapsed bounds the retry window of read requests, defaults to 30s
	MaxRetryElapsed time.Duration
}

// Completion records a finished import batch
type Completion struct {
	ProjectKey string
	Issues     []*Issue
	FinishedAt time.Time
}

// Client is a wrapper around the go-gh REST client for Backlog API operations
type Client struct {
	rest            *api.RESTClient
	baseURL         string
	maxRetryElapsed time.Duration

	mu          sync.Mutex
	created     []*Issue
	completions map[string]Completion
}

// NewClient creates a new Backlog client
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, NewConfigurationError("API key is not set", nil)
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		if opts.Space == "" {
			return nil, NewConfigurationError("space domain is not set", nil)
		}
		base = "https://" + strings.TrimRight(opts.Space, "/")
	}

	parsed, err := url.Parse(base)
	if err != nil || parsed.Hostname() == "" {
		return nil, NewConfigurationError(fmt.Sprintf("invalid space URL %q", base), err)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	rest, err := api.NewRESTClient(api.ClientOptions{
		Host:         parsed.Hostname(),
		AuthToken:    opts.APIKey,
		Transport:    &apiKeyTransport{apiKey: opts.APIKey, rt: transport},
		Log:          opts.Log,
		LogIgnoreEnv: true,
		Timeout:      timeout,
		Headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "backlog-import",
		},
	})
	if err != nil {
		return nil, NewConfigurationError("failed to create REST client", err)
	}

	maxElapsed := opts.MaxRetryElapsed
	if maxElapsed == 0 {
		maxElapsed = defaultMaxElapsedTime
	}

	return &Client{
		rest:            rest,
		baseURL:         base,
		maxRetryElapsed: maxElapsed,
		completions:     make(map[string]Completion),
	}, nil
}

// IssueURL returns the browser URL of an issue
func (c *Client) IssueURL(issueKey string) string {
	return NewURLBuilder(c.baseURL).IssueURL(issueKey)
}

// ProjectURL returns the browser URL of a project
func (c *Client) ProjectURL(projectKey string) string {
	return NewURLBuilder(c.baseURL).ProjectURL(projectKey)
}

// GetProject fetches a project by key
func (c *Client) GetProject(ctx context.Context, projectKey string) (*Project, error) {
	var project Project
	if err := c.get(ctx, "projects/"+url.PathEscape(projectKey), "project "+projectKey, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListProjects returns the active projects the API key can see
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.get(ctx, "projects?archived=false", "projects", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetIssueTypes lists the issue types of a project
func (c *Client) GetIssueTypes(ctx context.Context, projectID int) ([]IssueType, error) {
	var types []IssueType
	if err := c.get(ctx, fmt.Sprintf("projects/%d/issueTypes", projectID), "issue types", &types); err != nil {
		return nil, err
	}
	return types, nil
}

// GetCustomFields lists the custom field definitions of a project
func (c *Client) GetCustomFields(ctx context.Context, projectID int) ([]CustomField, error) {
	var fields []CustomField
	if err := c.get(ctx, fmt.Sprintf("projects/%d/customFields", projectID), "custom fields", &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// GetCategories lists the categories of a project
func (c *Client) GetCategories(ctx context.Context, projectID int) ([]Category, error) {
	var categories []Category
	if err := c.get(ctx, fmt.Sprintf("projects/%d/categories", projectID), "categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetVersions lists the versions (also used as milestones) of a project
func (c *Client) GetVersions(ctx context.Context, projectID int) ([]Version, error) {
	var versions []Version
	if err := c.get(ctx, fmt.Sprintf("projects/%d/versions", projectID), "versions", &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// GetPriorities lists the space-wide priorities
func (c *Client) GetPriorities(ctx context.Context) ([]Priority, error) {
	var priorities []Priority
	if err := c.get(ctx, "priorities", "priorities", &priorities); err != nil {
		return nil, err
	}
	return priorities, nil
}

// GetProjectUsers lists the members of a project
func (c *Client) GetProjectUsers(ctx context.Context, projectID int) ([]User, error) {
	var users []User
	if err := c.get(ctx, fmt.Sprintf("projects/%d/users", projectID), "project users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetIssue fetches an issue by key. A missing issue returns nil without error.
func (c *Client) GetIssue(ctx context.Context, issueKey string) (*Issue, error) {
	var issue Issue
	err := c.get(ctx, "issues/"+url.PathEscape(issueKey), "issue "+issueKey, &issue)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue submits a draft. Creation is not idempotent and is never retried.
func (c *Client) CreateIssue(ctx context.Context, draft *IssueDraft) (*Issue, error) {
	if draft == nil {
		return nil, NewAPIError("issue draft is nil", nil)
	}

	body := strings.NewReader(EncodeIssueForm(draft).Encode())
	var issue Issue
	err := c.rest.DoWithContext(ctx, http.MethodPost, c.endpoint("issues"), body, &issue)
	if err != nil {
		return nil, classifyError(err, "issue creation")
	}

	c.mu.Lock()
	c.created = append(c.created, &issue)
	c.mu.Unlock()

	return &issue, nil
}

// FinalizeImport marks the current import batch as done for the project
func (c *Client) FinalizeImport(ctx context.Context, projectKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.completions[projectKey] = Completion{
		ProjectKey: projectKey,
		Issues:     c.created,
		FinishedAt: time.Now(),
	}
	c.created = nil
	return nil
}

// Completed returns the last finalized batch for the project
func (c *Client) Completed(projectKey string) (Completion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	completion, ok := c.completions[projectKey]
	return completion, ok
}

// EncodeIssueForm builds the form body for POST /issues
func EncodeIssueForm(draft *IssueDraft) url.Values {
	form := url.Values{}
	form.Set("projectId", strconv.Itoa(draft.ProjectID))
	form.Set("summary", draft.Summary)
	form.Set("issueTypeId", strconv.Itoa(draft.IssueType.ID))

	priorityID := DefaultPriorityID
	if draft.Priority != nil {
		priorityID = draft.Priority.ID
	}
	form.Set("priorityId", strconv.Itoa(priorityID))

	if draft.Description != "" {
		form.Set("description", draft.Description)
	}
	if draft.StartDate != nil {
		form.Set("startDate", draft.StartDate.Format(dateLayout))
	}
	if draft.DueDate != nil {
		form.Set("dueDate", draft.DueDate.Format(dateLayout))
	}
	if draft.EstimatedHours != nil {
		form.Set("estimatedHours", formatHours(*draft.EstimatedHours))
	}
	if draft.ActualHours != nil {
		form.Set("actualHours", formatHours(*draft.ActualHours))
	}
	for _, category := range draft.Categories {
		form.Add("categoryId[]", strconv.Itoa(category.ID))
	}
	for _, version := range draft.Versions {
		form.Add("versionId[]", strconv.Itoa(version.ID))
	}
	for _, milestone := range draft.Milestones {
		form.Add("milestoneId[]", strconv.Itoa(milestone.ID))
	}
	if draft.Assignee != nil {
		form.Set("assigneeId", strconv.Itoa(draft.Assignee.ID))
	}
	if draft.ParentIssueID != nil {
		form.Set("parentIssueId", strconv.Itoa(*draft.ParentIssueID))
	}
	for _, value := range draft.CustomFields {
		key := value.Field.ColumnKey()
		if value.Item != nil {
			form.Set(key, strconv.Itoa(value.Item.ID))
			continue
		}
		form.Set(key, value.Value)
	}

	return form
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + apiPrefix + path
}

// get issues an idempotent GET, retrying transient failures
func (c *Client) get(ctx context.Context, path, resource string, response interface{}) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxRetryElapsed

	operation := func() error {
		err := c.rest.DoWithContext(ctx, http.MethodGet, c.endpoint(path), nil, response)
		if err == nil {
			return nil
		}
		classified := classifyError(err, resource)
		if !isRetryable(classified) {
			return backoff.Permanent(classified)
		}
		return classified
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return classifyError(err, resource)
	}
	return nil
}

func isRetryable(err *Error) bool {
	switch err.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeAPI:
		return err.StatusCode == http.StatusTooManyRequests || err.StatusCode >= 500
	default:
		return false
	}
}

// apiKeyTransport authenticates requests with the apiKey query parameter
type apiKeyTransport struct {
	apiKey string
	rt     http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	query := clone.URL.Query()
	query.Set("apiKey", t.apiKey)
	clone.URL.RawQuery = query.Encode()

	// the key travels in the query, never as a header
	clone.Header.Del("Authorization")

	if req.Method == http.MethodPost {
		clone.Header.Set("Content-Type", formContentType)
	}

	return t.rt.RoundTrip(clone)
}
