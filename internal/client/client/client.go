package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/models"
	"github.com/dmitrijs2005/gophtasks/internal/view"
)

const apiPrefix = "/api"

// Client is the API contract the CLI depends on.
type Client interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) (*LoginResult, error)
	ListTasks(ctx context.Context, q view.Query) ([]models.Task, error)
	Stats(ctx context.Context) (view.Stats, error)
	CreateTask(ctx context.Context, t models.NewTask) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (*models.Task, error)
	Health(ctx context.Context) (*Health, error)
}

// LoginResult is the answer of a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	UserName string `json:"username"`
}

// Health mirrors the server health document.
type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Database  string    `json:"database"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createTaskRequest struct {
	Text     string          `json:"text"`
	Priority models.Priority `json:"priority,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
	DueDate  *models.Date    `json:"dueDate,omitempty"`
}

type deleteTaskResponse struct {
	Message     string       `json:"message"`
	DeletedTask *models.Task `json:"deletedTask"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the server at baseURL. token may be
// empty for the auth and health calls.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, username string, password []byte) error {
	return c.do(ctx, http.MethodPost, "/register", credentials{Username: username, Password: string(password)}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username string, password []byte) (*LoginResult, error) {
	res := &LoginResult{}
	if err := c.do(ctx, http.MethodPost, "/login", credentials{Username: username, Password: string(password)}, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListTasks passes q to the server; empty parts are left out so the server
// keeps its default order.
func (c *HTTPClient) ListTasks(ctx context.Context, q view.Query) ([]models.Task, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", string(q.Category))
	}
	if q.Search != "" {
		params.Set("q", q.Search)
	}
	if q.SortBy != "" {
		params.Set("sort", string(q.SortBy))
	}

	path := "/tasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (view.Stats, error) {
	var s view.Stats
	err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, &s)
	return s, err
}

func (c *HTTPClient) CreateTask(ctx context.Context, t models.NewTask) (*models.Task, error) {
	req := createTaskRequest{Text: t.Text, Priority: t.Priority, Tags: t.Tags, DueDate: t.DueDate}
	task := &models.Task{}
	if err := c.do(ctx, http.MethodPost, "/tasks", req, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	task := &models.Task{}
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), p, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) (*models.Task, error) {
	res := &deleteTaskResponse{}
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, res); err != nil {
		return nil, err
	}
	return res.DeletedTask, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*Health, error) {
	h := &Health{}
	if err := c.do(ctx, http.MethodGet, "/health", nil, h); err != nil {
		return nil, err
	}
	return h, nil
}

// do sends in as JSON (when non-nil) and decodes a 2xx answer into out
// (when non-nil). Other statuses become *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		return NewAPIError(resp.StatusCode, e.Error)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
