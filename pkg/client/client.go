// Package client talks to the task tracker HTTP API.
//
// Every call is bounded by the client timeout (10 seconds by default).
// Network failures and timeouts are reported as ErrTransport; responses
// with a non-2xx status are reported as *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

const DefaultTimeout = 10 * time.Second

var ErrTransport = errors.New("transport error")

// APIError is a failed response decoded from the {error} envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var resp struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []model.Task{}
	}
	return resp.Tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+id.String(), nil, &t)
	return t, err
}

func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/tasks", in, &t)
	return t, err
}

// CreateTaskWithKey sends an Idempotency-Key with the create. After an
// ErrTransport the call can be repeated with the same key without risking a
// duplicate task.
func (c *Client) CreateTaskWithKey(ctx context.Context, key string, in model.TaskInput) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/tasks", in, &t, withHeader("Idempotency-Key", key))
	return t, err
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, p model.TaskPatch) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+id.String(), p, &t)
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil)
}

// ToggleTask flips a task given the completion state the caller last saw.
func (c *Client) ToggleTask(ctx context.Context, id uuid.UUID, completed bool) (model.Task, error) {
	var resp struct {
		Task model.Task `json:"task"`
	}
	body := struct {
		Completed bool `json:"completed"`
	}{Completed: !completed}
	err := c.do(ctx, http.MethodPatch, "/tasks/"+id.String()+"/toggle", body, &resp)
	return resp.Task, err
}

// FlipTask asks the server to negate the stored value.
func (c *Client) FlipTask(ctx context.Context, id uuid.UUID) (model.Task, error) {
	var resp struct {
		Task model.Task `json:"task"`
	}
	err := c.do(ctx, http.MethodPatch, "/tasks/"+id.String()+"/toggle", nil, &resp)
	return resp.Task, err
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var resp struct {
		Users []model.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Users == nil {
		resp.Users = []model.User{}
	}
	return resp.Users, nil
}

type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(req *http.Request) { req.Header.Set(key, value) }
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, opts ...requestOption) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrTransport, method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
