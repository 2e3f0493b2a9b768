package taskapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/config"
)

// Client talks to the task management REST API the assistant operates on.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.TaskAPIURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http: http,
		log:  log.With().Str("component", "taskapi_client").Logger(),
	}
}

// Task is the API's task resource.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTaskParams are the writable fields of a new task.
type CreateTaskParams struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// UpdateTaskParams carries partial updates; nil fields are left unchanged.
type UpdateTaskParams struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsCompleted *bool      `json:"isCompleted,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, params CreateTaskParams) (*Task, error) {
	var task Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(params).
		SetResult(&task).
		Post("/api/tasks")
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("task api returned %d creating task", resp.StatusCode())
	}
	return &task, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&tasks).
		Get("/api/tasks")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("task api returned %d listing tasks", resp.StatusCode())
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id int) (*Task, error) {
	var task Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&task).
		Get(fmt.Sprintf("/api/tasks/%d", id))
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("task api returned %d getting task %d", resp.StatusCode(), id)
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int, params UpdateTaskParams) (*Task, error) {
	var task Task
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(params).
		SetResult(&task).
		Patch(fmt.Sprintf("/api/tasks/%d", id))
	if err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("task api returned %d updating task %d", resp.StatusCode(), id)
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/tasks/%d", id))
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("task api returned %d deleting task %d", resp.StatusCode(), id)
	}
	return nil
}
