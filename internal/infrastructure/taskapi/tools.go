package taskapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/agent"
)

// Tool names and the descriptions progress messages are derived from.
const (
	toolCreateTask   = "create_task"
	toolListTasks    = "list_tasks"
	toolGetTask      = "get_task"
	toolUpdateTask   = "update_task"
	toolCompleteTask = "complete_task"
	toolDeleteTask   = "delete_task"
)

var toolDescriptions = map[string]string{
	toolCreateTask:   "Create a new task",
	toolListTasks:    "List the pending tasks",
	toolGetTask:      "Get the details of a task",
	toolUpdateTask:   "Update an existing task",
	toolCompleteTask: "Complete a task",
	toolDeleteTask:   "Delete a task",
}

// Executor exposes the task API as agent functions.
type Executor struct {
	client *Client
	log    zerolog.Logger
}

func NewExecutor(client *Client, log zerolog.Logger) *Executor {
	return &Executor{
		client: client,
		log:    log.With().Str("component", "taskapi_tools").Logger(),
	}
}

var _ agent.ToolExecutor = (*Executor)(nil)

// SeedStatusRegistry registers every tool description so progress messages
// are derivable before the first run.
func (e *Executor) SeedStatusRegistry(registry *agent.StatusRegistry) {
	for name, description := range toolDescriptions {
		registry.Register(name, description)
	}
}

func (e *Executor) Declarations() []agent.ToolDeclaration {
	return []agent.ToolDeclaration{
		{
			Name:        toolCreateTask,
			Description: toolDescriptions[toolCreateTask],
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "description": "Short title of the task"},
					"description": {"type": "string", "description": "Optional longer description"},
					"dueDate": {"type": "string", "format": "date-time", "description": "Optional due date in RFC 3339 format"}
				},
				"required": ["title"]
			}`),
		},
		{
			Name:        toolListTasks,
			Description: toolDescriptions[toolListTasks],
			Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name:        toolGetTask,
			Description: toolDescriptions[toolGetTask],
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Identifier of the task"}
				},
				"required": ["id"]
			}`),
		},
		{
			Name:        toolUpdateTask,
			Description: toolDescriptions[toolUpdateTask],
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Identifier of the task"},
					"title": {"type": "string"},
					"description": {"type": "string"},
					"dueDate": {"type": "string", "format": "date-time"}
				},
				"required": ["id"]
			}`),
		},
		{
			Name:        toolCompleteTask,
			Description: toolDescriptions[toolCompleteTask],
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Identifier of the task"}
				},
				"required": ["id"]
			}`),
		},
		{
			Name:        toolDeleteTask,
			Description: toolDescriptions[toolDeleteTask],
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"id": {"type": "integer", "description": "Identifier of the task"}
				},
				"required": ["id"]
			}`),
		},
	}
}

// Execute dispatches one function call to the task API.
func (e *Executor) Execute(ctx context.Context, name string, arguments json.RawMessage) (json.RawMessage, error) {
	e.log.Debug().Str("function", name).RawJSON("arguments", arguments).Msg("Executing tool call")

	switch name {
	case toolCreateTask:
		var params struct {
			Title       string     `json:"title"`
			Description string     `json:"description"`
			DueDate     *time.Time `json:"dueDate"`
		}
		if err := json.Unmarshal(arguments, &params); err != nil {
			return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
		task, err := e.client.CreateTask(ctx, CreateTaskParams{
			Title:       params.Title,
			Description: params.Description,
			DueDate:     params.DueDate,
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(task)

	case toolListTasks:
		tasks, err := e.client.ListTasks(ctx)
		if err != nil {
			return nil, err
		}
		if tasks == nil {
			tasks = []Task{}
		}
		return json.Marshal(tasks)

	case toolGetTask:
		id, err := taskID(arguments)
		if err != nil {
			return nil, err
		}
		task, err := e.client.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return json.Marshal(task)

	case toolUpdateTask:
		var params struct {
			ID          int        `json:"id"`
			Title       *string    `json:"title"`
			Description *string    `json:"description"`
			DueDate     *time.Time `json:"dueDate"`
		}
		if err := json.Unmarshal(arguments, &params); err != nil {
			return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
		task, err := e.client.UpdateTask(ctx, params.ID, UpdateTaskParams{
			Title:       params.Title,
			Description: params.Description,
			DueDate:     params.DueDate,
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(task)

	case toolCompleteTask:
		id, err := taskID(arguments)
		if err != nil {
			return nil, err
		}
		completed := true
		task, err := e.client.UpdateTask(ctx, id, UpdateTaskParams{IsCompleted: &completed})
		if err != nil {
			return nil, err
		}
		return json.Marshal(task)

	case toolDeleteTask:
		id, err := taskID(arguments)
		if err != nil {
			return nil, err
		}
		if err := e.client.DeleteTask(ctx, id); err != nil {
			return nil, err
		}
		return json.Marshal(map[string]bool{"deleted": true})

	default:
		return nil, fmt.Errorf("unknown function %q", name)
	}
}

func taskID(arguments json.RawMessage) (int, error) {
	var params struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(arguments, &params); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}
	if params.ID <= 0 {
		return 0, fmt.Errorf("a positive task id is required")
	}
	return params.ID, nil
}
