package agent

import (
	"context"
	"encoding/json"
)

// ToolDeclaration describes one callable function exposed to the model.
// Parameters holds the JSON schema of the function's arguments.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolExecutor declares and executes the functions available to a run.
// Execute returns the function result as a JSON document; transport-level
// failures surface as an error so the runner can report them to the model.
type ToolExecutor interface {
	Declarations() []ToolDeclaration
	Execute(ctx context.Context, name string, arguments json.RawMessage) (json.RawMessage, error)
}
