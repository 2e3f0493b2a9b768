package agent

import (
	"context"
	"encoding/json"
)

// RunInput is one turn handed to the agent run capability. A nil State
// means a brand-new thread.
type RunInput struct {
	ThreadID    string
	UserMessage string
	State       json.RawMessage
}

// FunctionCall marks the start of one function invocation inside a run.
type FunctionCall struct {
	CallID string
	Name   string
}

// FunctionResult marks the arrival of that invocation's result.
type FunctionResult struct {
	CallID string
	Name   string
}

// Update is one provider-level event from a run. Exactly one field group is
// set per update.
type Update struct {
	MessageID      string
	TextDelta      string
	FunctionCall   *FunctionCall
	FunctionResult *FunctionResult
}

// RunStream is the ordered update sequence of one agent run.
//
// Recv returns io.EOF when the run finishes and *ContentFilterError when
// the provider's content filter interrupts it. State serializes the thread
// after the run, including whatever the run produced before an
// interruption, and may be called once Recv has returned a terminal error.
type RunStream interface {
	Recv() (*Update, error)
	State() (json.RawMessage, error)
	Close() error
}

// Runner is the abstract multi-turn agent run capability.
type Runner interface {
	Run(ctx context.Context, input RunInput) (RunStream, error)
}
