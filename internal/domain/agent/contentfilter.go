package agent

import "fmt"

// FilterStage records where the provider's content filter fired.
type FilterStage string

const (
	// FilterStagePrompt: the filter rejected the request before any update
	// was produced.
	FilterStagePrompt FilterStage = "prompt"
	// FilterStageCompletion: the filter cut the run off after updates had
	// already streamed.
	FilterStageCompletion FilterStage = "completion"
)

// ContentFilterError signals a provider-side safety interruption. It is a
// recoverable condition, not a failure: the orchestrator converts it into a
// dedicated wire event and completes the stream normally.
type ContentFilterError struct {
	Stage FilterStage
}

func (e *ContentFilterError) Error() string {
	return fmt.Sprintf("content filter triggered at %s stage", e.Stage)
}
