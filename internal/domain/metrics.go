package domain

import "time"

// ToolOutcome labels how a tool invocation ended.
type ToolOutcome string

const (
	// ToolOutcomeSuccess indicates the envelope reported success.
	ToolOutcomeSuccess ToolOutcome = "success"
	// ToolOutcomeInvalidInput indicates the arguments failed validation.
	ToolOutcomeInvalidInput ToolOutcome = "invalid_input"
	// ToolOutcomeFailure indicates the handler reported a failure envelope.
	ToolOutcomeFailure ToolOutcome = "failure"
	// ToolOutcomeNotFound indicates no tool was registered under the name.
	ToolOutcomeNotFound ToolOutcome = "not_found"
	// ToolOutcomePanic indicates the handler panicked.
	ToolOutcomePanic ToolOutcome = "panic"
)

// ToolCallMetric records one dispatched tool call.
type ToolCallMetric struct {
	Tool     string
	Outcome  ToolOutcome
	Duration time.Duration
}

// UpstreamMetric records one HTTP request to the commerce API or auth server.
type UpstreamMetric struct {
	Operation string
	// Status is zero when no response was received.
	Status   int
	Duration time.Duration
	Err      error
}

// Metrics records observability signals.
type Metrics interface {
	ObserveToolCall(metric ToolCallMetric)
	ObserveUpstreamRequest(metric UpstreamMetric)
	ObserveCredentialRefresh(err error)
}
