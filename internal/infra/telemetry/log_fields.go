package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldTool       = "tool"
	FieldMethod     = "method"
	FieldOperation  = "operation"
	FieldOutcome    = "outcome"
	FieldStatus     = "status"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

func ToolField(name string) zap.Field {
	return zap.String(FieldTool, name)
}

func MethodField(method string) zap.Field {
	return zap.String(FieldMethod, method)
}

func OperationField(operation string) zap.Field {
	return zap.String(FieldOperation, operation)
}

func OutcomeField(outcome string) zap.Field {
	return zap.String(FieldOutcome, outcome)
}

func StatusField(status int) zap.Field {
	return zap.Int(FieldStatus, status)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
