package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/telemetry"
)

type handler func(ctx context.Context, raw json.RawMessage) (domain.Envelope, domain.ToolOutcome)

// Descriptor is one registered tool. Descriptors are immutable once the
// registry is built.
type Descriptor struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema

	handle handler
}

// NewDescriptor binds a typed handler to a tool name. Arguments are
// decoded into In and validated before run is called; any error run
// returns becomes a failure envelope.
func NewDescriptor[In Input](name, description string, schema *jsonschema.Schema, run func(context.Context, In) (any, error)) Descriptor {
	return Descriptor{
		Name:        name,
		Description: description,
		InputSchema: schema,
		handle: func(ctx context.Context, raw json.RawMessage) (domain.Envelope, domain.ToolOutcome) {
			in, problems := decodeArguments[In](raw)
			if len(problems) > 0 {
				return domain.Failed("Invalid input: " + strings.Join(problems, ", ")), domain.ToolOutcomeInvalidInput
			}
			data, err := run(ctx, in)
			if err != nil {
				return ErrorEnvelope(err), domain.ToolOutcomeFailure
			}
			return domain.Succeeded(data), domain.ToolOutcomeSuccess
		},
	}
}

// Registry is the fixed, ordered tool table.
type Registry struct {
	tools   []Descriptor
	index   map[string]int
	metrics domain.Metrics
	logger  *zap.Logger
}

func NewRegistry(descriptors []Descriptor, metrics domain.Metrics, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	registry := &Registry{
		tools:   make([]Descriptor, 0, len(descriptors)),
		index:   make(map[string]int, len(descriptors)),
		metrics: metrics,
		logger:  logger.Named("tools"),
	}
	for _, descriptor := range descriptors {
		if descriptor.Name == "" || descriptor.handle == nil {
			return nil, fmt.Errorf("tool %q is incomplete", descriptor.Name)
		}
		if _, exists := registry.index[descriptor.Name]; exists {
			return nil, fmt.Errorf("register %q: %w", descriptor.Name, domain.ErrDuplicateTool)
		}
		registry.index[descriptor.Name] = len(registry.tools)
		registry.tools = append(registry.tools, descriptor)
	}
	return registry, nil
}

// List returns the descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.tools))
	copy(out, r.tools)
	return out
}

// Dispatch runs the named tool. An unknown name is the only error it
// returns; every other outcome is reported through the envelope.
func (r *Registry) Dispatch(ctx context.Context, name string, raw json.RawMessage) (domain.Envelope, error) {
	logger := telemetry.LoggerWithRequest(ctx, r.logger).With(telemetry.ToolField(name))
	started := time.Now()

	idx, ok := r.index[name]
	if !ok {
		r.metrics.ObserveToolCall(domain.ToolCallMetric{Tool: name, Outcome: domain.ToolOutcomeNotFound, Duration: time.Since(started)})
		logger.Warn("unknown tool requested")
		return domain.Envelope{}, domain.E(domain.CodeNotFound, "tools.Dispatch", fmt.Sprintf("Tool %q not found", name), domain.ErrToolNotFound)
	}

	logger.Debug("tool call", zap.String("arguments", telemetry.RedactArgs(raw)))
	envelope, outcome := r.invoke(ctx, r.tools[idx], raw, logger)
	elapsed := time.Since(started)
	r.metrics.ObserveToolCall(domain.ToolCallMetric{Tool: name, Outcome: outcome, Duration: elapsed})

	fields := []zap.Field{telemetry.OutcomeField(string(outcome)), telemetry.DurationField(elapsed)}
	if envelope.Success {
		logger.Info("tool call completed", fields...)
	} else {
		logger.Warn("tool call failed", append(fields, zap.String("error", envelope.Error))...)
	}
	return envelope, nil
}

func (r *Registry) invoke(ctx context.Context, descriptor Descriptor, raw json.RawMessage, logger *zap.Logger) (envelope domain.Envelope, outcome domain.ToolOutcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("tool handler panicked", zap.Any("panic", recovered), zap.Stack("stack"))
			envelope = domain.Failed("Internal error while executing " + descriptor.Name)
			outcome = domain.ToolOutcomePanic
		}
	}()
	return descriptor.handle(ctx, raw)
}

// ErrorEnvelope renders any error as a failure envelope.
func ErrorEnvelope(err error) domain.Envelope {
	message := domain.MessageOf(err)
	if message == "" {
		message = "unknown error"
	}
	return domain.Failed(message)
}
