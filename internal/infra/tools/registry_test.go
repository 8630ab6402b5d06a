package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/telemetry"
)

type echoInput struct {
	Value string `json:"value"`
}

func (in echoInput) Validate() []string {
	if in.Value == "" {
		return []string{"value: Required"}
	}
	return nil
}

func echoDescriptor(t *testing.T, name string, run func(context.Context, echoInput) (any, error)) Descriptor {
	t.Helper()
	schema, err := inputSchema[echoInput]()
	require.NoError(t, err)
	return NewDescriptor(name, "echo", schema, run)
}

func TestRegistry_ListPreservesOrder(t *testing.T) {
	ok := func(context.Context, echoInput) (any, error) { return nil, nil }
	registry, err := NewRegistry([]Descriptor{
		echoDescriptor(t, "b", ok),
		echoDescriptor(t, "a", ok),
		echoDescriptor(t, "c", ok),
	}, nil, nil)
	require.NoError(t, err)

	names := []string{}
	for _, descriptor := range registry.List() {
		names = append(names, descriptor.Name)
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestRegistry_RejectsDuplicateNames(t *testing.T) {
	ok := func(context.Context, echoInput) (any, error) { return nil, nil }
	_, err := NewRegistry([]Descriptor{echoDescriptor(t, "a", ok), echoDescriptor(t, "a", ok)}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateTool)
}

func TestRegistry_DispatchOutcomes(t *testing.T) {
	run := func(_ context.Context, in echoInput) (any, error) {
		switch in.Value {
		case "fail":
			return nil, &domain.Error{Code: domain.CodeUpstreamRequest, Message: "upstream said no", Status: 503}
		case "panic":
			panic("boom")
		default:
			return map[string]string{"echo": in.Value}, nil
		}
	}
	registry, err := NewRegistry([]Descriptor{echoDescriptor(t, "echo", run)}, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	envelope, err := registry.Dispatch(ctx, "echo", json.RawMessage(`{"value":"hi"}`))
	require.NoError(t, err)
	assert.True(t, envelope.Success)
	assert.Equal(t, map[string]string{"echo": "hi"}, envelope.Data)

	envelope, err = registry.Dispatch(ctx, "echo", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("Invalid input: value: Required"), envelope)

	envelope, err = registry.Dispatch(ctx, "echo", json.RawMessage(`{"value":7}`))
	require.NoError(t, err)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Invalid input: value: Expected string, received number", envelope.Error)

	envelope, err = registry.Dispatch(ctx, "echo", json.RawMessage(`{"value":"fail"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Failed("upstream said no"), envelope)

	envelope, err = registry.Dispatch(ctx, "echo", json.RawMessage(`{"value":"panic"}`))
	require.NoError(t, err)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "echo")
}

func TestRegistry_UnknownToolIsDistinct(t *testing.T) {
	registry, err := NewRegistry(nil, nil, nil)
	require.NoError(t, err)

	_, err = registry.Dispatch(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrToolNotFound))
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeNotFound, code)
	assert.Equal(t, `Tool "nope" not found`, domain.MessageOf(err))
}

func TestRegistry_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewPrometheusMetrics(reg)
	ok := func(context.Context, echoInput) (any, error) { return "ok", nil }
	registry, err := NewRegistry([]Descriptor{echoDescriptor(t, "echo", ok)}, metrics, nil)
	require.NoError(t, err)

	_, err = registry.Dispatch(context.Background(), "echo", json.RawMessage(`{"value":"x"}`))
	require.NoError(t, err)
	_, err = registry.Dispatch(context.Background(), "missing", nil)
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "commerce_mcp_tool_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestErrorEnvelope(t *testing.T) {
	assert.Equal(t, domain.Failed("plain failure"), ErrorEnvelope(errors.New("plain failure")))
	wrapped := domain.E(domain.CodeUnauthenticated, "op", "Authentication failed: denied", nil)
	assert.Equal(t, domain.Failed("Authentication failed: denied"), ErrorEnvelope(wrapped))
}
