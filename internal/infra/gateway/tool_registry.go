package gateway

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"commercemcp/internal/domain"
	"commercemcp/internal/infra/telemetry"
	"commercemcp/internal/infra/tools"
)

type toolRegistry struct {
	server   *mcp.Server
	registry *tools.Registry
	logger   *zap.Logger
}

func newToolRegistry(server *mcp.Server, registry *tools.Registry, logger *zap.Logger) *toolRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &toolRegistry{
		server:   server,
		registry: registry,
		logger:   logger.Named("tool_registry"),
	}
}

// Apply attaches every descriptor to the server in registry order.
func (r *toolRegistry) Apply() int {
	if r.registry == nil {
		return 0
	}
	applied := 0
	for _, descriptor := range r.registry.List() {
		if !isObjectSchema(descriptor.InputSchema) {
			r.logger.Warn("skip tool with invalid input schema", telemetry.ToolField(descriptor.Name))
			continue
		}
		r.server.AddTool(&mcp.Tool{
			Name:        descriptor.Name,
			Description: descriptor.Description,
			InputSchema: descriptor.InputSchema,
		}, r.handler(descriptor.Name))
		applied++
	}
	r.logger.Debug("tools registered", zap.Int("count", applied))
	return applied
}

func (r *toolRegistry) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, _ = telemetry.EnsureRequestMeta(ctx)
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		envelope, err := r.registry.Dispatch(ctx, name, args)
		if err != nil {
			envelope = tools.ErrorEnvelope(err)
		}
		return renderEnvelope(envelope), nil
	}
}

// renderEnvelope writes the envelope as indented JSON text. Failure
// envelopes are flagged with IsError so clients can branch without
// parsing the text.
func renderEnvelope(envelope domain.Envelope) *mcp.CallToolResult {
	text, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		envelope = domain.Failed("Internal error while encoding result: " + err.Error())
		text, _ = json.Marshal(envelope)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
		IsError: !envelope.Success,
	}
}

func isObjectSchema(schema *jsonschema.Schema) bool {
	return schema != nil && schema.Type == "object"
}
