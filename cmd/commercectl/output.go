package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"commercemcp/internal/infra/telemetry"
)

func writeJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printTools(w io.Writer, tools []*mcp.Tool, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, map[string]any{"tools": tools})
	}
	fmt.Fprintf(w, "tools=%d\n", len(tools))
	for _, tool := range tools {
		fmt.Fprintln(w, tool.Name)
	}
	return nil
}

// printCallResult prints the text content of a tool result. With
// --json the envelope text is embedded as raw JSON when it parses.
func printCallResult(w io.Writer, result *mcp.CallToolResult, jsonOutput bool) error {
	if result == nil {
		return nil
	}
	for _, content := range result.Content {
		text, ok := content.(*mcp.TextContent)
		if !ok {
			continue
		}
		if jsonOutput {
			payload := map[string]any{"isError": result.IsError}
			if json.Valid([]byte(text.Text)) {
				payload["result"] = json.RawMessage(text.Text)
			} else {
				payload["result"] = text.Text
			}
			if err := writeJSON(w, payload); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(w, text.Text)
	}
	return nil
}

func printHealth(w io.Writer, body []byte, jsonOutput bool) error {
	var report telemetry.HealthReport
	if err := json.Unmarshal(body, &report); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if jsonOutput {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "%s service=%s environment=%s\n", report.Status, report.Service, report.Environment)
	for _, name := range slices.Sorted(maps.Keys(report.Endpoints)) {
		fmt.Fprintf(w, "%s=%s\n", name, report.Endpoints[name])
	}
	return nil
}
