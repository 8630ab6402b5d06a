package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newToolsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server advertises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			session, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
			if err != nil {
				return fmt.Errorf("list tools: %w", err)
			}
			return printTools(cmd.OutOrStdout(), res.Tools, opts.jsonOutput)
		},
	}
}

func newCallCmd(opts *cliOptions) *cobra.Command {
	var rawArgs string
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Call a tool and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments := map[string]any{}
			if text := trimmed(rawArgs); text != "" {
				if err := json.Unmarshal([]byte(text), &arguments); err != nil {
					return exitError{code: 2, message: fmt.Sprintf("--args must be a JSON object: %v", err)}
				}
			}

			ctx, cancel := withTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			session, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: args[0], Arguments: arguments})
			if err != nil {
				return fmt.Errorf("call %s: %w", args[0], err)
			}
			if err := printCallResult(cmd.OutOrStdout(), result, opts.jsonOutput); err != nil {
				return err
			}
			if result.IsError {
				return exitSilent(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rawArgs, "args", "{}", "tool arguments as a JSON object")
	return cmd
}

func newHealthCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Query the server health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := opts.healthURL()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return err
			}
			resp, err := opts.client().Do(req)
			if err != nil {
				return fmt.Errorf("health %s: %w", target, err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return fmt.Errorf("read health response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return exitError{code: 1, message: fmt.Sprintf("health %s: status %d", target, resp.StatusCode)}
			}
			return printHealth(cmd.OutOrStdout(), body, opts.jsonOutput)
		},
	}
}
