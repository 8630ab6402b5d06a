package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"commercemcp/internal/buildinfo"
	"commercemcp/internal/domain"
)

type cliOptions struct {
	url        string
	timeout    time.Duration
	jsonOutput bool
	httpClient *http.Client
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{
		url:     fmt.Sprintf("http://localhost:%d%s", domain.DefaultPort, domain.DefaultHTTPPath),
		timeout: domain.DefaultUpstreamTimeout,
	}

	root := &cobra.Command{
		Use:           "commercectl",
		Short:         "CLI client for the commerce MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			applyRootFlagBindings(cmd, &opts)
			if _, err := url.ParseRequestURI(opts.url); err != nil {
				return fmt.Errorf("invalid --url %q: %w", opts.url, err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.url, "url", opts.url, "streamable HTTP MCP endpoint")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", opts.timeout, "request timeout")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")

	root.AddCommand(
		newToolsCmd(&opts),
		newCallCmd(&opts),
		newHealthCmd(&opts),
	)
	return root
}

func applyRootFlagBindings(cmd *cobra.Command, opts *cliOptions) {
	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "url":
			opts.url, _ = flags.GetString("url")
		case "timeout":
			opts.timeout, _ = flags.GetDuration("timeout")
		case "json":
			opts.jsonOutput, _ = flags.GetBool("json")
		}
	})
}

func (o *cliOptions) client() *http.Client {
	if o.httpClient != nil {
		return o.httpClient
	}
	return &http.Client{Timeout: o.timeout}
}

func (o *cliOptions) connect(ctx context.Context) (*mcp.ClientSession, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "commercectl", Version: buildinfo.Version}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   o.url,
		HTTPClient: o.client(),
		MaxRetries: -1,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", o.url, err)
	}
	return session, nil
}

// healthURL resolves /health against the MCP endpoint's host.
func (o *cliOptions) healthURL() (string, error) {
	parsed, err := url.Parse(o.url)
	if err != nil {
		return "", err
	}
	parsed.Path = domain.DefaultHealthPath
	parsed.RawQuery = ""
	return parsed.String(), nil
}

func withTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func trimmed(value string) string {
	return strings.TrimSpace(value)
}
