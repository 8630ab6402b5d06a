package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"commercemcp/internal/app"
	"commercemcp/internal/buildinfo"
	"commercemcp/internal/domain"
	"commercemcp/internal/infra/config"
)

type serveOptions struct {
	configPath  string
	envFile     string
	environment string
	transport   string
	httpAddr    string
	httpPath    string
	logLevel    string
	logger      *zap.Logger
}

func main() {
	opts, err := defaultServeOptions()
	if err != nil {
		panic(err)
	}

	root := newRootCmd(&opts)
	if err := root.Execute(); err != nil {
		opts.logger.Fatal("command failed", zap.Error(err))
	}
}

// defaultServeOptions carries a production logger so failures raised
// before the pre-run (unknown command, bad --log-level) still reach stderr.
func defaultServeOptions() (serveOptions, error) {
	opts := serveOptions{
		transport: domain.TransportStdio,
		httpPath:  domain.DefaultHTTPPath,
		logLevel:  "info",
	}
	logger, err := newLogger(opts.logLevel)
	if err != nil {
		return serveOptions{}, err
	}
	opts.logger = logger
	return opts, nil
}

func newRootCmd(opts *serveOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           domain.ServiceName,
		Short:         "MCP server exposing commerce customer and order lookups as tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			applyServeFlagBindings(cmd.Flags(), opts)
			logger, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", opts.configPath, "optional YAML config file (${VAR} references are expanded)")
	flags.StringVar(&opts.envFile, "env-file", opts.envFile, "dotenv file to read (default .env.<APP_ENV> when present)")
	flags.StringVar(&opts.environment, "env", opts.environment, "environment name, overrides APP_ENV (beta or production)")
	flags.StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the commerce tools over MCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application := app.New(opts.logger)
			return application.Serve(ctx, app.ServeConfig{
				Config:    opts.source(),
				Transport: opts.transport,
				HTTPAddr:  opts.httpAddr,
				HTTPPath:  opts.httpPath,
			})
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", opts.transport, "MCP transport: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", opts.httpAddr, "listen address for streamable-http (default :PORT)")
	cmd.Flags().StringVar(&opts.httpPath, "http-path", opts.httpPath, "path of the streamable-http MCP endpoint")
	return cmd
}

func newValidateCmd(opts *serveOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration without contacting the upstream API",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := app.New(opts.logger)
			cfg, err := application.ValidateConfig(cmd.Context(), app.ValidateConfig{
				Config: opts.source(),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration ok (environment %s, client %s)\n",
				cfg.Environment, cfg.Upstream.ClientIDPrefix())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", domain.ServiceName, buildinfo.Version, buildinfo.Build)
			return err
		},
	}
}

func (o *serveOptions) source() config.Source {
	return config.Source{
		ConfigPath:  o.configPath,
		EnvFile:     o.envFile,
		Environment: o.environment,
	}
}

// newLogger writes JSON logs to stderr; stdout belongs to the stdio
// transport.
func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func applyServeFlagBindings(flags *pflag.FlagSet, opts *serveOptions) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "config":
			opts.configPath, _ = flags.GetString("config")
		case "env-file":
			opts.envFile, _ = flags.GetString("env-file")
		case "env":
			opts.environment, _ = flags.GetString("env")
		case "log-level":
			opts.logLevel, _ = flags.GetString("log-level")
		case "transport":
			opts.transport, _ = flags.GetString("transport")
		case "http-addr":
			opts.httpAddr, _ = flags.GetString("http-addr")
		case "http-path":
			opts.httpPath, _ = flags.GetString("http-path")
		}
	})
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
