package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"commercemcp/internal/domain"
)

func newTestRoot(args ...string) (*serveOptions, *bytes.Buffer, error) {
	return newTestRootWithLogger(zap.NewNop(), args...)
}

func newTestRootWithLogger(logger *zap.Logger, args ...string) (*serveOptions, *bytes.Buffer, error) {
	opts := &serveOptions{
		transport: domain.TransportStdio,
		httpPath:  domain.DefaultHTTPPath,
		logLevel:  "error",
		logger:    logger,
	}
	root := newRootCmd(opts)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	return opts, out, root.Execute()
}

func TestVersionCommand(t *testing.T) {
	_, out, err := newTestRoot("version")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "commerce-mcp dev")
}

func TestFlagBindings(t *testing.T) {
	opts, _, err := newTestRoot("--env", "production", "--log-level", "warn", "version")
	require.NoError(t, err)
	assert.Equal(t, "production", opts.environment)
	assert.Equal(t, "warn", opts.logLevel)
	assert.Equal(t, "production", opts.source().Environment)
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := newTestRoot("--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --log-level")
}

func TestValidateCommandReportsMissingConfig(t *testing.T) {
	for _, env := range []string{"APP_ENV", "NODE_ENV", "AUTH_BASE_URL", "AUTH_TOKEN_ENDPOINT", "API_BASE_URL", "CLIENT_ID", "CLIENT_SECRET"} {
		t.Setenv(env, "")
	}
	t.Chdir(t.TempDir())

	_, _, err := newTestRoot("validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required configuration")
}

func TestDefaultServeOptionsLogsAtInfo(t *testing.T) {
	opts, err := defaultServeOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.logger)
	assert.True(t, opts.logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, opts.logger.Core().Enabled(zapcore.FatalLevel))
	assert.Equal(t, domain.TransportStdio, opts.transport)
}

func TestEarlyFailuresKeepDefaultLogger(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "invalid log level", args: []string{"--log-level=bogus", "serve"}, want: "invalid --log-level"},
		{name: "unknown command", args: []string{"sever"}, want: "unknown command"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			initial := zap.New(core)

			opts, _, err := newTestRootWithLogger(initial, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			require.Same(t, initial, opts.logger)

			opts.logger.Error("command failed", zap.Error(err))
			require.Equal(t, 1, logs.Len())
			assert.Contains(t, logs.All()[0].ContextMap()["error"], tc.want)
		})
	}
}
