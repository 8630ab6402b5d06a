package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"commercemcp/internal/domain"
)

// Source says where configuration may come from besides the process
// environment.
type Source struct {
	// ConfigPath is an optional YAML file.
	ConfigPath string
	// EnvFile is an optional dotenv file. When empty, .env.<environment>
	// is read from Dir if it exists.
	EnvFile string
	Dir     string
	// Environment overrides APP_ENV.
	Environment string
}

type binding struct {
	key      string
	envs     []string
	required bool
}

var bindings = []binding{
	{key: "environment", envs: []string{"APP_ENV", "NODE_ENV"}},
	{key: "authBaseUrl", envs: []string{"AUTH_BASE_URL"}, required: true},
	{key: "authTokenEndpoint", envs: []string{"AUTH_TOKEN_ENDPOINT"}, required: true},
	{key: "apiBaseUrl", envs: []string{"API_BASE_URL"}, required: true},
	{key: "clientId", envs: []string{"CLIENT_ID"}, required: true},
	{key: "clientSecret", envs: []string{"CLIENT_SECRET"}, required: true},
	{key: "grantType", envs: []string{"GRANT_TYPE"}},
	{key: "port", envs: []string{"PORT"}},
}

type rawConfig struct {
	Environment       string `mapstructure:"environment"`
	AuthBaseURL       string `mapstructure:"authBaseUrl"`
	AuthTokenEndpoint string `mapstructure:"authTokenEndpoint"`
	APIBaseURL        string `mapstructure:"apiBaseUrl"`
	ClientID          string `mapstructure:"clientId"`
	ClientSecret      string `mapstructure:"clientSecret"`
	GrantType         string `mapstructure:"grantType"`
	Port              int    `mapstructure:"port"`
}

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("environment", domain.DefaultEnvironment)
	v.SetDefault("grantType", domain.DefaultGrantType)
	v.SetDefault("port", domain.DefaultPort)
	for _, b := range bindings {
		_ = v.BindEnv(append([]string{b.key}, b.envs...)...)
	}
	return v
}

// Load resolves configuration with precedence environment > dotenv file
// > YAML file > defaults, then validates it.
func (l *Loader) Load(ctx context.Context, src Source) (domain.Config, error) {
	const op = "config.Load"
	v := newConfigViper()

	if src.ConfigPath != "" {
		data, err := os.ReadFile(src.ConfigPath)
		if err != nil {
			return domain.Config{}, domain.E(domain.CodeInvalidConfig, op, fmt.Sprintf("read config: %v", err), err)
		}
		expanded, missing, err := expandConfigEnv(data)
		if err != nil {
			return domain.Config{}, domain.E(domain.CodeInvalidConfig, op, "", err)
		}
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.String("path", src.ConfigPath), zap.Strings("missing", missing))
		}
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return domain.Config{}, domain.E(domain.CodeInvalidConfig, op, fmt.Sprintf("parse config: %v", err), err)
		}
	}

	environment := src.Environment
	if environment == "" {
		environment = v.GetString("environment")
	}
	if err := l.mergeEnvFile(v, src, environment); err != nil {
		return domain.Config{}, domain.E(domain.CodeInvalidConfig, op, "", err)
	}
	if src.Environment != "" {
		v.Set("environment", src.Environment)
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Config{}, domain.E(domain.CodeInvalidConfig, op, fmt.Sprintf("decode config: %v", err), err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	cfg, problems, missing := normalize(raw)
	if len(problems) > 0 {
		var cause error
		if missing {
			cause = domain.ErrMissingConfig
		}
		return domain.Config{}, domain.E(domain.CodeInvalidConfig, op, strings.Join(problems, "; "), cause)
	}

	l.logger.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("authBaseUrl", cfg.Upstream.AuthBaseURL),
		zap.String("apiBaseUrl", cfg.Upstream.APIBaseURL),
		zap.String("clientId", cfg.Upstream.ClientIDPrefix()),
	)
	return cfg, nil
}

// EnvFileName is the dotenv file read for an environment.
func EnvFileName(environment string) string {
	if environment == domain.ProductionEnvironment {
		return ".env.production"
	}
	return ".env.beta"
}

func (l *Loader) mergeEnvFile(v *viper.Viper, src Source, environment string) error {
	path := src.EnvFile
	explicit := path != ""
	if !explicit {
		path = filepath.Join(src.Dir, EnvFileName(environment))
	}
	if _, err := os.Stat(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		l.logger.Debug("no env file", zap.String("path", path))
		return nil
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	values := map[string]any{}
	for _, b := range bindings {
		for _, env := range b.envs {
			if dotenv.IsSet(env) {
				values[b.key] = dotenv.Get(env)
				break
			}
		}
	}
	l.logger.Debug("env file loaded", zap.String("path", path), zap.Int("keys", len(values)))
	return v.MergeConfigMap(values)
}

func normalize(raw rawConfig) (domain.Config, []string, bool) {
	cfg := domain.Config{
		Environment: strings.TrimSpace(raw.Environment),
		Port:        raw.Port,
		Upstream: domain.UpstreamConfig{
			AuthBaseURL:   strings.TrimSpace(raw.AuthBaseURL),
			AuthTokenPath: strings.TrimSpace(raw.AuthTokenEndpoint),
			APIBaseURL:    strings.TrimSpace(raw.APIBaseURL),
			ClientID:      strings.TrimSpace(raw.ClientID),
			ClientSecret:  raw.ClientSecret,
			GrantType:     strings.TrimSpace(raw.GrantType),
		},
	}
	if cfg.Environment == "" {
		cfg.Environment = domain.DefaultEnvironment
	}
	if cfg.Upstream.GrantType == "" {
		cfg.Upstream.GrantType = domain.DefaultGrantType
	}

	present := map[string]string{
		"authBaseUrl":       cfg.Upstream.AuthBaseURL,
		"authTokenEndpoint": cfg.Upstream.AuthTokenPath,
		"apiBaseUrl":        cfg.Upstream.APIBaseURL,
		"clientId":          cfg.Upstream.ClientID,
		"clientSecret":      cfg.Upstream.ClientSecret,
	}
	var absent []string
	for _, b := range bindings {
		if b.required && present[b.key] == "" {
			absent = append(absent, b.envs[0])
		}
	}

	var problems []string
	if len(absent) > 0 {
		problems = append(problems, "missing required configuration: "+strings.Join(absent, ", "))
	}
	if cfg.Upstream.AuthBaseURL != "" && !isHTTPURL(cfg.Upstream.AuthBaseURL) {
		problems = append(problems, "AUTH_BASE_URL must be an absolute http(s) URL")
	}
	if cfg.Upstream.APIBaseURL != "" && !isHTTPURL(cfg.Upstream.APIBaseURL) {
		problems = append(problems, "API_BASE_URL must be an absolute http(s) URL")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT must be between 1 and 65535, got %d", cfg.Port))
	}
	return cfg, problems, len(absent) > 0
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
