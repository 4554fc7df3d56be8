package ads

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/olgasafonova/nasa-ads-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/nasa-ads-mcp-server/internal/errors"
)

// Environment keys
const (
	EnvToken     = "ADS_API_TOKEN"
	EnvBaseURL   = "ADS_API_URL"
	EnvTimeout   = "ADS_TIMEOUT"
	EnvRateLimit = "ADS_RATE_LIMIT"
	EnvLogLevel  = "ADS_LOG_LEVEL"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Token     string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables client-side pacing
	LogLevel  string
}

// LoadConfig reads configuration from the environment after loading the
// given .env files (".env" when none are named). Missing .env files are
// ignored; a missing token is a ConfigurationError.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, &apierrors.ConfigurationError{Message: "failed to load " + f + ": " + err.Error()}
		}
	}

	cfg := Config{
		Token:     strings.TrimSpace(os.Getenv(EnvToken)),
		BaseURL:   BaseURL,
		Timeout:   base.DefaultTimeout,
		RateLimit: base.DefaultRateLimit,
		LogLevel:  "info",
	}

	if cfg.Token == "" {
		return Config{}, &apierrors.ConfigurationError{
			Key:     EnvToken,
			Message: "not set; create a token at https://ui.adsabs.harvard.edu/user/settings/token",
		}
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, &apierrors.ConfigurationError{Key: EnvTimeout, Message: "must be a positive duration such as 30s, got " + strconv.Quote(v)}
		}
		cfg.Timeout = d
	}

	if v := os.Getenv(EnvRateLimit); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return Config{}, &apierrors.ConfigurationError{Key: EnvRateLimit, Message: "must be a non-negative number of requests per second, got " + strconv.Quote(v)}
		}
		cfg.RateLimit = rps
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}

// LogValue implements slog.LogValuer. The token itself is never logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("token_set", c.Token != ""),
		slog.String("base_url", c.BaseURL),
		slog.Duration("timeout", c.Timeout),
		slog.Float64("rate_limit", c.RateLimit),
		slog.String("log_level", c.LogLevel),
	)
}

// ClientOptions returns the client options derived from the configuration.
func (c Config) ClientOptions(logger *slog.Logger) []ClientOption {
	opts := []ClientOption{
		WithBaseURL(c.BaseURL),
		WithTimeout(c.Timeout),
		WithRateLimit(c.RateLimit),
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return opts
}

// ParseLogLevel maps a level name to a slog.Level, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
