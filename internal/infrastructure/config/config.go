package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	apperrors "github.com/leadvault/contact-verify-backend/internal/errors"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server     ServerConfig     `koanf:"server"`
	Redis      RedisConfig      `koanf:"redis"`
	Cache      CacheConfig      `koanf:"cache"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Validation ValidationConfig `koanf:"validation"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	MaxRetries   int           `koanf:"max_retries"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// CacheConfig selects the verdict cache / rate limiter backend. The
// in-process backend is the default; redis serves multi-instance
// deployments behind the same interfaces.
type CacheConfig struct {
	Backend string `koanf:"backend"` // "memory" or "redis"
}

type TelemetryConfig struct {
	Enabled       bool          `koanf:"enabled"`
	OTLPEndpoint  string        `koanf:"otlp_endpoint"`
	SamplingRate  float64       `koanf:"sampling_rate"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
	BatchTimeout  time.Duration `koanf:"batch_timeout"`
}

// ValidationConfig drives the identifier validation pipeline.
type ValidationConfig struct {
	EmailProvider ProviderConfig `koanf:"email_provider"`
	PhoneProvider ProviderConfig `koanf:"phone_provider"`

	// Confidence thresholds applied to the provider's 0..1 score.
	EmailScoreGoodThreshold float64 `koanf:"email_score_good_threshold"`
	EmailScoreMedThreshold  float64 `koanf:"email_score_med_threshold"`

	// Hard-block policy toggles.
	BlockRoleEmails bool `koanf:"block_role_emails"`
	BlockDisposable bool `koanf:"block_disposable"`
	BlockVoip       bool `koanf:"block_voip"`
	AllowLandline   bool `koanf:"allow_landline"`

	// Timeouts. ValidationTimeout bounds the provider call; the MX
	// fallback gets its own, shorter deadline.
	ValidationTimeout time.Duration `koanf:"validation_timeout"`
	MXFallbackTimeout time.Duration `koanf:"mx_fallback_timeout"`

	// Verdict cache TTL.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// Per-client submission limit, enforced per fixed one-minute window.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// Fallback resolver toggles.
	EnableTrustedEmailFallback bool `koanf:"enable_trusted_email_fallback"`
	EnableMXFallback           bool `koanf:"enable_mx_fallback"`

	// Trusted public mail domains eligible for the provisional upgrade.
	TrustedDomains []string `koanf:"trusted_domains"`

	Denylist DenylistConfig `koanf:"denylist"`
}

// ProviderConfig holds the connection settings for one external
// verification service. An empty APIKey means the provider is
// unconfigured and every check soft-passes as provider_missing.
type ProviderConfig struct {
	BaseURL      string  `koanf:"base_url"`
	APIKey       string  `koanf:"api_key"`
	SMTPCheck    bool    `koanf:"smtp_check"`
	RateLimitRPS float64 `koanf:"rate_limit_rps"`
}

// DenylistConfig is the locally-enforced blocklist, checked before any
// cache lookup or provider call.
type DenylistConfig struct {
	Prefixes []string `koanf:"prefixes"`
	Domains  []string `koanf:"domains"`
}

// Load reads configuration from defaults, an optional YAML file and
// CVB_-prefixed environment variables, in increasing precedence.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("loading config file %s", configPath)).WithCause(err)
		}
	}

	if err := k.Load(env.Provider("CVB_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "CVB_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, apperrors.NewConfigError("unmarshaling config").WithCause(err)
	}

	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			URL:          "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "memory",
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			OTLPEndpoint:  "localhost:4317",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
			BatchTimeout:  5 * time.Second,
		},
		Validation: ValidationConfig{
			EmailProvider: ProviderConfig{
				SMTPCheck:    true,
				RateLimitRPS: 10,
			},
			PhoneProvider: ProviderConfig{
				RateLimitRPS: 10,
			},
			EmailScoreGoodThreshold:    0.80,
			EmailScoreMedThreshold:     0.50,
			BlockRoleEmails:            true,
			BlockDisposable:            false,
			BlockVoip:                  false,
			AllowLandline:              true,
			ValidationTimeout:          5 * time.Second,
			MXFallbackTimeout:          1500 * time.Millisecond,
			CacheTTL:                   15 * time.Minute,
			RateLimitPerMinute:         10,
			EnableTrustedEmailFallback: true,
			EnableMXFallback:           true,
			TrustedDomains: []string{
				"gmail.com", "googlemail.com", "outlook.com", "hotmail.com",
				"live.com", "yahoo.com", "icloud.com", "me.com",
				"aol.com", "proton.me", "protonmail.com",
			},
			Denylist: DenylistConfig{
				Prefixes: []string{"test", "asdf", "qwerty", "noreply", "no-reply"},
				Domains: []string{
					"mailinator.com", "guerrillamail.com", "10minutemail.com",
					"yopmail.com", "tempmail.org", "temp-mail.org",
					"throwaway.email", "example.com",
				},
			},
		},
	}
}
