package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/leadvault/contact-verify-backend/internal/api/rest"
	"github.com/leadvault/contact-verify-backend/internal/infrastructure/cache"
	"github.com/leadvault/contact-verify-backend/internal/infrastructure/config"
	"github.com/leadvault/contact-verify-backend/internal/infrastructure/dnsx"
	"github.com/leadvault/contact-verify-backend/internal/infrastructure/telemetry"
	"github.com/leadvault/contact-verify-backend/internal/metrics"
	"github.com/leadvault/contact-verify-backend/internal/service/verification"
	"github.com/leadvault/contact-verify-backend/internal/service/verification/providers"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	provider, err := telemetry.Initialize(ctx, &telemetry.Config{
		ServiceName:    "contact-verify-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
		BatchTimeout:   cfg.Telemetry.BatchTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	registry, err := metrics.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	stores, err := cache.NewManager(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create cache manager: %v", err)
	}
	defer stores.Close()

	v := cfg.Validation

	emailProvider := providers.NewEmailProvider(providers.EmailConfig{
		BaseURL:         v.EmailProvider.BaseURL,
		APIKey:          v.EmailProvider.APIKey,
		SMTPCheck:       v.EmailProvider.SMTPCheck,
		Timeout:         v.ValidationTimeout,
		GoodThreshold:   v.EmailScoreGoodThreshold,
		MedThreshold:    v.EmailScoreMedThreshold,
		BlockRole:       v.BlockRoleEmails,
		BlockDisposable: v.BlockDisposable,
		RateLimitRPS:    v.EmailProvider.RateLimitRPS,
	}, logger)

	phoneProvider := providers.NewPhoneProvider(providers.PhoneConfig{
		BaseURL:       v.PhoneProvider.BaseURL,
		APIKey:        v.PhoneProvider.APIKey,
		Timeout:       v.ValidationTimeout,
		BlockVoip:     v.BlockVoip,
		AllowLandline: v.AllowLandline,
		RateLimitRPS:  v.PhoneProvider.RateLimitRPS,
	}, logger)

	resolver := dnsx.NewResolver(nil, v.MXFallbackTimeout, logger)
	fallback := verification.NewFallbackResolver(verification.FallbackConfig{
		TrustedDomains: v.TrustedDomains,
		MXTimeout:      v.MXFallbackTimeout,
		EnableTrusted:  v.EnableTrustedEmailFallback,
		EnableMX:       v.EnableMXFallback,
	}, resolver, logger)

	denylist := verification.NewDenylist(v.Denylist.Prefixes, v.Denylist.Domains)

	service := verification.NewService(
		verification.Config{CacheTTL: v.CacheTTL},
		stores.Cache,
		emailProvider,
		phoneProvider,
		denylist,
		fallback,
		registry,
		logger,
	)

	router := rest.NewRouter(service, stores.RateLimiter, rest.RouterConfig{
		RateLimitPerMinute: v.RateLimitPerMinute,
		Logger:             telemetry.SetupLogger(cfg.LogLevel),
		Registry:           registry,
	})

	server := rest.NewServer(&cfg.Server, router, logger)
	if err := server.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newZapLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}
