package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ProviderBaseURL string
	ProviderTimeout time.Duration

	RedisURL        string
	EvalCacheTTLSec int

	AnalysisDepth int
	AnalyzeOnLoad bool

	AutoplayInterval    time.Duration
	PreviewRestoreDelay time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ProviderTimeout:     15 * time.Second,
		EvalCacheTTLSec:     3600,
		AnalysisDepth:       4,
		AnalyzeOnLoad:       true,
		AutoplayInterval:    2 * time.Second,
		PreviewRestoreDelay: 1500 * time.Millisecond,
	}

	cfg.ProviderBaseURL = strings.TrimSpace(os.Getenv("PROVIDER_BASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	if v := strings.TrimSpace(os.Getenv("PROVIDER_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProviderTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("EVAL_CACHE_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EvalCacheTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ANALYSIS_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AnalysisDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ANALYZE_ON_LOAD")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AnalyzeOnLoad = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("AUTOPLAY_INTERVAL_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AutoplayInterval = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("PREVIEW_RESTORE_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PreviewRestoreDelay = time.Duration(n) * time.Millisecond
		}
	}

	if cfg.ProviderBaseURL == "" {
		return nil, errors.New("PROVIDER_BASE_URL is required")
	}

	return cfg, nil
}
