package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	HTTPAddr string

	EnginePath string

	RedisURL    string
	DatabaseURL string

	AnalysisPreset     string
	BlunderThresholdCP int
	TopBlunders        int

	CacheTTLSec        int
	KifFetchTimeoutSec int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:           ":8080",
		AnalysisPreset:     "standard",
		BlunderThresholdCP: 50,
		TopBlunders:        3,
		CacheTTLSec:        86400,
		KifFetchTimeoutSec: 10,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}

	cfg.EnginePath = strings.TrimSpace(os.Getenv("ENGINE_PATH"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("ANALYSIS_PRESET")); v != "" {
		cfg.AnalysisPreset = v
	}
	if v := strings.TrimSpace(os.Getenv("BLUNDER_THRESHOLD")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BlunderThresholdCP = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("TOP_BLUNDERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopBlunders = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("KIF_FETCH_TIMEOUT")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.KifFetchTimeoutSec = n
		}
	}

	if cfg.EnginePath == "" {
		return nil, errors.New("ENGINE_PATH is required")
	}

	return cfg, nil
}
