// Package analysisbuilder wires the analysis service from configuration:
// KIF conversion, the engine-backed service, and the optional redis cache
// and postgres history.
package analysisbuilder

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ryooooooya/shogi-ganbaru/internal/config"
	"github.com/ryooooooya/shogi-ganbaru/internal/kiffetch"
	"github.com/ryooooooya/shogi-ganbaru/internal/kifu"
	svcanalysis "github.com/ryooooooya/shogi-ganbaru/internal/service/analysis"
	"go.uber.org/zap"
)

type Deps struct {
	Service *svcanalysis.Service
	Fetcher *kiffetch.Client
	Cache   *svcanalysis.Cache
	Repo    svcanalysis.Repository
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(cfg.EnginePath) == "" {
		return nil, fmt.Errorf("ENGINE_PATH is required")
	}
	if _, err := os.Stat(cfg.EnginePath); err != nil {
		return nil, fmt.Errorf("engine binary: %w", err)
	}

	// Cache (redis optional; analyses just always hit the engine without it)
	var cacheSvc *svcanalysis.Cache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rdb, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		cacheSvc = svcanalysis.NewCache(rdb, time.Duration(cfg.CacheTTLSec)*time.Second)
	}

	// History (postgres optional)
	var repo svcanalysis.Repository
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pg, err := svcanalysis.NewPostgresRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		repo = pg
	}

	svcCfg := svcanalysis.Config{
		EnginePath:         cfg.EnginePath,
		DefaultPreset:      cfg.AnalysisPreset,
		BlunderThresholdCP: cfg.BlunderThresholdCP,
		TopBlunders:        cfg.TopBlunders,
	}
	service, err := svcanalysis.NewService(kifu.NewBuilder(nil), cacheSvc, repo, svcCfg, logger)
	if err != nil {
		return nil, err
	}

	fetcher := kiffetch.NewClient(kiffetch.WithTimeout(time.Duration(cfg.KifFetchTimeoutSec) * time.Second))

	return &Deps{Service: service, Fetcher: fetcher, Cache: cacheSvc, Repo: repo}, nil
}

func newRedisClient(raw string) (*redis.Client, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "6379"
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: pass,
		DB:       db,
	}), nil
}
