package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	coreanalysis "github.com/ryooooooya/shogi-ganbaru/internal/analysis"
	"github.com/ryooooooya/shogi-ganbaru/internal/engine/usi"
	"github.com/ryooooooya/shogi-ganbaru/internal/kifu"
	"go.uber.org/zap"
)

var (
	ErrEmptyRecord       = errors.New("kif record contains no moves")
	ErrParseFailed       = errors.New("kif record could not be parsed")
	ErrEngineUnavailable = errors.New("usi engine unavailable")
	ErrEngineTimeout     = errors.New("usi engine timeout")
)

type Config struct {
	EnginePath         string
	DefaultPreset      string
	BlunderThresholdCP int
	TopBlunders        int
}

// Report is one completed analysis.
type Report struct {
	ID        string                    `json:"id"`
	Preset    string                    `json:"preset"`
	Depth     int                       `json:"depth"`
	Evals     []coreanalysis.Evaluation `json:"evals"`
	Blunders  []coreanalysis.Blunder    `json:"blunders"`
	CreatedAt time.Time                 `json:"created_at"`
}

// Engine is the per-request engine process: a searcher that must be closed.
type Engine interface {
	coreanalysis.Searcher
	Close() error
}

type Service struct {
	cfg     Config
	builder *kifu.Builder
	cache   *Cache
	repo    Repository
	logger  *zap.Logger

	// newEngine spawns one engine process per analysis; overridable in tests.
	newEngine func(ctx context.Context, preset usi.Preset) (Engine, error)
}

// NewService wires the analysis pipeline. cache and repo are optional; a nil
// value disables that concern.
func NewService(builder *kifu.Builder, cache *Cache, repo Repository, cfg Config, logger *zap.Logger) (*Service, error) {
	if builder == nil {
		return nil, fmt.Errorf("nil kifu builder")
	}
	if cfg.EnginePath == "" {
		return nil, fmt.Errorf("engine path required")
	}
	if cfg.DefaultPreset == "" {
		cfg.DefaultPreset = "standard"
	}
	if cfg.BlunderThresholdCP <= 0 {
		cfg.BlunderThresholdCP = 50
	}
	if cfg.TopBlunders <= 0 {
		cfg.TopBlunders = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{cfg: cfg, builder: builder, cache: cache, repo: repo, logger: logger}
	s.newEngine = func(ctx context.Context, preset usi.Preset) (Engine, error) {
		return usi.NewSession(ctx, cfg.EnginePath, preset.Options("shogi"), logger)
	}
	return s, nil
}

// Analyze converts the record, evaluates every position on a fresh engine
// process and ranks the blunders. The engine process is terminated on every
// return path; a context deadline discards all partial results.
func (s *Service) Analyze(ctx context.Context, kifText, presetName string) (*Report, error) {
	return s.analyze(ctx, kifText, presetName, nil)
}

// AnalyzeStream behaves like Analyze but pushes each evaluation to onEval as
// it completes. Streamed runs bypass the cache so every ply is observed.
func (s *Service) AnalyzeStream(ctx context.Context, kifText, presetName string, onEval func(coreanalysis.Evaluation)) (*Report, error) {
	return s.analyze(ctx, kifText, presetName, onEval)
}

func (s *Service) analyze(ctx context.Context, kifText, presetName string, onEval func(coreanalysis.Evaluation)) (*Report, error) {
	if presetName == "" {
		presetName = s.cfg.DefaultPreset
	}
	preset, err := usi.GetPreset(presetName)
	if err != nil {
		return nil, err
	}

	moves := s.builder.Build(kifText)
	switch moves.Outcome {
	case kifu.OutcomeEmpty:
		return nil, ErrEmptyRecord
	case kifu.OutcomeUnresolved:
		return nil, ErrParseFailed
	}

	hash := recordHash(kifText, preset)
	if s.cache != nil && onEval == nil {
		if cached, err := s.cache.Get(ctx, hash); err != nil {
			s.logger.Warn("analysis cache read failed", zap.Error(err))
		} else if cached != nil {
			s.logger.Info("analysis cache hit", zap.String("report_id", cached.ID))
			return cached, nil
		}
	}

	engine, err := s.newEngine(ctx, preset)
	if err != nil {
		return nil, s.classifyEngineErr(err)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			s.logger.Warn("engine shutdown", zap.Error(cerr))
		}
	}()

	started := time.Now()
	evals, err := coreanalysis.Run(ctx, engine, coreanalysis.Request{
		USIMoves: moves.USI,
		JaMoves:  moves.Ja,
		Depth:    preset.Depth,
	}, onEval)
	if err != nil {
		return nil, s.classifyEngineErr(err)
	}

	report := &Report{
		ID:        uuid.NewString(),
		Preset:    preset.Name,
		Depth:     preset.Depth,
		Evals:     evals,
		Blunders:  coreanalysis.RankBlunders(evals, s.cfg.BlunderThresholdCP, s.cfg.TopBlunders),
		CreatedAt: time.Now().UTC(),
	}
	s.logger.Info("analysis finished",
		zap.String("report_id", report.ID),
		zap.String("preset", report.Preset),
		zap.Int("plies", len(evals)-1),
		zap.Int("blunders", len(report.Blunders)),
		zap.Duration("took", time.Since(started)))

	// Cache and persistence are best-effort; the report is already complete.
	if s.cache != nil {
		if err := s.cache.Set(ctx, hash, report); err != nil {
			s.logger.Warn("analysis cache write failed", zap.Error(err))
		}
	}
	if s.repo != nil {
		if err := s.repo.Save(ctx, hash, report); err != nil {
			s.logger.Warn("analysis persist failed", zap.Error(err))
		}
	}
	return report, nil
}

// Recent lists recently persisted analyses.
func (s *Service) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.Recent(ctx, limit)
}

func (s *Service) classifyEngineErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrEngineTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
}

func recordHash(kifText string, preset usi.Preset) string {
	sum := sha256.Sum256([]byte(kifText))
	return fmt.Sprintf("%s:%s:%d", hex.EncodeToString(sum[:]), preset.Name, preset.Depth)
}
