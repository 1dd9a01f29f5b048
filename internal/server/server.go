package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	coreanalysis "github.com/ryooooooya/shogi-ganbaru/internal/analysis"
	svcanalysis "github.com/ryooooooya/shogi-ganbaru/internal/service/analysis"
	"github.com/ryooooooya/shogi-ganbaru/pkg/analysisdto"
	"go.uber.org/zap"
)

// AnalysisService is the service surface the HTTP layer wraps.
type AnalysisService interface {
	Analyze(ctx context.Context, kifText, presetName string) (*svcanalysis.Report, error)
	AnalyzeStream(ctx context.Context, kifText, presetName string, onEval func(coreanalysis.Evaluation)) (*svcanalysis.Report, error)
	Recent(ctx context.Context, limit int) ([]svcanalysis.Summary, error)
}

// Fetcher resolves kif_url request fields.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

type Server struct {
	svc        AnalysisService
	fetcher    Fetcher
	logger     *zap.Logger
	enginePath string
}

func New(svc AnalysisService, fetcher Fetcher, enginePath string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, fetcher: fetcher, logger: logger, enginePath: enginePath}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/analyze/stream", s.handleAnalyzeStream)
	r.Get("/analyses", s.handleRecent)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, derr analysisdto.DomainError) {
	writeJSON(w, status, map[string]analysisdto.DomainError{"error": derr})
}
