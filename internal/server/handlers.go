package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	coreanalysis "github.com/ryooooooya/shogi-ganbaru/internal/analysis"
	svcanalysis "github.com/ryooooooya/shogi-ganbaru/internal/service/analysis"
	"github.com/ryooooooya/shogi-ganbaru/pkg/analysisdto"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analysisdto.HealthResponse{Status: "ok", Engine: s.enginePath})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysisdto.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, analysisdto.DomainError{Code: "bad_request", Message: "invalid JSON body"})
		return
	}

	kifText, derr := s.resolveRecord(r, req)
	if derr != nil {
		writeError(w, http.StatusBadRequest, *derr)
		return
	}

	report, err := s.svc.Analyze(r.Context(), kifText, req.Preset)
	if err != nil {
		status, derr := mapServiceError(err)
		s.logger.Warn("analyze failed", zap.String("code", derr.Code), zap.Error(err))
		writeError(w, status, derr)
		return
	}
	writeJSON(w, http.StatusOK, toAnalyzeResponse(report))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	summaries, err := s.svc.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Warn("history listing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, analysisdto.DomainError{Code: "internal", Message: "history unavailable"})
		return
	}
	out := make([]analysisdto.AnalysisSummary, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, analysisdto.AnalysisSummary{
			ID:          sum.ID,
			Preset:      sum.Preset,
			Depth:       sum.Depth,
			MoveCount:   sum.MoveCount,
			WorstDropCP: sum.WorstDropCP,
			CreatedAt:   sum.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]analysisdto.AnalysisSummary{"analyses": out})
}

// resolveRecord returns the KIF text from the request, downloading it when
// only kif_url was given.
func (s *Server) resolveRecord(r *http.Request, req analysisdto.AnalyzeRequest) (string, *analysisdto.DomainError) {
	switch {
	case req.Kif != "" && req.KifURL != "":
		return "", &analysisdto.DomainError{Code: "bad_request", Message: "set either kif or kif_url, not both"}
	case req.Kif != "":
		return req.Kif, nil
	case req.KifURL != "":
		if s.fetcher == nil {
			return "", &analysisdto.DomainError{Code: "bad_request", Message: "kif_url not supported"}
		}
		text, err := s.fetcher.Fetch(r.Context(), req.KifURL)
		if err != nil {
			s.logger.Warn("kif fetch failed", zap.String("url", req.KifURL), zap.Error(err))
			return "", &analysisdto.DomainError{Code: "fetch_failed", Message: "could not download kif record"}
		}
		return text, nil
	default:
		return "", &analysisdto.DomainError{Code: "bad_request", Message: "kif or kif_url is required"}
	}
}

func mapServiceError(err error) (int, analysisdto.DomainError) {
	switch {
	case errors.Is(err, svcanalysis.ErrEmptyRecord):
		return http.StatusUnprocessableEntity, analysisdto.DomainError{Code: "empty_record", Message: "kif record contains no moves"}
	case errors.Is(err, svcanalysis.ErrParseFailed):
		return http.StatusBadRequest, analysisdto.DomainError{Code: "parse_failed", Message: "kif record could not be parsed"}
	case errors.Is(err, svcanalysis.ErrEngineTimeout):
		return http.StatusGatewayTimeout, analysisdto.DomainError{Code: "engine_timeout", Message: "engine did not finish in time"}
	case errors.Is(err, svcanalysis.ErrEngineUnavailable):
		return http.StatusInternalServerError, analysisdto.DomainError{Code: "engine_unavailable", Message: "engine failed"}
	default:
		return http.StatusInternalServerError, analysisdto.DomainError{Code: "internal", Message: "analysis failed"}
	}
}

func toEvalItem(e coreanalysis.Evaluation) analysisdto.EvalItem {
	return analysisdto.EvalItem{
		MoveNum:     e.Ply,
		Move:        e.Move,
		Score:       e.ScoreCP,
		BestMoveUSI: e.BestMove,
	}
}

func toAnalyzeResponse(r *svcanalysis.Report) analysisdto.AnalyzeResponse {
	resp := analysisdto.AnalyzeResponse{
		ReportID: r.ID,
		Preset:   r.Preset,
		Depth:    r.Depth,
		Evals:    make([]analysisdto.EvalItem, 0, len(r.Evals)),
		Blunders: make([]analysisdto.BlunderItem, 0, len(r.Blunders)),
	}
	for _, e := range r.Evals {
		resp.Evals = append(resp.Evals, toEvalItem(e))
	}
	for _, b := range r.Blunders {
		resp.Blunders = append(resp.Blunders, analysisdto.BlunderItem{
			EvalItem: toEvalItem(b.Evaluation),
			Drop:     b.DropCP,
		})
	}
	return resp
}
