package server

import (
	"context"
	"net/http"
	"time"

	coreanalysis "github.com/ryooooooya/shogi-ganbaru/internal/analysis"
	"github.com/ryooooooya/shogi-ganbaru/pkg/analysisdto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsReadTimeout = 10 * time.Second

// handleAnalyzeStream upgrades to a websocket, reads one AnalyzeRequest and
// pushes an "eval" frame per evaluated position, then a final "result" frame.
// Failures are reported as a single "error" frame before the close.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()

	var req analysisdto.AnalyzeRequest
	readCtx, cancel := context.WithTimeout(ctx, wsReadTimeout)
	err = wsjson.Read(readCtx, conn, &req)
	cancel()
	if err != nil {
		s.logger.Warn("websocket request read failed", zap.Error(err))
		return
	}

	kifText, derr := s.resolveRecord(r, req)
	if derr != nil {
		s.writeStreamError(ctx, conn, *derr)
		return
	}

	report, err := s.svc.AnalyzeStream(ctx, kifText, req.Preset, func(e coreanalysis.Evaluation) {
		item := toEvalItem(e)
		if werr := wsjson.Write(ctx, conn, analysisdto.StreamMessage{Type: "eval", Eval: &item}); werr != nil {
			s.logger.Warn("websocket eval push failed", zap.Error(werr))
		}
	})
	if err != nil {
		_, derr := mapServiceError(err)
		s.writeStreamError(ctx, conn, derr)
		return
	}

	resp := toAnalyzeResponse(report)
	if err := wsjson.Write(ctx, conn, analysisdto.StreamMessage{Type: "result", Result: &resp}); err != nil {
		s.logger.Warn("websocket result push failed", zap.Error(err))
		return
	}
	conn.Close(websocket.StatusNormalClosure, "done")
}

func (s *Server) writeStreamError(ctx context.Context, conn *websocket.Conn, derr analysisdto.DomainError) {
	if err := wsjson.Write(ctx, conn, analysisdto.StreamMessage{Type: "error", Error: &derr}); err != nil {
		s.logger.Warn("websocket error push failed", zap.Error(err))
		return
	}
	conn.Close(websocket.StatusNormalClosure, derr.Code)
}
