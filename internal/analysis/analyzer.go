package analysis

import (
	"context"
	"fmt"

	"github.com/ryooooooya/shogi-ganbaru/internal/engine/usi"
)

// ply 0 has no move to display.
const startPositionLabel = "開始局面"

// Searcher evaluates one position given the move prefix leading to it.
// *usi.Session satisfies it; tests substitute fakes.
type Searcher interface {
	Evaluate(ctx context.Context, moves []string, depth int) (usi.Evaluation, error)
}

// Evaluation is one analyzed ply. ScoreCP is canonical: always from the
// first mover's (sente's) perspective, so scores are comparable across plies.
type Evaluation struct {
	Ply      int    `json:"move_num"`
	Move     string `json:"move"`
	ScoreCP  int    `json:"score"`
	BestMove string `json:"best_move_usi"`
}

type Request struct {
	USIMoves []string
	JaMoves  []string
	Depth    int
}

// Run evaluates the start position and then each prefix of the move list, in
// order, on a single engine session. The result always has exactly
// len(USIMoves)+1 entries on success. onEval, when non-nil, observes each
// evaluation as it completes.
func Run(ctx context.Context, engine Searcher, req Request, onEval func(Evaluation)) ([]Evaluation, error) {
	evals := make([]Evaluation, 0, len(req.USIMoves)+1)
	for ply := 0; ply <= len(req.USIMoves); ply++ {
		raw, err := engine.Evaluate(ctx, req.USIMoves[:ply], req.Depth)
		if err != nil {
			return nil, fmt.Errorf("evaluate ply %d: %w", ply, err)
		}
		ev := Evaluation{
			Ply:      ply,
			Move:     displayMove(req.JaMoves, ply),
			ScoreCP:  canonicalScore(ply, raw.ScoreCP),
			BestMove: raw.BestMove,
		}
		evals = append(evals, ev)
		if onEval != nil {
			onEval(ev)
		}
	}
	return evals, nil
}

func displayMove(ja []string, ply int) string {
	if ply == 0 {
		return startPositionLabel
	}
	if ply-1 < len(ja) {
		return ja[ply-1]
	}
	return ""
}

// canonicalScore rewrites a mover-relative score to the sente perspective.
// After an odd number of moves gote is to move, so the raw score flips sign;
// ply 0 is sente to move and is never negated.
func canonicalScore(ply, raw int) int {
	if ply%2 == 1 {
		return -raw
	}
	return raw
}
