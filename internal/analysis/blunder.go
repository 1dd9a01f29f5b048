package analysis

import "sort"

// Blunder is an evaluated move whose canonical score dropped, from the
// mover's own perspective, by more than the threshold.
type Blunder struct {
	Evaluation
	DropCP int `json:"drop"`
}

// RankBlunders computes the per-ply evaluation drop and returns the worst
// offenders, sorted by drop descending (stable on ties) and truncated to
// topK. Odd plies were played by sente, so their drop is prev−curr; even
// plies by gote, curr−prev.
func RankBlunders(evals []Evaluation, thresholdCP, topK int) []Blunder {
	if len(evals) < 2 || topK <= 0 {
		return nil
	}
	var out []Blunder
	for i := 1; i < len(evals); i++ {
		prev := evals[i-1].ScoreCP
		curr := evals[i].ScoreCP

		drop := curr - prev
		if evals[i].Ply%2 == 1 {
			drop = prev - curr
		}
		if drop > thresholdCP {
			out = append(out, Blunder{Evaluation: evals[i], DropCP: drop})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DropCP > out[j].DropCP })
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}
