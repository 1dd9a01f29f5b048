package analysisdto

import "time"

// EvalItem is one evaluated position. Score is from the first mover's
// (sente's) perspective; move_num 0 is the start position.
type EvalItem struct {
	MoveNum     int    `json:"move_num"`
	Move        string `json:"move"`
	Score       int    `json:"score"`
	BestMoveUSI string `json:"best_move_usi"`
}

// BlunderItem is an EvalItem plus the evaluation drop that qualified it.
type BlunderItem struct {
	EvalItem
	Drop int `json:"drop"`
}

type AnalyzeResponse struct {
	ReportID string        `json:"report_id"`
	Preset   string        `json:"preset"`
	Depth    int           `json:"depth"`
	Evals    []EvalItem    `json:"evals"`
	Blunders []BlunderItem `json:"blunders"`
}

type AnalysisSummary struct {
	ID          string    `json:"id"`
	Preset      string    `json:"preset"`
	Depth       int       `json:"depth"`
	MoveCount   int       `json:"move_count"`
	WorstDropCP int       `json:"worst_drop_cp"`
	CreatedAt   time.Time `json:"created_at"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
}

// StreamMessage is one websocket frame on the streaming endpoint.
// Type is "eval" (Eval set), "result" (Result set) or "error" (Error set).
type StreamMessage struct {
	Type   string           `json:"type"`
	Eval   *EvalItem        `json:"eval,omitempty"`
	Result *AnalyzeResponse `json:"result,omitempty"`
	Error  *DomainError     `json:"error,omitempty"`
}
