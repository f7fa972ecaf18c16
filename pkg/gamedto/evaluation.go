package gamedto

type EvaluateRequest struct {
	FEN   string `json:"fen"`
	Depth int    `json:"depth"`
}

type Candidate struct {
	Move       string  `json:"move"`
	UCI        string  `json:"uci"`
	Evaluation float64 `json:"evaluation"`
	IsBest     bool    `json:"is_best,omitempty"`
	IsWorst    bool    `json:"is_worst,omitempty"`
}

// Evaluation is one per-position analysis entry. Per-position entries in a
// game payload may carry only an error string when the backend failed to
// analyze that position.
type Evaluation struct {
	FEN            string      `json:"fen,omitempty"`
	Evaluation     float64     `json:"evaluation"`
	Advantage      string      `json:"advantage,omitempty"`
	AdvantageScore float64     `json:"advantage_score,omitempty"`
	BestMoves      []Candidate `json:"best_moves,omitempty"`
	WorstMove      *Candidate  `json:"worst_move,omitempty"`
	Error          string      `json:"error,omitempty"`
}
