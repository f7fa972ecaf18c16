package gamedto

// Wire payloads exchanged with the chess game/analysis backend. Field names
// follow the backend's JSON exactly.

type GameURLRequest struct {
	URL string `json:"url"`
}

type Player struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

type Move struct {
	SAN        string   `json:"san"`
	UCI        string   `json:"uci"`
	From       string   `json:"from"`
	To         string   `json:"to"`
	Piece      string   `json:"piece"`
	Color      string   `json:"color"`
	Capture    bool     `json:"capture"`
	Check      bool     `json:"check"`
	Checkmate  bool     `json:"checkmate"`
	Castling   string   `json:"castling,omitempty"`
	Promotion  string   `json:"promotion,omitempty"`
	MoveNumber int      `json:"moveNumber"`
	Evaluation *float64 `json:"evaluation,omitempty"`
	IsBestMove *bool    `json:"is_best_move,omitempty"`
}

type Game struct {
	ID          string       `json:"id"`
	Moves       []Move       `json:"moves"`
	Positions   []string     `json:"positions"`
	White       Player       `json:"white"`
	Black       Player       `json:"black"`
	Result      string       `json:"result,omitempty"`
	TimeControl string       `json:"timeControl,omitempty"`
	Analysis    []Evaluation `json:"analysis,omitempty"`
}
