package domain

import "fmt"

// Player identifies one side of a recorded game.
type Player struct {
	Username string
	Rating   int
}

// Move is a single half-move of a recorded game. Immutable after load.
type Move struct {
	SAN        string
	UCI        string
	From       string
	To         string
	Piece      string
	Color      string
	Capture    bool
	Check      bool
	Checkmate  bool
	Castling   string
	Promotion  string
	MoveNumber int
	Ply        int
	Evaluation *float64
	IsBestMove *bool
}

func (m Move) IsWhite() bool { return m.Color == "white" }

// Game holds an ordered move list and the board position after each ply.
// Positions[i] is the FEN after Moves[0..i), so Positions[0] is the initial
// position and len(Positions) == len(Moves)+1.
type Game struct {
	ID          string
	Moves       []Move
	Positions   []string
	White       Player
	Black       Player
	Result      string
	TimeControl string
}

// PlyCount returns N, the number of half-moves in the game.
func (g *Game) PlyCount() int {
	if g == nil {
		return 0
	}
	return len(g.Moves)
}

// Validate checks the positions/moves parallelism invariant.
func (g *Game) Validate() error {
	if g == nil {
		return fmt.Errorf("nil game")
	}
	if len(g.Positions) != len(g.Moves)+1 {
		return fmt.Errorf("game has %d positions for %d moves, want %d", len(g.Positions), len(g.Moves), len(g.Moves)+1)
	}
	return nil
}
