// Package highlight builds the square-highlight descriptors consumed by the
// rendering surface: the primary played-move highlight and the suggested-move
// overlay derived from position analysis.
package highlight

import (
	"github.com/gambitlab/chessview/internal/board"
)

// Options carries the optional flags attached to a highlight. The zero value
// means a plain move highlight.
type Options struct {
	Capture    bool
	Check      bool
	Checkmate  bool
	Castling   string
	Promotion  string
	Suggested  bool
	Best       bool
	Worst      bool
	FromBest   bool
	RookCastle bool
	Evaluation *float64
}

// Highlight describes one highlighted move for the renderer. Transient:
// recomputed on every transition, never persisted.
type Highlight struct {
	FromRow, FromCol int
	ToRow, ToCol     int
	Piece            string
	Capture          bool
	Check            bool
	Checkmate        bool
	Castling         string
	Promotion        string
	Suggested        bool
	Best             bool
	Worst            bool
	FromBest         bool
	RookCastle       bool
	Evaluation       *float64
}

// Build composes a Highlight from algebraic squares, a piece kind name and the
// mover's color. Same inputs always yield the same value.
func Build(fromSquare, toSquare, pieceKind, color string, opts Options) (Highlight, error) {
	fr, fc, err := board.ToCoordinates(fromSquare)
	if err != nil {
		return Highlight{}, err
	}
	tr, tc, err := board.ToCoordinates(toSquare)
	if err != nil {
		return Highlight{}, err
	}
	return Highlight{
		FromRow:    fr,
		FromCol:    fc,
		ToRow:      tr,
		ToCol:      tc,
		Piece:      board.PieceCode(pieceKind, color == "white"),
		Capture:    opts.Capture,
		Check:      opts.Check,
		Checkmate:  opts.Checkmate,
		Castling:   opts.Castling,
		Promotion:  opts.Promotion,
		Suggested:  opts.Suggested,
		Best:       opts.Best,
		Worst:      opts.Worst,
		FromBest:   opts.FromBest,
		RookCastle: opts.RookCastle,
		Evaluation: opts.Evaluation,
	}, nil
}

// Candidate is a suggested move to overlay: a UCI string plus the evaluation
// after the move.
type Candidate struct {
	UCI        string
	Evaluation float64
}

// Map keys highlights by "row-col" for the renderer. First writer wins.
type Map map[string]Highlight

func (m Map) put(row, col int, h Highlight) {
	key := board.Key(row, col)
	if _, taken := m[key]; taken {
		return
	}
	m[key] = h
}

// Compose derives the full highlight map for one position. The primary
// played-move highlight is inserted first and occupies both its squares, so
// suggestion styling never overwrites it; a castling primary also claims the
// rook's from/to squares. Each best candidate contributes its
// destination (Best for the first-ranked candidate, Suggested after) and its
// origin marked FromBest; worst candidates contribute destinations only. With
// bestOnly set the overlay is restricted to the single first-ranked candidate.
func Compose(primary *Highlight, best, worst []Candidate, bestOnly bool) Map {
	m := make(Map)
	if primary != nil {
		m.put(primary.FromRow, primary.FromCol, *primary)
		m.put(primary.ToRow, primary.ToCol, *primary)
		if rook, ok := rookCastleFor(*primary); ok {
			m.put(rook.FromRow, rook.FromCol, rook)
			m.put(rook.ToRow, rook.ToCol, rook)
		}
	}
	for i, cand := range best {
		if bestOnly && i > 0 {
			break
		}
		h, ok := FromCandidate(cand, i == 0)
		if !ok {
			continue
		}
		m.put(h.ToRow, h.ToCol, h)
		origin := h
		origin.Best = false
		origin.Suggested = false
		origin.FromBest = true
		m.put(h.FromRow, h.FromCol, origin)
	}
	if bestOnly {
		return m
	}
	for _, cand := range worst {
		h, ok := FromCandidate(cand, false)
		if !ok {
			continue
		}
		h.Best = false
		h.Suggested = false
		h.Worst = true
		m.put(h.ToRow, h.ToCol, h)
	}
	return m
}

// rookCastleFor derives the rook's half of a castling move from the king's
// highlight. Castling only happens on the back ranks, so the row tells the
// rook's color.
func rookCastleFor(primary Highlight) (Highlight, bool) {
	var fromCol, toCol int
	switch primary.Castling {
	case "kingside":
		fromCol, toCol = 7, 5
	case "queenside":
		fromCol, toCol = 0, 3
	default:
		return Highlight{}, false
	}
	row := primary.ToRow
	piece := "R"
	if row == 0 {
		piece = "r"
	}
	return Highlight{
		FromRow:    row,
		FromCol:    fromCol,
		ToRow:      row,
		ToCol:      toCol,
		Piece:      piece,
		RookCastle: true,
	}, true
}

// FromCandidate builds the destination highlight for a suggested move.
// Malformed candidate UCIs report false and are skipped.
func FromCandidate(cand Candidate, first bool) (Highlight, bool) {
	if len(cand.UCI) < 4 {
		return Highlight{}, false
	}
	fr, fc, err := board.ToCoordinates(cand.UCI[:2])
	if err != nil {
		return Highlight{}, false
	}
	tr, tc, err := board.ToCoordinates(cand.UCI[2:4])
	if err != nil {
		return Highlight{}, false
	}
	eval := cand.Evaluation
	return Highlight{
		FromRow:    fr,
		FromCol:    fc,
		ToRow:      tr,
		ToCol:      tc,
		Suggested:  !first,
		Best:       first,
		Evaluation: &eval,
	}, true
}
