// Package nav is the navigation state machine: it owns the current ply index
// and derives the primary highlight, the suggested-move overlay and the
// quality judgment for the move just played. The transition functions in this
// file are pure (old state + inputs -> new state); the Controller wraps them
// with timers and analysis fetches.
package nav

import (
	"github.com/gambitlab/chessview/internal/analysis"
	"github.com/gambitlab/chessview/internal/domain"
	"github.com/gambitlab/chessview/internal/highlight"
	"github.com/gambitlab/chessview/internal/quality"
)

// State is the full navigation state for one loaded game. Index runs from 0
// (initial position, no primary highlight) to PlyCount (final position).
type State struct {
	Index        int
	Primary      *highlight.Highlight
	Best         []highlight.Highlight
	Worst        []highlight.Highlight
	Squares      highlight.Map
	Autoplay     bool
	ShowBestOnly bool
	PrevEval     *float64
	Quality      *quality.Judgment
	Notice       string
}

func clampIndex(index, n int) int {
	if index < 0 {
		return 0
	}
	if index > n {
		return n
	}
	return index
}

// PrimaryHighlight derives the played-move highlight for a ply index, nil at
// the initial position or when the move record lacks square data.
func PrimaryHighlight(game *domain.Game, index int) *highlight.Highlight {
	if game == nil || index <= 0 || index > game.PlyCount() {
		return nil
	}
	move := game.Moves[index-1]
	h, err := highlight.Build(move.From, move.To, move.Piece, move.Color, highlight.Options{
		Capture:    move.Capture,
		Check:      move.Check,
		Checkmate:  move.Checkmate,
		Castling:   move.Castling,
		Promotion:  move.Promotion,
		Evaluation: move.Evaluation,
	})
	if err != nil {
		// Moves the backend could not fully decode carry no squares.
		return nil
	}
	return &h
}

// Transition performs the goTo pipeline: snapshot the outgoing ply's
// evaluation, clamp and set the index, drop the show-best toggle, recompute
// the primary highlight and recompose the overlay from whatever analysis is
// already available. The snapshot is skipped when the index does not change,
// which keeps Transition idempotent.
func Transition(st State, game *domain.Game, tbl *analysis.Table, index int) State {
	next := st
	next.Notice = ""

	target := clampIndex(index, game.PlyCount())
	if target != st.Index {
		next.PrevEval = nil
		if a, ok := tbl.Get(st.Index); ok {
			v := a.Evaluation
			next.PrevEval = &v
		}
	}
	next.Index = target
	next.ShowBestOnly = false
	next.Primary = PrimaryHighlight(game, target)
	return Refresh(next, game, tbl)
}

// ToggleBest flips the show-best-only toggle and recomposes the overlay.
// The caller is responsible for the analyze-now path when the current ply has
// no analysis yet.
func ToggleBest(st State, game *domain.Game, tbl *analysis.Table) State {
	st.ShowBestOnly = !st.ShowBestOnly
	return Refresh(st, game, tbl)
}

// Refresh recomputes all analysis-derived state (overlay lists, highlight
// map, quality judgment) for the current index without touching the index or
// the snapshot. Used both inside Transition and when a fetch for the current
// ply completes.
func Refresh(st State, game *domain.Game, tbl *analysis.Table) State {
	st.Best = nil
	st.Worst = nil
	st.Quality = nil

	a, ok := tbl.Get(st.Index)
	if !ok {
		st.Squares = highlight.Compose(st.Primary, nil, nil, st.ShowBestOnly)
		return st
	}

	best := candidates(a.BestMoves)
	worst := candidates(a.WorstMoves)
	st.Squares = highlight.Compose(st.Primary, best, worst, st.ShowBestOnly)

	for i, cand := range best {
		if st.ShowBestOnly && i > 0 {
			break
		}
		if h, ok := highlight.FromCandidate(cand, i == 0); ok {
			st.Best = append(st.Best, h)
		}
	}
	if !st.ShowBestOnly {
		for _, cand := range worst {
			if h, ok := highlight.FromCandidate(cand, false); ok {
				h.Best = false
				h.Suggested = false
				h.Worst = true
				st.Worst = append(st.Worst, h)
			}
		}
	}

	if st.Index > 0 && st.PrevEval != nil {
		mover := game.Moves[st.Index-1]
		after, before := a.Evaluation, *st.PrevEval
		if !mover.IsWhite() {
			// Normalize so positive favors the mover.
			after, before = -after, -before
		}
		j := quality.Judge(after, before)
		st.Quality = &j
	}
	return st
}

func candidates(moves []analysis.Candidate) []highlight.Candidate {
	out := make([]highlight.Candidate, 0, len(moves))
	for _, m := range moves {
		out = append(out, highlight.Candidate{UCI: m.UCI, Evaluation: m.Evaluation})
	}
	return out
}

// Clone deep-copies the parts of the state that callers could otherwise
// mutate through shared references.
func (s State) Clone() State {
	out := s
	if s.Primary != nil {
		p := *s.Primary
		out.Primary = &p
	}
	if s.PrevEval != nil {
		v := *s.PrevEval
		out.PrevEval = &v
	}
	if s.Quality != nil {
		q := *s.Quality
		out.Quality = &q
	}
	out.Best = append([]highlight.Highlight(nil), s.Best...)
	out.Worst = append([]highlight.Highlight(nil), s.Worst...)
	if s.Squares != nil {
		out.Squares = make(highlight.Map, len(s.Squares))
		for k, v := range s.Squares {
			out.Squares[k] = v
		}
	}
	return out
}
