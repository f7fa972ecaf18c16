// Package analysis holds per-position engine analysis, the sparse per-ply
// analysis table and the orchestrator that populates it on demand.
package analysis

import (
	"fmt"
	"math"
)

// MateThreshold separates centipawn-like scores from mate sentinels: an
// evaluation whose magnitude exceeds it encodes "forced mate in K plies"
// with K = ceil((1000-|score|)/10). Part of the provider data contract.
const MateThreshold = 100

// Candidate is one suggested move in an analysis entry.
type Candidate struct {
	SAN        string
	UCI        string
	Evaluation float64
	IsBest     bool
	IsWorst    bool
}

// Analysis is the engine's verdict on one position. Evaluation is signed and
// white-positive.
type Analysis struct {
	Evaluation     float64
	Advantage      string
	AdvantageScore float64
	BestMoves      []Candidate
	WorstMoves     []Candidate
}

// Best returns the first-ranked candidate, or nil.
func (a *Analysis) Best() *Candidate {
	if a == nil || len(a.BestMoves) == 0 {
		return nil
	}
	return &a.BestMoves[0]
}

// MateIn reports the forced-mate distance encoded in a sentinel score.
func MateIn(score float64) (int, bool) {
	abs := math.Abs(score)
	if abs <= MateThreshold {
		return 0, false
	}
	return int(math.Ceil((1000 - abs) / 10)), true
}

// FormatEval renders a score for display: mate sentinels become a mate marker
// whose sign matches the score, everything else a two-decimal number.
func FormatEval(score float64) string {
	if k, ok := MateIn(score); ok {
		if score < 0 {
			return fmt.Sprintf("-M%d", k)
		}
		return fmt.Sprintf("M%d", k)
	}
	return fmt.Sprintf("%.2f", score)
}
