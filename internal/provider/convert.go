package provider

import (
	"fmt"

	"github.com/gambitlab/chessview/internal/analysis"
	"github.com/gambitlab/chessview/internal/domain"
	"github.com/gambitlab/chessview/pkg/gamedto"
)

func gameFromDTO(dto *gamedto.Game) (*domain.Game, map[int]*analysis.Analysis, error) {
	game := &domain.Game{
		ID:          dto.ID,
		Moves:       make([]domain.Move, len(dto.Moves)),
		Positions:   append([]string(nil), dto.Positions...),
		White:       domain.Player{Username: dto.White.Username, Rating: dto.White.Rating},
		Black:       domain.Player{Username: dto.Black.Username, Rating: dto.Black.Rating},
		Result:      dto.Result,
		TimeControl: dto.TimeControl,
	}
	for i, m := range dto.Moves {
		game.Moves[i] = domain.Move{
			SAN:        m.SAN,
			UCI:        m.UCI,
			From:       m.From,
			To:         m.To,
			Piece:      m.Piece,
			Color:      m.Color,
			Capture:    m.Capture,
			Check:      m.Check,
			Checkmate:  m.Checkmate,
			Castling:   m.Castling,
			Promotion:  m.Promotion,
			MoveNumber: m.MoveNumber,
			Ply:        i + 1,
			Evaluation: m.Evaluation,
			IsBestMove: m.IsBestMove,
		}
	}
	if err := game.Validate(); err != nil {
		return nil, nil, fmt.Errorf("provider game payload: %w", err)
	}

	var seeded map[int]*analysis.Analysis
	if len(dto.Analysis) > 0 {
		seeded = make(map[int]*analysis.Analysis, len(dto.Analysis))
		for ply := range dto.Analysis {
			entry := dto.Analysis[ply]
			if entry.Error != "" {
				continue
			}
			seeded[ply] = analysisFromDTO(&entry)
		}
	}
	return game, seeded, nil
}

func analysisFromDTO(dto *gamedto.Evaluation) *analysis.Analysis {
	a := &analysis.Analysis{
		Evaluation:     dto.Evaluation,
		Advantage:      dto.Advantage,
		AdvantageScore: dto.AdvantageScore,
	}
	for _, cand := range dto.BestMoves {
		a.BestMoves = append(a.BestMoves, candidateFromDTO(cand))
	}
	if dto.WorstMove != nil {
		a.WorstMoves = append(a.WorstMoves, candidateFromDTO(*dto.WorstMove))
	}
	return a
}

func candidateFromDTO(dto gamedto.Candidate) analysis.Candidate {
	return analysis.Candidate{
		SAN:        dto.Move,
		UCI:        dto.UCI,
		Evaluation: dto.Evaluation,
		IsBest:     dto.IsBest,
		IsWorst:    dto.IsWorst,
	}
}
