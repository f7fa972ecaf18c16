// Package moveinfo resolves a UCI move against a position to recover the full
// move metadata (piece, capture, check, castling, promotion) needed for
// highlighting a candidate move. It leans on the chess library for legality;
// this repository does not implement move generation itself.
package moveinfo

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Info is the recovered metadata for one resolved move.
type Info struct {
	SAN       string
	UCI       string
	From      string
	To        string
	Piece     string
	Color     string
	Capture   bool
	Check     bool
	Checkmate bool
	Castling  string
	Promotion string
}

// Resolve decodes a UCI move against the position's legal moves. An illegal
// or malformed move returns an error; callers surface it as a notice.
func Resolve(fen, uci string) (*Info, error) {
	moveText := strings.ToLower(strings.TrimSpace(uci))
	if moveText == "" {
		return nil, fmt.Errorf("empty uci move")
	}

	game, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}
	pos := game.Position()
	if pos == nil {
		return nil, fmt.Errorf("position unavailable for fen %q", fen)
	}

	notationUCI := nchess.UCINotation{}
	move, err := notationUCI.Decode(pos, moveText)
	if err != nil {
		return nil, fmt.Errorf("resolve move %q: %w", moveText, err)
	}

	piece := pos.Board().Piece(move.S1())
	san := nchess.AlgebraicNotation{}.Encode(pos, move)
	if err := game.Move(move, nil); err != nil {
		return nil, fmt.Errorf("apply move %q: %w", moveText, err)
	}

	info := &Info{
		SAN:     san,
		UCI:     moveText,
		From:    move.S1().String(),
		To:      move.S2().String(),
		Piece:   pieceKindName(piece.Type()),
		Color:   colorName(piece.Color()),
		Capture: move.HasTag(nchess.Capture) || move.HasTag(nchess.EnPassant),
		Check:   move.HasTag(nchess.Check),
	}
	if game.Outcome() != nchess.NoOutcome && game.Method() == nchess.Checkmate {
		info.Checkmate = true
	}
	switch {
	case move.HasTag(nchess.KingSideCastle):
		info.Castling = "kingside"
	case move.HasTag(nchess.QueenSideCastle):
		info.Castling = "queenside"
	}
	if promo := move.Promo(); promo != nchess.NoPieceType {
		info.Promotion = pieceKindName(promo)
	}
	return info, nil
}

func gameFromFEN(fen string) (*nchess.Game, error) {
	trimmed := strings.TrimSpace(fen)
	if trimmed == "" || trimmed == "startpos" {
		return nchess.NewGame(), nil
	}
	option, err := nchess.FEN(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", trimmed, err)
	}
	return nchess.NewGame(option), nil
}

func pieceKindName(pt nchess.PieceType) string {
	switch pt {
	case nchess.Pawn:
		return "pawn"
	case nchess.Knight:
		return "knight"
	case nchess.Bishop:
		return "bishop"
	case nchess.Rook:
		return "rook"
	case nchess.Queen:
		return "queen"
	case nchess.King:
		return "king"
	default:
		return ""
	}
}

func colorName(c nchess.Color) string {
	switch c {
	case nchess.White:
		return "white"
	case nchess.Black:
		return "black"
	default:
		return ""
	}
}
