// Package board provides the square/coordinate mapping and the board-encoding
// decoder used by the navigation engine. The grid is stored top to bottom from
// black's back rank: row 0 is rank 8, column 0 is file a.
package board

import (
	"fmt"
	"strings"
)

// Size is the board edge length.
const Size = 8

// Grid is a decoded board: one single-letter piece code per square, uppercase
// for white, "" for an empty square.
type Grid [Size][Size]string

// ToCoordinates converts an algebraic square name ("e4") to zero-based
// (row, col). Malformed squares are a caller contract violation; trusted move
// data always carries valid squares.
func ToCoordinates(square string) (int, int, error) {
	if len(square) != 2 {
		return 0, 0, fmt.Errorf("malformed square %q", square)
	}
	file := square[0]
	rank := square[1]
	if file < 'a' || file > 'h' {
		return 0, 0, fmt.Errorf("malformed square %q: file out of range", square)
	}
	if rank < '1' || rank > '8' {
		return 0, 0, fmt.Errorf("malformed square %q: rank out of range", square)
	}
	col := int(file - 'a')
	row := Size - 1 - int(rank-'1')
	return row, col, nil
}

// SquareName is the inverse of ToCoordinates.
func SquareName(row, col int) (string, error) {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return "", fmt.Errorf("coordinates (%d,%d) out of range", row, col)
	}
	file := byte('a') + byte(col)
	rank := byte('1') + byte(Size-1-row)
	return string([]byte{file, rank}), nil
}

// Key formats grid coordinates the way the rendering surface keys its
// highlight map.
func Key(row, col int) string {
	return fmt.Sprintf("%d-%d", row, col)
}

// PieceCode maps a piece kind name to its single-letter code, uppercase for
// white. Unknown kinds map to "" so callers display nothing.
func PieceCode(kind string, white bool) string {
	var code string
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "pawn":
		code = "p"
	case "knight":
		code = "n"
	case "bishop":
		code = "b"
	case "rook":
		code = "r"
	case "queen":
		code = "q"
	case "king":
		code = "k"
	default:
		return ""
	}
	if white {
		return strings.ToUpper(code)
	}
	return code
}

// Decode expands a board-position encoding into a Grid. Only the first
// space-separated field is consumed, so full FENs with side-to-move and
// castling metadata are accepted. Digits count consecutive empty squares, any
// other character is one piece code. Precondition: each rank's empty count
// plus piece count sums to 8; decoding is best-effort beyond that.
func Decode(position string) Grid {
	var grid Grid
	field := position
	if i := strings.IndexByte(field, ' '); i >= 0 {
		field = field[:i]
	}
	ranks := strings.Split(field, "/")
	for r := 0; r < Size && r < len(ranks); r++ {
		col := 0
		for _, ch := range ranks[r] {
			if col >= Size {
				break
			}
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			grid[r][col] = string(ch)
			col++
		}
	}
	return grid
}
