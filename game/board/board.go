package board

import "errors"

// Size is the board edge length. Gomoku is played on 15x15.
const Size = 15

// WinLength is the minimum contiguous run that wins the game.
const WinLength = 5

var (
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrCellOccupied = errors.New("cell already occupied")
)

// Color identifies a stone or seat. The zero value means an empty cell.
type Color string

const (
	Empty Color = ""
	Black Color = "black"
	White Color = "white"
)

// Opponent returns the other seat color.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// Valid reports whether c is one of the two seat colors.
func (c Color) Valid() bool {
	return c == Black || c == White
}

// Position is a 0-indexed board coordinate.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the position lies on the board.
func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

// Board is the 15x15 grid, indexed [y][x]. The value semantics keep
// ApplyMove pure: mutating a copy never touches the caller's board.
type Board [Size][Size]Color

// At returns the color at p. Out-of-bounds positions read as Empty.
func (b *Board) At(p Position) Color {
	if !p.InBounds() {
		return Empty
	}
	return b[p.Y][p.X]
}

// ApplyMove places a stone of the given color at p and returns the
// resulting board. The target cell must be empty and in bounds; turn and
// outcome checks are the caller's responsibility.
func ApplyMove(b Board, p Position, c Color) (Board, error) {
	if !p.InBounds() {
		return b, ErrOutOfBounds
	}
	if b[p.Y][p.X] != Empty {
		return b, ErrCellOccupied
	}
	b[p.Y][p.X] = c
	return b, nil
}

// IsFull reports whether no empty cell remains.
func IsFull(b Board) bool {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b[y][x] == Empty {
				return false
			}
		}
	}
	return true
}

// CountStones returns the number of non-empty cells.
func CountStones(b Board) int {
	n := 0
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if b[y][x] != Empty {
				n++
			}
		}
	}
	return n
}

// axes are the four scan directions: horizontal, vertical, and the two
// diagonals. Each axis is walked in both directions from the anchor.
var axes = [4][2]int{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal up-right
}
