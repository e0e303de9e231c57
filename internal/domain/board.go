package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// Board is a fixed 3x3 board stored row-major, indexed 0..8.
type Board [9]Cell

// Lines are the 8 winning index triples: rows, then columns, then diagonals.
// Evaluate reports the first matching triple in this order.
var Lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Status classifies a board position.
type Status uint8

const (
	InProgress Status = iota
	Won
	Drawn
)

// Result is the outcome of evaluating a board. Winner and Line are only
// meaningful when Status is Won.
type Result struct {
	Status Status
	Winner Cell
	Line   [3]int
}

// Errors returned by domain operations.
var (
	ErrOutOfRange = errors.New("index out of range")
	ErrOccupied   = errors.New("cell occupied")
	ErrGameOver   = errors.New("game over")
)

// Apply places p at index idx. The board is left untouched on any failure.
// This is the only mutation path into a board; all moves route through it.
func (b *Board) Apply(idx int, p Cell) error {
	if Evaluate(*b).Status != InProgress {
		return ErrGameOver
	}
	if idx < 0 || idx > 8 {
		return ErrOutOfRange
	}
	if b[idx] != Empty {
		return ErrOccupied
	}
	b[idx] = p
	return nil
}

// Evaluate classifies a board: a win with its line, a draw on a full board,
// or in-progress. Pure function of the board; recomputed on demand.
func Evaluate(b Board) Result {
	for _, ln := range Lines {
		if b[ln[0]] != Empty && b[ln[0]] == b[ln[1]] && b[ln[1]] == b[ln[2]] {
			return Result{Status: Won, Winner: b[ln[0]], Line: ln}
		}
	}
	for _, c := range b {
		if c == Empty {
			return Result{Status: InProgress}
		}
	}
	return Result{Status: Drawn}
}

// Opponent returns the other side.
func Opponent(p Cell) Cell {
	if p == X {
		return O
	}
	return X
}
