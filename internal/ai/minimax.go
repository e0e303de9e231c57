// Package ai selects optimal tic-tac-toe moves by exhaustive minimax
// search with alpha-beta pruning. O is always the maximizing side.
package ai

import (
	"errors"
	"math"

	"github.com/playforge/tictactoe/internal/domain"
)

// ErrNotInProgress is returned when a move is requested for a board that
// is already won or drawn.
var ErrNotInProgress = errors.New("game is not in progress")

// Outcome is the chosen cell index and its minimax score. Positive scores
// favor O, negative favor X; the magnitude decays with distance to the
// terminal position, so a faster win outscores a slower one.
type Outcome struct {
	Index int
	Score int
}

// maxScore bounds the score of an immediate win; a win d plies away for O
// scores maxScore-d, for X d-maxScore.
const maxScore = 10

// BestMove returns the optimal move for side on b, assuming both sides play
// optimally thereafter. The search is exhaustive to full depth, stateless
// between calls, and deterministic: ties between equally scored cells go to
// the lowest index. The caller's board is never modified.
func BestMove(b domain.Board, side domain.Cell) (Outcome, error) {
	if domain.Evaluate(b).Status != domain.InProgress {
		return Outcome{}, ErrNotInProgress
	}
	score, idx := search(&b, side, 0, math.MinInt, math.MaxInt)
	return Outcome{Index: idx, Score: score}, nil
}

// search returns the minimax value of the position with side to move, and
// the cell index achieving it (-1 at terminal nodes). The board is mutated
// in place and restored before every return; candidates are tried in
// increasing index order with a standard beta<=alpha cutoff.
func search(b *domain.Board, side domain.Cell, depth, alpha, beta int) (int, int) {
	switch res := domain.Evaluate(*b); res.Status {
	case domain.Won:
		if res.Winner == domain.O {
			return maxScore - depth, -1
		}
		return depth - maxScore, -1
	case domain.Drawn:
		return 0, -1
	}

	maximizing := side == domain.O
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	bestIdx := -1
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		b[i] = side
		score, _ := search(b, domain.Opponent(side), depth+1, alpha, beta)
		b[i] = domain.Empty
		if maximizing {
			if score > best {
				best, bestIdx = score, i
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if score < best {
				best, bestIdx = score, i
			}
			if best < beta {
				beta = best
			}
		}
		if beta <= alpha {
			break
		}
	}
	return best, bestIdx
}
