package ai

import (
	"errors"
	"math"
	"testing"

	"github.com/playforge/tictactoe/internal/domain"
)

const (
	e = domain.Empty
	x = domain.X
	o = domain.O
)

func mustBestMove(t *testing.T, b domain.Board, side domain.Cell) Outcome {
	t.Helper()
	out, err := BestMove(b, side)
	if err != nil {
		t.Fatalf("BestMove failed: %v", err)
	}
	return out
}

func TestBestMoveRejectsTerminalBoard(t *testing.T) {
	won := domain.Board{
		x, x, x,
		o, o, e,
		e, e, e,
	}
	if _, err := BestMove(won, o); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress on won board, got %v", err)
	}
	drawn := domain.Board{
		x, o, x,
		x, o, o,
		o, x, x,
	}
	if _, err := BestMove(drawn, x); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress on drawn board, got %v", err)
	}
}

func TestBestMoveBlocksImmediateThreat(t *testing.T) {
	b := domain.Board{
		o, o, e,
		e, x, e,
		e, e, x,
	}
	out := mustBestMove(t, b, x)
	if out.Index != 2 {
		t.Fatalf("expected X to block at 2, got %d", out.Index)
	}
	// Blocking at 2 also forks: X then wins through 2-5-8 or 2-4-6.
	if out.Score >= 0 {
		t.Fatalf("expected a score favoring X, got %d", out.Score)
	}
}

func TestBestMoveTakesImmediateWin(t *testing.T) {
	b := domain.Board{
		o, o, e,
		x, x, e,
		e, e, e,
	}
	out := mustBestMove(t, b, x)
	if out.Index != 5 {
		t.Fatalf("expected X to win at 5, got %d", out.Index)
	}
	// Win one ply away for X
	if out.Score != 1-maxScore {
		t.Fatalf("expected score %d, got %d", 1-maxScore, out.Score)
	}
	if err := b.Apply(out.Index, x); err != nil {
		t.Fatalf("applying chosen move failed: %v", err)
	}
	res := domain.Evaluate(b)
	if res.Status != domain.Won || res.Winner != x {
		t.Fatalf("expected X win after applying move, got %+v", res)
	}
	if res.Line != [3]int{3, 4, 5} {
		t.Fatalf("expected winning line [3 4 5], got %v", res.Line)
	}
}

func TestBestMoveIsDeterministic(t *testing.T) {
	b := domain.Board{
		x, e, e,
		e, o, e,
		e, e, e,
	}
	first := mustBestMove(t, b, x)
	for i := 0; i < 5; i++ {
		again := mustBestMove(t, b, x)
		if again != first {
			t.Fatalf("call %d: got %+v, want %+v", i, again, first)
		}
	}
}

func TestBestMoveDoesNotModifyBoard(t *testing.T) {
	b := domain.Board{
		x, e, e,
		e, o, e,
		e, e, e,
	}
	before := b
	mustBestMove(t, b, x)
	if b != before {
		t.Fatalf("BestMove modified the caller's board: %v", b)
	}
}

func TestOptimalSelfPlayAlwaysDraws(t *testing.T) {
	g := domain.New()
	for !g.Over() {
		out := mustBestMove(t, g.Board, g.Turn)
		if g.Board[out.Index] != e {
			t.Fatalf("BestMove chose occupied cell %d on %v", out.Index, g.Board)
		}
		if err := g.Play(out.Index); err != nil {
			t.Fatalf("playing chosen move failed: %v", err)
		}
	}
	if g.Result.Status != domain.Drawn {
		t.Fatalf("optimal self-play should draw, got %+v", g.Result)
	}
}

// plainMinimax is an unpruned reference search used to cross-check the
// alpha-beta implementation.
func plainMinimax(b *domain.Board, side domain.Cell, depth int) (int, int) {
	switch res := domain.Evaluate(*b); res.Status {
	case domain.Won:
		if res.Winner == o {
			return maxScore - depth, -1
		}
		return depth - maxScore, -1
	case domain.Drawn:
		return 0, -1
	}
	maximizing := side == o
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	bestIdx := -1
	for i := range b {
		if b[i] != e {
			continue
		}
		b[i] = side
		score, _ := plainMinimax(b, domain.Opponent(side), depth+1)
		b[i] = e
		if (maximizing && score > best) || (!maximizing && score < best) {
			best, bestIdx = score, i
		}
	}
	return best, bestIdx
}

func TestPruningMatchesPlainMinimaxOnAllReachableStates(t *testing.T) {
	seen := make(map[domain.Board]bool)
	var walk func(b *domain.Board, side domain.Cell)
	walk = func(b *domain.Board, side domain.Cell) {
		if seen[*b] || domain.Evaluate(*b).Status != domain.InProgress {
			return
		}
		seen[*b] = true

		pruned := mustBestMove(t, *b, side)
		wantScore, wantIdx := plainMinimax(b, side, 0)
		if pruned.Score != wantScore || pruned.Index != wantIdx {
			t.Fatalf("board %v side %v: pruned (%d,%d) != plain (%d,%d)",
				*b, side, pruned.Index, pruned.Score, wantIdx, wantScore)
		}
		if b[pruned.Index] != e {
			t.Fatalf("board %v: chose occupied cell %d", *b, pruned.Index)
		}

		for i := range b {
			if b[i] != e {
				continue
			}
			b[i] = side
			walk(b, domain.Opponent(side))
			b[i] = e
		}
	}
	var b domain.Board
	walk(&b, x)
	if len(seen) == 0 {
		t.Fatalf("no states visited")
	}
}
