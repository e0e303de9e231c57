package domain

import (
	"errors"
	"testing"
)

// helper to apply a sequence of moves
func playMoves(t *testing.T, g *Game, moves []int) {
	t.Helper()
	for i, m := range moves {
		if err := g.Play(m); err != nil {
			t.Fatalf("move %d (cell %d) failed: %v", i, m, err)
		}
	}
}

func TestNewGameInitialState(t *testing.T) {
	g := New()
	if g.Turn != X {
		t.Fatalf("expected initial turn X, got %v", g.Turn)
	}
	if g.Moves != 0 {
		t.Fatalf("expected 0 moves, got %d", g.Moves)
	}
	if g.Over() {
		t.Fatalf("expected game not over")
	}
	for i, c := range g.Board {
		if c != Empty {
			t.Fatalf("expected empty board, cell %d = %v", i, c)
		}
	}
}

func TestPlayOutOfRange(t *testing.T) {
	g := New()
	for _, idx := range []int{-1, 9, 42} {
		if err := g.Play(idx); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange for %d, got %v", idx, err)
		}
	}
}

func TestPlayOccupied(t *testing.T) {
	g := New()
	if err := g.Play(0); err != nil {
		t.Fatalf("first move failed: %v", err)
	}
	if err := g.Play(0); !errors.Is(err, ErrOccupied) {
		t.Fatalf("expected ErrOccupied on same cell, got %v", err)
	}
}

func TestTurnFlipsAfterValidMove(t *testing.T) {
	g := New()
	if g.Turn != X {
		t.Fatalf("expected X to start")
	}
	if err := g.Play(4); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if g.Turn != O {
		t.Fatalf("expected turn to flip to O, got %v", g.Turn)
	}
}

// offLine returns the board cells not on line, and a subset of three of
// them that do not themselves form a line.
func offLine(t *testing.T, line [3]int) (off, safe []int) {
	t.Helper()
	onLine := func(idx int) bool {
		return idx == line[0] || idx == line[1] || idx == line[2]
	}
	for idx := 0; idx < 9; idx++ {
		if !onLine(idx) {
			off = append(off, idx)
		}
	}
	for _, a := range off {
		cand := append([]int{a}, safe...)
		collinear := false
		for _, ln := range Lines {
			hit := 0
			for _, c := range cand {
				if c == ln[0] || c == ln[1] || c == ln[2] {
					hit++
				}
			}
			if hit == 3 {
				collinear = true
				break
			}
		}
		if !collinear {
			safe = append(safe, a)
		}
		if len(safe) == 3 {
			return off, safe
		}
	}
	t.Fatalf("line %v: could not pick safe fillers from %v", line, off)
	return nil, nil
}

func TestWinConditionsForX(t *testing.T) {
	for _, line := range Lines {
		g := New()
		off, _ := offLine(t, line)
		// X, O, X, O, X with X on the line
		playMoves(t, &g, []int{line[0], off[0], line[1], off[1], line[2]})
		if !g.Over() || g.Result.Winner != X {
			t.Fatalf("expected X to win on line %v; result=%+v", line, g.Result)
		}
		if g.Result.Line != line {
			t.Fatalf("expected winning line %v, got %v", line, g.Result.Line)
		}
		if g.Moves != 5 {
			t.Fatalf("expected 5 moves to win, got %d", g.Moves)
		}
	}
}

func TestWinConditionsForO(t *testing.T) {
	for _, line := range Lines {
		g := New()
		// X plays three non-collinear fillers, O plays the line.
		_, xs := offLine(t, line)
		playMoves(t, &g, []int{xs[0], line[0], xs[1], line[1], xs[2], line[2]})
		if !g.Over() || g.Result.Winner != O {
			t.Fatalf("expected O to win on line %v; result=%+v", line, g.Result)
		}
		if g.Moves != 6 {
			t.Fatalf("expected 6 moves to win for O, got %d", g.Moves)
		}
	}
}

func TestDrawNoWinner(t *testing.T) {
	g := New()
	// Draw pattern (no three in a row)
	playMoves(t, &g, []int{0, 1, 2, 4, 3, 5, 7, 6, 8})
	if !g.Over() {
		t.Fatalf("expected game over on draw")
	}
	if g.Result.Status != Drawn || g.Result.Winner != Empty {
		t.Fatalf("expected draw with no winner, got %+v", g.Result)
	}
	if g.Moves != 9 {
		t.Fatalf("expected 9 moves on draw, got %d", g.Moves)
	}
}

func TestGameOverBlocksFurtherMoves(t *testing.T) {
	g := New()
	// X wins quickly on the top row
	playMoves(t, &g, []int{0, 3, 1, 4, 2})
	if !g.Over() || g.Result.Winner != X {
		t.Fatalf("expected X win before extra move")
	}
	if err := g.Play(8); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestResetReturnsToInitialState(t *testing.T) {
	g := New()
	playMoves(t, &g, []int{0, 3, 1, 4, 2})
	if !g.Over() {
		t.Fatalf("expected game over before reset")
	}
	g.Reset()
	if g.Over() || g.Turn != X || g.Moves != 0 {
		t.Fatalf("reset did not restore initial state: %+v", g)
	}
	if g.Board != (Board{}) {
		t.Fatalf("reset did not clear board: %v", g.Board)
	}
}
