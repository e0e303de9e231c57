package domain

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
	Board  Board
	Turn   Cell
	Result Result
	Moves  int
}

// New returns a new game with X to move.
func New() Game {
	return Game{Turn: X}
}

// Play attempts to play the current turn at cell index idx (0..8).
func (g *Game) Play(idx int) error {
	if err := g.Board.Apply(idx, g.Turn); err != nil {
		return err
	}
	g.Moves++
	g.Result = Evaluate(g.Board)
	if g.Result.Status == InProgress {
		g.Turn = Opponent(g.Turn)
	}
	return nil
}

// Over reports whether the game has ended.
func (g *Game) Over() bool {
	return g.Result.Status != InProgress
}

// Reset returns the game to an empty board with X to move.
func (g *Game) Reset() {
	*g = New()
}
