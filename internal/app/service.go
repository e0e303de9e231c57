package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/playforge/tictactoe/internal/ai"
	"github.com/playforge/tictactoe/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound    = errors.New("game not found")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotAPlayer  = errors.New("not a player")
)

// Mode selects who controls the O seat.
type Mode string

const (
	// ModePvP seats two humans.
	ModePvP Mode = "pvp"
	// ModeSolo seats one human as X; the service plays O optimally.
	ModeSolo Mode = "solo"
)

// computerID marks the O seat as service-controlled in solo games.
const computerID = "computer"

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Mode    Mode
	Game    domain.Game
	X       string
	O       string
	Created time.Time
	Updated time.Time
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers.
type Service struct {
	mu        sync.Mutex
	games     map[string]*GameState
	subs      map[string]map[*subscriber]struct{}
	render    func(GameState) []byte
	log       *zap.Logger
	moveDelay time.Duration
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(log *zap.Logger) *Service {
	return NewServiceWithRenderer(log, func(gs GameState) []byte { return nil })
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(log *zap.Logger, renderer func(GameState) []byte) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if renderer == nil {
		renderer = func(gs GameState) []byte { return nil }
	}
	return &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: renderer,
		log:    log,
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// SetMoveDelay sets the cosmetic pause before a computer move is applied
// and revealed. The move itself is computed immediately; zero or negative
// means the move is applied synchronously.
func (s *Service) SetMoveDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveDelay = d
}

// CreateGame creates and registers a new game in the given mode. In solo
// mode the computer holds the O seat from the start.
func (s *Service) CreateGame(mode Mode) (*GameState, error) {
	if mode != ModeSolo {
		mode = ModePvP
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := time.Now()
	gs := &GameState{ID: id, Mode: mode, Game: domain.New(), Created: now, Updated: now}
	if mode == ModeSolo {
		gs.O = computerID
	}
	s.games[id] = gs
	s.log.Info("game created", zap.String("game_id", id), zap.String("mode", string(mode)))
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for spectators.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	side := domain.Empty
	if gs.X == "" || gs.X == playerID {
		gs.X = playerID
		side = domain.X
	} else if gs.O == "" || gs.O == playerID {
		gs.O = playerID
		side = domain.O
	}
	gs.Updated = time.Now()
	cp := *gs
	return side, &cp, nil
}

// Play validates seat and turn, applies a move, and broadcasts the new
// state. In solo games a successful human move that leaves O on turn also
// triggers the computer's reply.
func (s *Service) Play(id, playerID string, idx int) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	// Validate player is seated
	var seat domain.Cell
	if gs.X == playerID {
		seat = domain.X
	} else if gs.O == playerID {
		seat = domain.O
	} else {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	// Validate turn
	if seat != gs.Game.Turn {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	// Apply move
	if err := gs.Game.Play(idx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gs.Updated = time.Now()
	cp := *gs
	s.mu.Unlock()

	s.log.Info("move played",
		zap.String("game_id", id),
		zap.Int("cell", idx),
		zap.Int("moves", cp.Game.Moves))
	s.broadcast(id)

	if cp.Mode == ModeSolo && !cp.Game.Over() && cp.Game.Turn == domain.O {
		s.computerMove(id, cp.Game.Board)
	}
	return &cp, nil
}

// Reset restarts a game in place: empty board, X to move. Only seated
// players may reset.
func (s *Service) Reset(id, playerID string) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.X != playerID && gs.O != playerID {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	gs.Game.Reset()
	gs.Updated = time.Now()
	cp := *gs
	s.mu.Unlock()

	s.log.Info("game reset", zap.String("game_id", id))
	s.broadcast(id)
	return &cp, nil
}

// computerMove computes O's optimal reply to the snapshot board, then
// applies it after the configured delay. The delay only schedules the
// reveal; the chosen cell is fixed before waiting.
func (s *Service) computerMove(id string, snapshot domain.Board) {
	out, err := ai.BestMove(snapshot, domain.O)
	if err != nil {
		s.log.Error("computer move on finished game", zap.String("game_id", id), zap.Error(err))
		return
	}

	s.mu.Lock()
	delay := s.moveDelay
	s.mu.Unlock()

	apply := func() {
		s.mu.Lock()
		gs, ok := s.games[id]
		// The game may have been reset while waiting; only apply to the
		// exact position the move was computed for.
		if !ok || gs.Game.Board != snapshot || gs.Game.Turn != domain.O {
			s.mu.Unlock()
			return
		}
		if err := gs.Game.Play(out.Index); err != nil {
			s.mu.Unlock()
			s.log.Error("computer move rejected", zap.String("game_id", id), zap.Error(err))
			return
		}
		gs.Updated = time.Now()
		s.mu.Unlock()

		s.log.Info("computer move played",
			zap.String("game_id", id),
			zap.Int("cell", out.Index),
			zap.Int("score", out.Score))
		s.broadcast(id)
	}

	if delay <= 0 {
		apply()
		return
	}
	time.AfterFunc(delay, apply)
}

// broadcast renders the current state and fans it out to subscribers.
// Slow subscribers are closed and dropped rather than blocking the rest.
func (s *Service) broadcast(id string) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	cp := *gs
	subs := s.copySubsLocked(id)
	payload := s.render(cp)
	s.mu.Unlock()

	var toDrop []*subscriber
	for sub := range subs {
		select {
		case sub.ch <- payload:
		default:
			// drop slow subscriber
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
		s.log.Warn("dropped slow subscribers", zap.String("game_id", id), zap.Int("count", len(toDrop)))
	}
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		// create lazily to allow subscriptions before CreateGame in some flows
		s.games[id] = &GameState{ID: id, Mode: ModePvP, Game: domain.New(), Created: time.Now(), Updated: time.Now()}
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	// Solo games emit two frames back to back (human move, computer
	// reply); the buffer absorbs that without dropping the subscriber.
	sub := &subscriber{ch: make(chan []byte, 4)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
