package client

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
	mt "github.com/saeidalz13/treasurehunt-backend/models/treasure"
)

// Sender delivers an outgoing guess. Delivery is fire-and-forget.
type Sender interface {
	Send(msg string)
}

// Board is the local view of a game: the tile grid, whose
// turn it is, the score, and the guess waiting for a result.
type Board struct {
	sender   Sender
	grid     *mt.Grid
	state    TurnState
	score    int
	pending  *mt.Tile
	gameOver bool

	// set by the first turn-state message, i.e. once both
	// players are in
	started bool
	mu      sync.Mutex
}

func NewBoard(sender Sender) *Board {
	return &Board{
		sender: sender,
		grid:   mt.NewGrid(mt.GridSize),
	}
}

// Sends the tile location as a guess. Taps are only accepted
// on the local player's turn and one guess at a time.
func (b *Board) Tap(row, col int) error {
	location, err := b.markPending(row, col)
	if err != nil {
		return err
	}

	// outside the lock: a sender may deliver the reply inline
	b.sender.Send(location)
	return nil
}

func (b *Board) markPending(row, col int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.gameOver || !b.state.IsLocalPlayerTurn {
		return "", cerr.ErrNotLocalTurn()
	}
	if !b.started {
		return "", cerr.ErrWaitingForOpponent()
	}
	if b.pending != nil {
		return "", cerr.ErrGuessPending(b.pending.Location())
	}

	tile, err := b.grid.Tile(row, col)
	if err != nil {
		return "", err
	}
	if tile.State != mt.TileStateEmpty {
		return "", cerr.ErrTileAlreadyRevealed(row, col)
	}

	b.pending = tile
	return tile.Location(), nil
}

// HandleIncoming reacts to a new server message. It is meant
// to be subscribed to the incoming message observable so it
// only runs when the message changes.
func (b *Board) HandleIncoming(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = ApplyIncomingMessage(msg, b.state)

	in := mc.Classify(msg)
	switch in.Kind {
	case mc.KindTurnState:
		b.started = true

	case mc.KindOtherPlayerGuess:
		b.markTaken(in.Location)

	case mc.KindGuessResult:
		if b.pending == nil {
			return
		}

		found := Evaluate(b.state.LastResponse, &b.state)
		if err := b.grid.ApplyResult(b.pending, found); err != nil {
			log.Warn().Err(err).Msg("failed to apply guess result")
		}
		if found {
			b.score++
		}
		b.pending = nil

	case mc.KindError:
		// the server keeps the turn on a rejected guess
		if b.pending != nil {
			b.pending = nil
			b.state.IsLocalPlayerTurn = true
		}

	case mc.KindGameOver:
		b.gameOver = true
		b.pending = nil
		b.state.IsLocalPlayerTurn = false
	}
}

// Caller holds mu.
func (b *Board) markTaken(location string) {
	row, col, err := mt.ParseLocation(location, b.grid.Size())
	if err != nil {
		log.Warn().Err(err).Msg("invalid opponent guess location")
		return
	}

	tile, _ := b.grid.Tile(row, col)
	if err := b.grid.MarkTaken(tile); err != nil {
		log.Warn().Err(err).Msg("failed to mark opponent guess")
	}
}

func (b *Board) TurnState() TurnState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Board) Score() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.score
}

func (b *Board) IsGameOver() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gameOver
}

func (b *Board) Tiles() []mt.Tile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.grid.Tiles()
}

func (b *Board) Tile(row, col int) (mt.Tile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tile, err := b.grid.Tile(row, col)
	if err != nil {
		return mt.Tile{}, err
	}
	return *tile, nil
}

func (b *Board) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score: %d\n", b.score)
	sb.WriteString(b.grid.String())
	return sb.String()
}
