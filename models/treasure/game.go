package treasure

import (
	"sync"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
)

type Game struct {
	uuid       string
	board      *Board
	playerOne  *Player
	playerTwo  *Player
	isFinished bool
	createdAt  time.Time
	mu         sync.Mutex
}

func newGame(gameUuid string, board *Board) *Game {
	return &Game{
		uuid:      gameUuid,
		board:     board,
		createdAt: time.Now(),
	}
}

// Outcome of a single valid guess. IsPlayerOneTurn is the turn
// after the guess has been applied.
type GuessOutcome struct {
	Row             int
	Col             int
	Found           bool
	IsPlayerOneTurn bool
	IsFinished      bool
	ScorePlayerOne  int
	ScorePlayerTwo  int
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) Board() *Board {
	return g.board
}

func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

func (g *Game) IsFinished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isFinished
}

func (g *Game) FinishGame() {
	g.mu.Lock()
	g.isFinished = true
	g.mu.Unlock()
}

// Player one always has the first turn.
func (g *Game) CreatePlayerOne(sessionId, displayName string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.playerOne = NewPlayer(true, true, sessionId, displayName)
	return g.playerOne
}

func (g *Game) CreatePlayerTwo(sessionId, displayName string) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.playerTwo != nil {
		return nil, cerr.ErrGameIsFull(g.uuid)
	}
	if g.isFinished {
		return nil, cerr.ErrGameIsFinished(g.uuid)
	}

	g.playerTwo = NewPlayer(false, false, sessionId, displayName)
	return g.playerTwo, nil
}

func (g *Game) PlayerOne() *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerOne
}

func (g *Game) PlayerTwo() *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerTwo
}

func (g *Game) IsWaitingForPlayerTwo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerOne != nil && g.playerTwo == nil && !g.isFinished
}

func (g *Game) OtherPlayer(p *Player) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p == g.playerOne {
		return g.playerTwo
	}
	return g.playerOne
}

func (g *Game) IsPlayerOneTurn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerOne != nil && g.playerOne.isTurn
}

// Digs (row, col) for the player. Every valid guess, hit or
// miss, hands the turn to the other player.
func (g *Game) Guess(p *Player, row, col int) (GuessOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.isFinished {
		return GuessOutcome{}, cerr.ErrGameIsFinished(g.uuid)
	}
	if g.playerTwo == nil {
		return GuessOutcome{}, cerr.ErrGameNotStarted(g.uuid)
	}
	if p != g.playerOne && p != g.playerTwo {
		return GuessOutcome{}, cerr.ErrPlayerNotExist(p.uuid)
	}
	if !p.isTurn {
		return GuessOutcome{}, cerr.ErrNotTurnForPlayer(p.uuid)
	}

	found, err := g.board.Dig(row, col)
	if err != nil {
		return GuessOutcome{}, err
	}

	if found {
		p.foundTreasure()
	}

	other := g.playerTwo
	if p == g.playerTwo {
		other = g.playerOne
	}
	p.setTurn(false)
	other.setTurn(true)

	if g.board.TreasuresLeft() == 0 {
		g.isFinished = true
		g.settleMatchStatus()
	}

	return GuessOutcome{
		Row:             row,
		Col:             col,
		Found:           found,
		IsPlayerOneTurn: g.playerOne.isTurn,
		IsFinished:      g.isFinished,
		ScorePlayerOne:  g.playerOne.score,
		ScorePlayerTwo:  g.playerTwo.score,
	}, nil
}

func (g *Game) settleMatchStatus() {
	switch {
	case g.playerOne.score > g.playerTwo.score:
		g.playerOne.setMatchStatus(PlayerMatchStatusWon)
		g.playerTwo.setMatchStatus(PlayerMatchStatusLost)
	case g.playerTwo.score > g.playerOne.score:
		g.playerTwo.setMatchStatus(PlayerMatchStatusWon)
		g.playerOne.setMatchStatus(PlayerMatchStatusLost)
	}
}

// Returns nil on a tie or while the game is running.
func (g *Game) Winner() *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isFinished || g.playerOne == nil || g.playerTwo == nil {
		return nil
	}
	if g.playerOne.matchStatus == PlayerMatchStatusWon {
		return g.playerOne
	}
	if g.playerTwo.matchStatus == PlayerMatchStatusWon {
		return g.playerTwo
	}
	return nil
}

func newGameUuid() string {
	return uuid.NewString()[:6]
}
