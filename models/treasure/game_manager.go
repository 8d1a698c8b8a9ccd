package treasure

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
)

type GameManager interface {
	CreateGame() *Game
	GetGame(gameUuid string) (*Game, error)
	TerminateGame(gameUuid string)
	OpenGames() []*Game
}

type TreasureGameManager struct {
	games         map[string]*Game
	gridSize      int
	treasureCount int
	rng           *rand.Rand
	mu            sync.RWMutex
}

var _ GameManager = (*TreasureGameManager)(nil)

func NewTreasureGameManager(treasureCount int) *TreasureGameManager {
	if treasureCount <= 0 {
		treasureCount = DefaultTreasureCount
	}

	return &TreasureGameManager{
		games:         make(map[string]*Game, 10),
		gridSize:      GridSize,
		treasureCount: treasureCount,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (tgm *TreasureGameManager) CreateGame() *Game {
	tgm.mu.Lock()
	defer tgm.mu.Unlock()

	gameUuid := newGameUuid()
	for _, prs := tgm.games[gameUuid]; prs; _, prs = tgm.games[gameUuid] {
		gameUuid = newGameUuid()
	}

	// rng is not safe for concurrent use; guarded by mu
	game := newGame(gameUuid, NewBoard(tgm.gridSize, tgm.treasureCount, tgm.rng))
	tgm.games[gameUuid] = game
	return game
}

// Registers a game built elsewhere, e.g. with a fixed board.
func (tgm *TreasureGameManager) AddGame(board *Board) *Game {
	tgm.mu.Lock()
	defer tgm.mu.Unlock()

	game := newGame(newGameUuid(), board)
	tgm.games[game.uuid] = game
	return game
}

func (tgm *TreasureGameManager) GetGame(gameUuid string) (*Game, error) {
	tgm.mu.RLock()
	game, prs := tgm.games[gameUuid]
	tgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotExists(gameUuid)
	}

	return game, nil
}

func (tgm *TreasureGameManager) TerminateGame(gameUuid string) {
	tgm.mu.Lock()
	if game, prs := tgm.games[gameUuid]; prs {
		game.FinishGame()
		delete(tgm.games, gameUuid)
	}
	tgm.mu.Unlock()
}

// Games that have a player one and are waiting for someone
// to join, oldest first.
func (tgm *TreasureGameManager) OpenGames() []*Game {
	tgm.mu.RLock()
	open := make([]*Game, 0, len(tgm.games))
	for _, game := range tgm.games {
		if game.IsWaitingForPlayerTwo() {
			open = append(open, game)
		}
	}
	tgm.mu.RUnlock()

	sort.Slice(open, func(i, j int) bool {
		return open[i].createdAt.Before(open[j].createdAt)
	})
	return open
}
