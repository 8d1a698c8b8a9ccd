package api

import (
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
	mt "github.com/saeidalz13/treasurehunt-backend/models/treasure"
)

const maxDisplayNameLen = 32

// What a new connection asked for in its query string.
type request struct {
	gameUuid    string
	displayName string
	details     string
}

func newRequest(gameUuid, displayName, details string) request {
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		displayName = string([]rune(displayName)[:maxDisplayNameLen])
	}
	return request{gameUuid: gameUuid, displayName: displayName, details: details}
}

func (r request) isJoin() bool {
	return r.gameUuid != ""
}

// In this handler we initialize the game and hence create
// player one, who holds the first turn.
func (rp *RequestProcessor) handleCreateGame(session *mc.Session, req request) (*mt.Game, *mt.Player, error) {
	game := rp.gameManager.CreateGame()
	player := game.CreatePlayerOne(session.Id(), req.displayName)
	rp.analytics(rp.dbManager.Analytics.IncrementGamesCreatedCount)

	log.Info().Str("game", game.Uuid()).Str("session", session.Id()).Msg("game created")

	if err := rp.sessionManager.WriteToSessionConn(session, mc.MsgSessionStart, ""); err != nil {
		return game, player, err
	}
	return game, player, nil
}

// This handler joins player two to an open game, forwards the
// contact details to player one and announces the first turn
// to both.
func (rp *RequestProcessor) handleJoinGame(session *mc.Session, req request) (*mt.Game, *mt.Player, error) {
	game, err := rp.gameManager.GetGame(req.gameUuid)
	if err != nil {
		_ = rp.sessionManager.WriteToSessionConn(session, mc.ErrorMessage(err), "")
		return nil, nil, err
	}

	// the host may not be seated yet right after CreateGame
	playerOne := game.PlayerOne()
	if playerOne == nil {
		err := cerr.ErrGameNotStarted(game.Uuid())
		_ = rp.sessionManager.WriteToSessionConn(session, mc.ErrorMessage(err), "")
		return nil, nil, err
	}

	player, err := game.CreatePlayerTwo(session.Id(), req.displayName)
	if err != nil {
		_ = rp.sessionManager.WriteToSessionConn(session, mc.ErrorMessage(err), "")
		return nil, nil, err
	}

	playerOneSessionId := playerOne.SessionId()
	log.Info().Str("game", game.Uuid()).Str("session", session.Id()).Msg("player 2 joined")

	if err := rp.sessionManager.WriteToSessionConn(session, mc.MsgPlayerTwoStart, playerOneSessionId); err != nil {
		return game, player, err
	}
	if err := rp.sessionManager.Communicate(session.Id(), playerOneSessionId, mc.ContactMessage(req.displayName, req.details)); err != nil {
		return game, player, err
	}

	turn := mc.TurnStateMessage(game.IsPlayerOneTurn())
	if err := rp.sessionManager.WriteToSessionConn(session, turn, playerOneSessionId); err != nil {
		return game, player, err
	}
	if err := rp.sessionManager.Communicate(session.Id(), playerOneSessionId, turn); err != nil {
		return game, player, err
	}
	return game, player, nil
}

// Parses the incoming "row,col" guess and applies it.
func (rp *RequestProcessor) handleGuess(game *mt.Game, player *mt.Player, payload string) (mt.GuessOutcome, error) {
	row, col, err := mt.ParseLocation(payload, game.Board().Size())
	if err != nil {
		return mt.GuessOutcome{}, err
	}

	outcome, err := game.Guess(player, row, col)
	if err != nil {
		return mt.GuessOutcome{}, err
	}

	rp.analytics(rp.dbManager.Analytics.IncrementGuessesMadeCount)
	if outcome.Found {
		rp.analytics(rp.dbManager.Analytics.IncrementTreasuresFoundCount)
	}
	return outcome, nil
}
