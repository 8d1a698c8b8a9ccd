package error

import "fmt"

const (
	ConstErrGuessFailed = "guess operation failed"
)

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("game with this uuid does not exist, uuid: %s", gameUuid)
}

func ErrGameIsFull(gameUuid string) error {
	return fmt.Errorf("game already has two players, uuid: %s", gameUuid)
}

func ErrGameIsFinished(gameUuid string) error {
	return fmt.Errorf("game is already finished, uuid: %s", gameUuid)
}

func ErrGameNotStarted(gameUuid string) error {
	return fmt.Errorf("game is still waiting for player 2, uuid: %s", gameUuid)
}

func ErrPlayerNotExist(playerUuid string) error {
	return fmt.Errorf("player with this uuid does not exist, uuid: %s", playerUuid)
}

func ErrNotTurnForPlayer(playerUuid string) error {
	return fmt.Errorf("it is not this player's turn, uuid: %s", playerUuid)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session is nil, id: %s", sessionId)
}

func ErrInvalidLocation(location string) error {
	return fmt.Errorf("location must be of format row,col\tgot: %q", location)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("incoming x or y is out of game grid bound\tx: %d\ty: %d", x, y)
}

func ErrTileAlreadyDug(x, y int) error {
	return fmt.Errorf("this tile is already dug in previous rounds\tx: %d\ty: %d", x, y)
}

func ErrTileAlreadyRevealed(x, y int) error {
	return fmt.Errorf("this tile already has a result\tx: %d\ty: %d", x, y)
}

func ErrInvalidTreasureCount(count int) error {
	return fmt.Errorf("treasure count must be positive\tgot: %d", count)
}

func ErrNotLocalTurn() error {
	return fmt.Errorf("it is not the local player's turn")
}

func ErrWaitingForOpponent() error {
	return fmt.Errorf("the game has not started yet, waiting for player 2")
}

func ErrGuessPending(location string) error {
	return fmt.Errorf("a guess is still waiting for the server response, location: %s", location)
}

func ErrNotConnected() error {
	return fmt.Errorf("not connected to the server")
}

func ErrNoSessionToResume() error {
	return fmt.Errorf("no session id to resume")
}

func ErrUnexpectedStatus(status int) error {
	return fmt.Errorf("unexpected http status: %d", status)
}
