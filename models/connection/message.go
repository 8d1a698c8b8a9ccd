package connection

import (
	"fmt"
	"strings"
)

// Literals of the text protocol. They are matched exactly by
// clients so they must not change.
const (
	MsgSessionStart           = "You are Player 1 ... waiting for Player 2"
	MsgPlayerTwoStart         = "You are Player 2 ... Player 1 goes first"
	MsgOtherPlayerLeft        = "Opponent disconnected"
	MsgOtherPlayerGrace       = "Opponent connection lost, waiting..."
	MsgOtherPlayerReconnected = "Opponent reconnected"
)

const (
	turnStatePrefix  = "player_one_turn:"
	foundPrefix      = "Found treasure at "
	missPrefix       = "Nothing at "
	otherFoundPrefix = "Opponent found treasure at "
	otherMissPrefix  = "Opponent dug "
	gameOverPrefix   = "Game over: "
	errorPrefix      = "Error: "
	turnSuffixTrue   = "true"
	turnSuffixFalse  = "false"
)

type IncomingKind uint8

const (
	KindInfo IncomingKind = iota
	KindSessionStart
	KindTurnState
	KindGuessResult
	KindGameOver
	KindError
	KindOtherPlayerGuess
)

func (k IncomingKind) String() string {
	switch k {
	case KindSessionStart:
		return "session_start"
	case KindTurnState:
		return "turn_state"
	case KindGuessResult:
		return "guess_result"
	case KindGameOver:
		return "game_over"
	case KindError:
		return "error"
	case KindOtherPlayerGuess:
		return "other_player_guess"
	default:
		return "info"
	}
}

// Incoming is the structured reading of a raw server string.
type Incoming struct {
	Kind            IncomingKind
	Raw             string
	IsPlayerOneTurn bool
	Found           bool

	// "row,col" of a guess result, own or the opponent's
	Location string
}

// Turn state strings only carry meaning in their suffix.
func TurnStateMessage(isPlayerOneTurn bool) string {
	return fmt.Sprintf("%s%t", turnStatePrefix, isPlayerOneTurn)
}

func GuessResultMessage(location string, found bool) string {
	if found {
		return foundPrefix + location
	}
	return missPrefix + location
}

func OtherPlayerGuessMessage(location string, found bool) string {
	if found {
		return otherFoundPrefix + location
	}
	return otherMissPrefix + location
}

func GameOverMessage(scoreOne, scoreTwo int) string {
	switch {
	case scoreOne > scoreTwo:
		return fmt.Sprintf("%sPlayer 1 wins %d-%d", gameOverPrefix, scoreOne, scoreTwo)
	case scoreTwo > scoreOne:
		return fmt.Sprintf("%sPlayer 2 wins %d-%d", gameOverPrefix, scoreTwo, scoreOne)
	default:
		return fmt.Sprintf("%stie %d-%d", gameOverPrefix, scoreOne, scoreTwo)
	}
}

func ErrorMessage(err error) string {
	return errorPrefix + err.Error()
}

func ContactMessage(displayName, details string) string {
	if displayName == "" {
		displayName = "Player 2"
	}
	return fmt.Sprintf("%s wants to play: %s", displayName, details)
}

// A response is a hit when its first character, upper-cased,
// is 'F'. "Failure" therefore reads as a hit as well.
func IsFoundResponse(msg string) bool {
	return strings.HasPrefix(strings.ToUpper(msg), "F")
}

func Classify(msg string) Incoming {
	in := Incoming{Kind: KindInfo, Raw: msg}

	switch {
	case msg == MsgSessionStart:
		in.Kind = KindSessionStart
		in.IsPlayerOneTurn = true

	case strings.HasPrefix(msg, errorPrefix):
		in.Kind = KindError

	case strings.HasPrefix(msg, gameOverPrefix):
		in.Kind = KindGameOver

	case strings.HasSuffix(msg, turnSuffixTrue):
		in.Kind = KindTurnState
		in.IsPlayerOneTurn = true

	case strings.HasSuffix(msg, turnSuffixFalse):
		in.Kind = KindTurnState

	case strings.HasPrefix(msg, foundPrefix):
		in.Kind = KindGuessResult
		in.Found = IsFoundResponse(msg)
		in.Location = strings.TrimPrefix(msg, foundPrefix)

	case strings.HasPrefix(msg, missPrefix):
		in.Kind = KindGuessResult
		in.Found = IsFoundResponse(msg)
		in.Location = strings.TrimPrefix(msg, missPrefix)

	case strings.HasPrefix(msg, otherFoundPrefix):
		in.Kind = KindOtherPlayerGuess
		in.Found = true
		in.Location = strings.TrimPrefix(msg, otherFoundPrefix)

	case strings.HasPrefix(msg, otherMissPrefix):
		in.Kind = KindOtherPlayerGuess
		in.Location = strings.TrimPrefix(msg, otherMissPrefix)
	}

	return in
}
