package client

import (
	"strings"

	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
)

type TurnState struct {
	IsLocalPlayerTurn bool
	IsPlayerOne       bool

	// Latest raw server response, read by Evaluate.
	LastResponse string
}

// A guess always ends the local turn. The response counts as a
// hit when its first character is 'F', case-insensitively.
func Evaluate(response string, state *TurnState) bool {
	state.IsLocalPlayerTurn = false
	return mc.IsFoundResponse(response)
}

// Applies the turn assignment rule for a newly received
// message and records it as the latest response.
func ApplyIncomingMessage(msg string, state TurnState) TurnState {
	if msg == mc.MsgSessionStart {
		state.IsPlayerOne = true
		state.IsLocalPlayerTurn = true
	}

	if state.IsPlayerOne && strings.HasSuffix(msg, "true") {
		state.IsLocalPlayerTurn = true
	} else if !state.IsPlayerOne && strings.HasSuffix(msg, "false") {
		state.IsLocalPlayerTurn = true
	}

	state.LastResponse = msg
	return state
}
