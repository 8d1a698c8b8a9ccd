package treasure

import "github.com/google/uuid"

const (
	PlayerMatchStatusLost      = -1
	PlayerMatchStatusUndefined = 0
	PlayerMatchStatusWon       = 1
)

type Player struct {
	uuid        string
	sessionId   string
	displayName string
	isPlayerOne bool
	isTurn      bool
	score       int
	matchStatus int
}

func NewPlayer(isPlayerOne, isTurn bool, sessionId, displayName string) *Player {
	return &Player{
		uuid:        uuid.NewString()[:10],
		sessionId:   sessionId,
		displayName: displayName,
		isPlayerOne: isPlayerOne,
		isTurn:      isTurn,
		matchStatus: PlayerMatchStatusUndefined,
	}
}

func (p *Player) Uuid() string {
	return p.uuid
}

func (p *Player) SessionId() string {
	return p.sessionId
}

func (p *Player) DisplayName() string {
	return p.displayName
}

func (p *Player) IsPlayerOne() bool {
	return p.isPlayerOne
}

func (p *Player) IsTurn() bool {
	return p.isTurn
}

func (p *Player) Score() int {
	return p.score
}

func (p *Player) MatchStatus() int {
	return p.matchStatus
}

func (p *Player) setTurn(isTurn bool) {
	p.isTurn = isTurn
}

func (p *Player) foundTreasure() {
	p.score++
}

func (p *Player) setMatchStatus(status int) {
	p.matchStatus = status
}
