package connection

import (
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
)

const (
	defaultGracePeriod     time.Duration = time.Minute * 2
	defaultCleanupInterval time.Duration = time.Minute * 20
)

type SessionManager interface {
	GenerateNewSession(sessionId string, conn *websocket.Conn) *Session
	CleanupPeriodically()

	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn) error
	Communicate(senderSessionId, receiverSessionId, msg string) error
	WriteToSessionConn(session *Session, msg, receiverSessionId string) error
	ReadFromSessionConn(session *Session, receiverSessionId string) (string, error)
	SessionCount() int
}

type TreasureSessionManager struct {
	cleanupInterval time.Duration
	gracePeriod     time.Duration
	sessions        map[string]*Session
	mu              sync.RWMutex
}

type SessionManagerOption func(*TreasureSessionManager)

func WithGracePeriod(d time.Duration) SessionManagerOption {
	return func(tsm *TreasureSessionManager) {
		tsm.gracePeriod = d
	}
}

func WithCleanupInterval(d time.Duration) SessionManagerOption {
	return func(tsm *TreasureSessionManager) {
		tsm.cleanupInterval = d
	}
}

func NewTreasureSessionManager(opts ...SessionManagerOption) *TreasureSessionManager {
	initMapSize := 10

	tsm := &TreasureSessionManager{
		sessions:        make(map[string]*Session, initMapSize),
		cleanupInterval: defaultCleanupInterval,
		gracePeriod:     defaultGracePeriod,
	}
	for _, opt := range opts {
		opt(tsm)
	}
	return tsm
}

var _ SessionManager = (*TreasureSessionManager)(nil)

// URL compatible id for a new session
func NewSessionId() string {
	return base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
}

func (tsm *TreasureSessionManager) GenerateNewSession(sessionId string, conn *websocket.Conn) *Session {
	session := NewSession(sessionId, conn)

	tsm.mu.Lock()
	tsm.sessions[sessionId] = session
	tsm.mu.Unlock()

	return session
}

func (tsm *TreasureSessionManager) FindSession(sessionId string) (*Session, error) {
	tsm.mu.RLock()
	defer tsm.mu.RUnlock()

	session, prs := tsm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

func (tsm *TreasureSessionManager) SessionCount() int {
	tsm.mu.RLock()
	defer tsm.mu.RUnlock()
	return len(tsm.sessions)
}

func (tsm *TreasureSessionManager) TerminateSession(sessionId string) {
	tsm.mu.Lock()
	delete(tsm.sessions, sessionId)
	tsm.mu.Unlock()
	log.Info().Str("session", sessionId).Msg("session terminated")
}

func (tsm *TreasureSessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) error {
	session, err := tsm.FindSession(sessionId)
	if err != nil {
		return err
	}

	session.reconnectionAfterAbnormalClosure(conn)
	return nil
}

// This method sends the msg from one session to another
func (tsm *TreasureSessionManager) Communicate(senderSessionId, receiverSessionId, msg string) error {
	receiverSession, err := tsm.FindSession(receiverSessionId)
	if err != nil {
		return err
	}
	return tsm.WriteToSessionConn(receiverSession, msg, senderSessionId)
}

// To ensure that there is no dangling connections,
// server session manager marks the connections with a
// lifetime of more than the cleanup interval as stale
// and deletes them.
func (tsm *TreasureSessionManager) CleanupPeriodically() {
	assumedClosedConns := 10

	for {
		time.Sleep(tsm.cleanupInterval)

		tsm.mu.Lock()
		toDelete := make([]string, 0, assumedClosedConns)

		for id, session := range tsm.sessions {
			if time.Since(session.createdAt) > tsm.cleanupInterval {
				toDelete = append(toDelete, id)
			}
		}

		for _, id := range toDelete {
			delete(tsm.sessions, id)
			log.Info().Str("session", id).Msg("removed stale session")
		}
		tsm.mu.Unlock()
	}
}

// This function takes care of abnormal closures happening
// to either of the clients. The other player is told to wait
// and the session gets a grace period to reconnect.
func (tsm *TreasureSessionManager) HandleAbnormalClosureSession(s *Session, otherSessionId string) error {
	// No opponent means no game worth keeping alive
	if otherSessionId == "" {
		return NewConnErr(ConnLoopBreak).AddDesc("no other session; invalid session")
	}

	otherSession, err := tsm.FindSession(otherSessionId)
	if err != nil {
		return NewConnErr(ConnLoopBreak).AddDesc("other session is nil; invalid session")
	}

	// taken before the notice so a fast reconnect is not missed
	reconnected := s.reconnectionSignal()

	// If the other session connection is faulty too, there is no need to continue
	if err := otherSession.writeToConnWithRetry(MsgOtherPlayerGrace); err != nil {
		return err
	}

	timer := time.NewTimer(tsm.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		log.Info().Str("session", s.id).Msg("grace period is over")
		return NewConnErr(ConnGracePeriodOver).AddDesc("grace period is over for session: " + s.id)

	case <-reconnected:
		if err := otherSession.writeToConnWithRetry(MsgOtherPlayerReconnected); err != nil {
			return err
		}
		log.Info().Str("session", s.id).Msg("player reconnected")
		return nil
	}
}

func (tsm *TreasureSessionManager) WriteToSessionConn(session *Session, msg, otherSessionId string) error {
	err := session.writeToConnWithRetry(msg)
	if err == nil {
		return nil
	}

	var connErr ConnErr
	if !errors.As(err, &connErr) {
		return err
	}

	if connErr.Code() == ConnLoopAbnormalClosureRetry {
		if err := tsm.HandleAbnormalClosureSession(session, otherSessionId); err != nil {
			return err
		}
		// resend on the new connection
		return session.writeToConnWithRetry(msg)
	}
	return connErr
}

// Blocks until a text frame arrives. Abnormal closures are
// given a grace period before the read gives up.
func (tsm *TreasureSessionManager) ReadFromSessionConn(session *Session, otherSessionId string) (string, error) {
	var retries uint8

	for {
		_, payload, err := session.Conn().ReadMessage()
		if err == nil {
			return string(payload), nil
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++
			continue

		case ConnLoopAbnormalClosureRetry:
			if err := tsm.HandleAbnormalClosureSession(session, otherSessionId); err != nil {
				return "", err
			}
			retries = 0

		default:
			return "", err
		}
	}
}
