package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/treasurehunt-backend/db/sqlc"
	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
	mt "github.com/saeidalz13/treasurehunt-backend/models/treasure"
)

type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mt.GameManager
	dbManager      sqlc.DbManager
	ipnet          net.IPNet
	upgrader       websocket.Upgrader
}

// q may be nil; analytics are skipped in that case.
func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mt.GameManager,
	q sqlc.Querier,
) *RequestProcessor {
	return &RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		dbManager:      sqlc.NewDbManager(q),
		ipnet:          getServerIpNet(),
		upgrader: websocket.Upgrader{
			// good average time since this is not a high-latency operation such as video streaming
			HandshakeTimeout: time.Second * 5,
			ReadBufferSize:   2048,
			WriteBufferSize:  2048,
		},
	}
}

// Picks the first non-loopback IPv4 address of the host. The
// loopback address is used when there is none.
func getServerIpNet() net.IPNet {
	loopback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list network interfaces")
		return loopback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipnet.IP.To4(); ip != nil && !ip.IsLoopback() {
				return net.IPNet{IP: ip, Mask: net.CIDRMask(32, 32)}
			}
		}
	}

	log.Warn().Msg("no non-loopback ipv4 address; analytics keyed by loopback")
	return loopback
}

func (rp *RequestProcessor) serverInet() pqtype.Inet {
	return pqtype.Inet{IPNet: rp.ipnet, Valid: true}
}

func (rp *RequestProcessor) allowAllOrigins() {
	rp.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sessionId := query.Get(mc.URLQuerySessionIDKeyword)
	isReconnect := sessionId != ""
	if !isReconnect {
		sessionId = mc.NewSessionId()
	}

	// use Upgrade method to make a websocket connection
	conn, err := rp.upgrader.Upgrade(w, r, http.Header{mc.HeaderSessionID: []string{sessionId}})
	if err != nil {
		log.Error().Err(err).Msg("could not open websocket connection")
		return
	}

	if isReconnect {
		if err := rp.sessionManager.ReconnectSession(sessionId, conn); err != nil {
			// This either means an expired session or invalid session ID
			_ = conn.WriteMessage(websocket.TextMessage, []byte(mc.ErrorMessage(err)))
			_ = conn.Close()
		}
		return
	}

	log.Info().Str("remote", conn.RemoteAddr().String()).Str("session", sessionId).Msg("a new connection established")
	session := rp.sessionManager.GenerateNewSession(sessionId, conn)

	req := newRequest(
		query.Get(mc.URLQueryGameUuidKeyword),
		query.Get(mc.URLQueryDisplayNameKeyword),
		query.Get(mc.URLQueryDetailsKeyword),
	)
	rp.processSessionRequests(session, req)
}

func (rp *RequestProcessor) analytics(incr func(ctx context.Context, inet pqtype.Inet) error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	// for now not killing the game for it
	if err := incr(ctx, rp.serverInet()); err != nil {
		log.Error().Err(err).Msg("failed to update analytics")
	}
}

func (rp *RequestProcessor) processSessionRequests(session *mc.Session, req request) {
	var (
		sessionId = session.Id()
		player    *mt.Player
		game      *mt.Game
	)

	otherSessionId := func() string {
		if game == nil || player == nil {
			return ""
		}
		if other := game.OtherPlayer(player); other != nil {
			return other.SessionId()
		}
		return ""
	}

	defer func() {
		if game != nil {
			if !game.IsFinished() {
				_ = rp.sessionManager.Communicate(sessionId, otherSessionId(), mc.MsgOtherPlayerLeft)
			}
			rp.gameManager.TerminateGame(game.Uuid())
		}

		if conn := session.Conn(); conn != nil {
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			_ = conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
	}()

	var err error
	if req.isJoin() {
		game, player, err = rp.handleJoinGame(session, req)
	} else {
		game, player, err = rp.handleCreateGame(session, req)
	}
	if err != nil {
		log.Info().Err(err).Str("session", sessionId).Msg("session could not enter a game")
		return
	}

sessionLoop:
	for {
		payload, err := rp.sessionManager.ReadFromSessionConn(session, otherSessionId())
		if err != nil {
			// This error happens after retries. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			break sessionLoop
		}

		outcome, err := rp.handleGuess(game, player, payload)
		if err != nil {
			log.Debug().Err(err).Str("session", sessionId).Str("game", game.Uuid()).Msg(cerr.ConstErrGuessFailed)
			if err := rp.sessionManager.WriteToSessionConn(session, mc.ErrorMessage(err), otherSessionId()); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		location := mt.CellLocation(outcome.Row, outcome.Col)
		receiverSessionId := otherSessionId()

		if err := rp.sessionManager.WriteToSessionConn(session, mc.GuessResultMessage(location, outcome.Found), receiverSessionId); err != nil {
			break sessionLoop
		}
		if err := rp.sessionManager.Communicate(sessionId, receiverSessionId, mc.OtherPlayerGuessMessage(location, outcome.Found)); err != nil {
			break sessionLoop
		}

		next := mc.TurnStateMessage(outcome.IsPlayerOneTurn)
		if outcome.IsFinished {
			next = mc.GameOverMessage(outcome.ScorePlayerOne, outcome.ScorePlayerTwo)
		}

		if err := rp.sessionManager.WriteToSessionConn(session, next, receiverSessionId); err != nil {
			break sessionLoop
		}
		if err := rp.sessionManager.Communicate(sessionId, receiverSessionId, next); err != nil {
			break sessionLoop
		}

		if outcome.IsFinished {
			log.Info().Str("game", game.Uuid()).Msg(next)
			break sessionLoop
		}
	}
}
