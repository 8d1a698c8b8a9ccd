package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
)

// A game waiting for an opponent.
type Peer struct {
	GameUuid    string
	DisplayName string
}

// Free text sent along when contacting a peer.
type Request struct {
	Details string
}

// NetworkSupport is the client end of the websocket
// connection: it sends guesses and exposes the latest
// incoming message.
type NetworkSupport struct {
	baseURL     *url.URL
	displayName string
	dialer      websocket.Dialer
	httpClient  *http.Client

	conn      *websocket.Conn
	sessionId string
	incoming  *Observable[string]
	connected *Observable[bool]
	mu        sync.Mutex
}

// serverURL is the http(s) base address of the server.
func NewNetworkSupport(serverURL, displayName string) (*NetworkSupport, error) {
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}

	return &NetworkSupport{
		baseURL:     baseURL,
		displayName: displayName,
		dialer: websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   2048,
			WriteBufferSize:  2048,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		incoming:   NewObservable(""),
		connected:  NewObservable(false),
	}, nil
}

func (ns *NetworkSupport) Incoming() *Observable[string] {
	return ns.incoming
}

func (ns *NetworkSupport) ConnectedState() *Observable[bool] {
	return ns.connected
}

func (ns *NetworkSupport) Connected() bool {
	return ns.connected.Get()
}

func (ns *NetworkSupport) SessionId() string {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.sessionId
}

// Lists the games that are waiting for a second player.
func (ns *NetworkSupport) Browse(ctx context.Context) ([]Peer, error) {
	u := *ns.baseURL
	u.Path = mc.PathPeers

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := ns.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure mc.Message[mc.NoPayload]
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error != nil {
			log.Error().Str("details", failure.Error.ErrorDetails).Msg(failure.Error.Message)
		}
		return nil, cerr.ErrUnexpectedStatus(resp.StatusCode)
	}

	var msg mc.Message[[]mc.RespPeer]
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, err
	}

	peers := make([]Peer, 0, len(msg.Payload))
	for _, p := range msg.Payload {
		peers = append(peers, Peer{GameUuid: p.GameUuid, DisplayName: p.DisplayName})
	}
	return peers, nil
}

// Opens a new game and waits there as player 1.
func (ns *NetworkSupport) Host(ctx context.Context) error {
	query := url.Values{}
	query.Set(mc.URLQueryDisplayNameKeyword, ns.displayName)
	return ns.dial(ctx, query)
}

// Joins the peer's game. A failure is logged and returned; no
// retry is attempted and no state changes.
func (ns *NetworkSupport) ContactPeer(ctx context.Context, peer Peer, req Request) error {
	query := url.Values{}
	query.Set(mc.URLQueryGameUuidKeyword, peer.GameUuid)
	query.Set(mc.URLQueryDisplayNameKeyword, ns.displayName)
	query.Set(mc.URLQueryDetailsKeyword, req.Details)

	if err := ns.dial(ctx, query); err != nil {
		log.Error().Err(err).Str("game", peer.GameUuid).Msg("failed to contact peer")
		return err
	}
	return nil
}

// Resumes the current session on a fresh connection. Only
// works within the server grace period.
func (ns *NetworkSupport) Reconnect(ctx context.Context) error {
	sessionId := ns.SessionId()
	if sessionId == "" {
		return cerr.ErrNoSessionToResume()
	}

	query := url.Values{}
	query.Set(mc.URLQuerySessionIDKeyword, sessionId)
	return ns.dial(ctx, query)
}

func (ns *NetworkSupport) wsURL(query url.Values) string {
	u := *ns.baseURL
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = mc.PathTreasureHunt
	u.RawQuery = query.Encode()
	return u.String()
}

func (ns *NetworkSupport) dial(ctx context.Context, query url.Values) error {
	conn, resp, err := ns.dialer.DialContext(ctx, ns.wsURL(query), nil)
	if err != nil {
		return err
	}

	ns.mu.Lock()
	if ns.conn != nil {
		_ = ns.conn.Close()
	}
	ns.conn = conn
	if sessionId := resp.Header.Get(mc.HeaderSessionID); sessionId != "" {
		ns.sessionId = sessionId
	}
	ns.mu.Unlock()

	ns.connected.Set(true)
	log.Info().Str("remote", conn.RemoteAddr().String()).Str("session", ns.SessionId()).Msg("connected")

	go ns.readLoop(conn)
	return nil
}

func (ns *NetworkSupport) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("connection lost")
			}

			ns.mu.Lock()
			current := ns.conn == conn
			if current {
				ns.conn = nil
			}
			ns.mu.Unlock()

			// a reconnect may already have replaced this conn
			if current {
				ns.connected.Set(false)
			}
			return
		}

		ns.incoming.Set(string(payload))
	}
}

// Fire-and-forget; write failures are only logged.
func (ns *NetworkSupport) Send(msg string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if ns.conn == nil {
		log.Error().Err(cerr.ErrNotConnected()).Str("msg", msg).Msg("failed to send")
		return
	}

	if err := ns.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		log.Error().Err(err).Str("msg", msg).Msg("failed to send")
	}
}

func (ns *NetworkSupport) Close() error {
	ns.mu.Lock()
	conn := ns.conn
	ns.conn = nil
	ns.mu.Unlock()

	if conn == nil {
		return nil
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	ns.connected.Set(false)
	return conn.Close()
}
