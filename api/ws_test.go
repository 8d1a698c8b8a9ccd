package api_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/saeidalz13/treasurehunt-backend/client"
	cerr "github.com/saeidalz13/treasurehunt-backend/internal/error"
	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
	mt "github.com/saeidalz13/treasurehunt-backend/models/treasure"
)

// Picks two treasure tiles and one empty tile of the game.
func boardLayout(t *testing.T, gameUuid string) (hits []mt.Coordinates, miss mt.Coordinates) {
	t.Helper()
	game, err := testGameManager.GetGame(gameUuid)
	if err != nil {
		t.Fatal(err)
	}

	board := game.Board()
	missFound := false
	for r := 0; r < board.Size(); r++ {
		for c := 0; c < board.Size(); c++ {
			switch {
			case board.HasTreasure(r, c):
				hits = append(hits, mt.NewCoordinates(r, c))
			case !missFound:
				miss = mt.NewCoordinates(r, c)
				missFound = true
			}
		}
	}

	if len(hits) != testTreasureCount || !missFound {
		t.Fatalf("unexpected board layout, hits: %v", hits)
	}
	return hits, miss
}

func TestFullGame(t *testing.T) {
	host := newNetworkSupport(t, "alice")
	hostBoard := client.NewBoard(host)
	hostIn := listen(host, hostBoard.HandleIncoming)

	ctx, cancel := context.WithTimeout(context.Background(), testReadTimeout)
	defer cancel()

	if err := host.Host(ctx); err != nil {
		t.Fatal(err)
	}
	hostIn.expect(t, mc.MsgSessionStart)

	if host.SessionId() == "" {
		t.Fatal("expected host session id")
	}
	if !hostBoard.TurnState().IsPlayerOne {
		t.Fatal("expected host to be player 1")
	}

	join := newNetworkSupport(t, "bob")
	joinIn := listen(join)
	peer := findPeer(t, join, "alice")

	if err := join.ContactPeer(ctx, peer, client.Request{Details: "table 4"}); err != nil {
		t.Fatal(err)
	}

	joinIn.expect(t, mc.MsgPlayerTwoStart)
	joinIn.expect(t, mc.TurnStateMessage(true))
	hostIn.expect(t, "bob wants to play: table 4")
	hostIn.expect(t, mc.TurnStateMessage(true))

	hits, miss := boardLayout(t, peer.GameUuid)
	missLoc := mt.CellLocation(miss.Row, miss.Col)
	firstLoc := mt.CellLocation(hits[0].Row, hits[0].Col)
	secondLoc := mt.CellLocation(hits[1].Row, hits[1].Col)

	t.Run("player 2 guessing out of turn", func(t *testing.T) {
		join.Send(missLoc)
		joinIn.expectPrefix(t, "Error: ")
	})

	t.Run("player 1 misses", func(t *testing.T) {
		if err := hostBoard.Tap(miss.Row, miss.Col); err != nil {
			t.Fatal(err)
		}
		hostIn.expect(t, "Nothing at "+missLoc)
		joinIn.expect(t, "Opponent dug "+missLoc)
		hostIn.expect(t, mc.TurnStateMessage(false))
		joinIn.expect(t, mc.TurnStateMessage(false))

		tile, err := hostBoard.Tile(miss.Row, miss.Col)
		if err != nil {
			t.Fatal(err)
		}
		if tile.State != mt.TileStateMiss {
			t.Fatalf("expected tile state: %v\tgot: %v", mt.TileStateMiss, tile.State)
		}
		if hostBoard.TurnState().IsLocalPlayerTurn {
			t.Fatal("expected turn to pass to player 2")
		}
		if err := hostBoard.Tap(0, 0); err == nil {
			t.Fatal("expected tap to be rejected off turn")
		}
	})

	t.Run("player 2 finds a treasure", func(t *testing.T) {
		join.Send(firstLoc)
		joinIn.expect(t, "Found treasure at "+firstLoc)
		hostIn.expect(t, "Opponent found treasure at "+firstLoc)
		joinIn.expect(t, mc.TurnStateMessage(true))
		hostIn.expect(t, mc.TurnStateMessage(true))

		if !hostBoard.TurnState().IsLocalPlayerTurn {
			t.Fatal("expected turn back at player 1")
		}
	})

	t.Run("player 1 taps the tile player 2 dug", func(t *testing.T) {
		expectedErr := cerr.ErrTileAlreadyRevealed(hits[0].Row, hits[0].Col).Error()
		if err := hostBoard.Tap(hits[0].Row, hits[0].Col); err == nil || err.Error() != expectedErr {
			t.Fatalf("expected error: %s\tgot: %v", expectedErr, err)
		}
		if !hostBoard.TurnState().IsLocalPlayerTurn {
			t.Fatal("expected a refused tap to keep the turn")
		}
	})

	t.Run("player 1 sends an invalid location", func(t *testing.T) {
		host.Send("somewhere")
		hostIn.expectPrefix(t, "Error: ")
	})

	t.Run("last treasure ends the game", func(t *testing.T) {
		if err := hostBoard.Tap(hits[1].Row, hits[1].Col); err != nil {
			t.Fatal(err)
		}
		hostIn.expect(t, "Found treasure at "+secondLoc)
		joinIn.expect(t, "Opponent found treasure at "+secondLoc)
		hostIn.expect(t, mc.GameOverMessage(1, 1))
		joinIn.expect(t, mc.GameOverMessage(1, 1))

		if hostBoard.Score() != 1 {
			t.Fatalf("expected score: %d\tgot: %d", 1, hostBoard.Score())
		}
		if !hostBoard.IsGameOver() {
			t.Fatal("expected game over on the local board")
		}
	})
}

func TestJoinUnknownGame(t *testing.T) {
	query := url.Values{}
	query.Set(mc.URLQueryGameUuidKeyword, "nope00")
	query.Set(mc.URLQueryDisplayNameKeyword, "mallory")

	conn, _ := dialRaw(t, query)
	if got := readText(t, conn); !strings.HasPrefix(got, "Error: ") {
		t.Fatalf("expected an error message\tgot: %q", got)
	}

	_ = conn.SetReadDeadline(time.Now().Add(testReadTimeout))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal closure\tgot: %v", err)
	}
}

func TestJoinFullGame(t *testing.T) {
	_, hostIn := hostGame(t, "dave")
	peer := findPeer(t, newNetworkSupport(t, "erin"), "dave")
	joinRaw(t, hostIn, peer, "erin")

	query := url.Values{}
	query.Set(mc.URLQueryGameUuidKeyword, peer.GameUuid)
	query.Set(mc.URLQueryDisplayNameKeyword, "frank")

	conn, _ := dialRaw(t, query)
	if got := readText(t, conn); got != mc.ErrorMessage(cerr.ErrGameIsFull(peer.GameUuid)) {
		t.Fatalf("expected game is full error\tgot: %q", got)
	}
}

func TestJoinGameWithoutHost(t *testing.T) {
	board, err := mt.NewBoardWithTreasures(mt.GridSize, []mt.Coordinates{{Row: 0, Col: 0}})
	if err != nil {
		t.Fatal(err)
	}
	game := testGameManager.AddGame(board)
	defer testGameManager.TerminateGame(game.Uuid())

	query := url.Values{}
	query.Set(mc.URLQueryGameUuidKeyword, game.Uuid())
	query.Set(mc.URLQueryDisplayNameKeyword, "sam")

	conn, _ := dialRaw(t, query)
	if got := readText(t, conn); got != mc.ErrorMessage(cerr.ErrGameNotStarted(game.Uuid())) {
		t.Fatalf("expected game not started error\tgot: %q", got)
	}
	if game.PlayerTwo() != nil {
		t.Fatal("expected no player to be seated in a game without host")
	}
}

func TestPeersListsOnlyOpenGames(t *testing.T) {
	_, hostIn := hostGame(t, "grace")
	browser := newNetworkSupport(t, "heidi")
	peer := findPeer(t, browser, "grace")

	joinRaw(t, hostIn, peer, "heidi")

	ctx, cancel := context.WithTimeout(context.Background(), testReadTimeout)
	defer cancel()
	peers, err := browser.Browse(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range peers {
		if p.GameUuid == peer.GameUuid {
			t.Fatal("expected a started game to be hidden from peers")
		}
	}
}

func TestOpponentLeaves(t *testing.T) {
	_, hostIn := hostGame(t, "ivan")
	peer := findPeer(t, newNetworkSupport(t, "judy"), "ivan")
	conn, _ := joinRaw(t, hostIn, peer, "judy")

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	hostIn.expect(t, mc.MsgOtherPlayerLeft)
}

func TestReconnectWithinGracePeriod(t *testing.T) {
	host, hostIn := hostGame(t, "kim")
	peer := findPeer(t, newNetworkSupport(t, "leo"), "kim")
	conn, sessionId := joinRaw(t, hostIn, peer, "leo")

	// no close frame: the server sees an abnormal closure
	_ = conn.UnderlyingConn().Close()
	hostIn.expect(t, mc.MsgOtherPlayerGrace)

	query := url.Values{}
	query.Set(mc.URLQuerySessionIDKeyword, sessionId)
	resumed, _ := dialRaw(t, query)
	hostIn.expect(t, mc.MsgOtherPlayerReconnected)

	_, miss := boardLayout(t, peer.GameUuid)
	missLoc := mt.CellLocation(miss.Row, miss.Col)

	host.Send(missLoc)
	expectText(t, resumed, "Opponent dug "+missLoc)
	expectText(t, resumed, mc.TurnStateMessage(false))
}

func TestGracePeriodExpires(t *testing.T) {
	_, hostIn := hostGame(t, "mia")
	peer := findPeer(t, newNetworkSupport(t, "ned"), "mia")
	conn, _ := joinRaw(t, hostIn, peer, "ned")

	start := time.Now()
	_ = conn.UnderlyingConn().Close()
	hostIn.expect(t, mc.MsgOtherPlayerGrace)
	hostIn.expect(t, mc.MsgOtherPlayerLeft)

	if elapsed := time.Since(start); elapsed < testGracePeriod {
		t.Fatalf("expected to wait the grace period (%s)\twaited: %s", testGracePeriod, elapsed)
	}
}

func TestReconnectUnknownSession(t *testing.T) {
	ns := newNetworkSupport(t, "oscar")
	ctx, cancel := context.WithTimeout(context.Background(), testReadTimeout)
	defer cancel()
	if err := ns.Reconnect(ctx); err == nil {
		t.Fatal("expected reconnect without a session to fail")
	}

	query := url.Values{}
	query.Set(mc.URLQuerySessionIDKeyword, "unknown-session")
	conn, _ := dialRaw(t, query)
	if got := readText(t, conn); !strings.HasPrefix(got, "Error: ") {
		t.Fatalf("expected an error message\tgot: %q", got)
	}
}

func TestContactPeerUnreachable(t *testing.T) {
	ns, err := client.NewNetworkSupport("http://127.0.0.1:1", "pat")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), testReadTimeout)
	defer cancel()
	if err := ns.ContactPeer(ctx, client.Peer{GameUuid: "abc123"}, client.Request{}); err == nil {
		t.Fatal("expected contacting an unreachable server to fail")
	}
	if ns.Connected() {
		t.Fatal("expected to stay disconnected")
	}
}

// Identical rejections would be collapsed by the incoming
// observable, so the board must refuse them before sending.
func TestRepeatedRejectedTap(t *testing.T) {
	host := newNetworkSupport(t, "quinn")
	hostBoard := client.NewBoard(host)
	hostIn := listen(host, hostBoard.HandleIncoming)

	ctx, cancel := context.WithTimeout(context.Background(), testReadTimeout)
	defer cancel()
	if err := host.Host(ctx); err != nil {
		t.Fatal(err)
	}
	hostIn.expect(t, mc.MsgSessionStart)

	for i := 0; i < 2; i++ {
		if err := hostBoard.Tap(0, 0); err == nil || err.Error() != cerr.ErrWaitingForOpponent().Error() {
			t.Fatalf("tap %d before the join: expected waiting error\tgot: %v", i+1, err)
		}
	}

	peer := findPeer(t, newNetworkSupport(t, "rita"), "quinn")
	conn, _ := joinRaw(t, hostIn, peer, "rita")

	hits, miss := boardLayout(t, peer.GameUuid)
	missLoc := mt.CellLocation(miss.Row, miss.Col)
	hitLoc := mt.CellLocation(hits[0].Row, hits[0].Col)

	if err := hostBoard.Tap(miss.Row, miss.Col); err != nil {
		t.Fatalf("expected the board to accept a tap once the game started: %v", err)
	}
	hostIn.expect(t, "Nothing at "+missLoc)
	hostIn.expect(t, mc.TurnStateMessage(false))
	expectText(t, conn, "Opponent dug "+missLoc)
	expectText(t, conn, mc.TurnStateMessage(false))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(hitLoc)); err != nil {
		t.Fatal(err)
	}
	expectText(t, conn, "Found treasure at "+hitLoc)
	expectText(t, conn, mc.TurnStateMessage(true))
	hostIn.expect(t, "Opponent found treasure at "+hitLoc)
	hostIn.expect(t, mc.TurnStateMessage(true))

	for i := 0; i < 2; i++ {
		if err := hostBoard.Tap(hits[0].Row, hits[0].Col); err == nil {
			t.Fatalf("tap %d on the opponent's tile: expected a local refusal", i+1)
		}
	}

	if err := hostBoard.Tap(hits[1].Row, hits[1].Col); err != nil {
		t.Fatalf("expected the board to stay usable: %v", err)
	}
	hostIn.expect(t, "Found treasure at "+mt.CellLocation(hits[1].Row, hits[1].Col))
}
