package api

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/saeidalz13/treasurehunt-backend/db/sqlc"
	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
	mt "github.com/saeidalz13/treasurehunt-backend/models/treasure"
)

func newTestProcessor(t *testing.T) (*RequestProcessor, *mt.TreasureGameManager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	gm := mt.NewTreasureGameManager(mt.DefaultTreasureCount)
	rp := NewRequestProcessor(mc.NewTreasureSessionManager(), gm, sqlc.New(db))
	return rp, gm, mock
}

func TestNewRequest(t *testing.T) {
	req := newRequest("", strings.Repeat("a", maxDisplayNameLen+10), "hi")
	if len(req.displayName) != maxDisplayNameLen {
		t.Fatalf("expected name length: %d\tgot: %d", maxDisplayNameLen, len(req.displayName))
	}
	if req.isJoin() {
		t.Fatal("expected a request without game uuid to host")
	}

	if !newRequest("abc123", "bob", "").isJoin() {
		t.Fatal("expected a request with game uuid to join")
	}

	wide := newRequest("", strings.Repeat("é", maxDisplayNameLen+5), "")
	if !utf8.ValidString(wide.displayName) {
		t.Fatalf("truncation split a character: %q", wide.displayName)
	}
	if n := utf8.RuneCountInString(wide.displayName); n != maxDisplayNameLen {
		t.Fatalf("expected name runes: %d\tgot: %d", maxDisplayNameLen, n)
	}
}

func TestServerInet(t *testing.T) {
	rp, _, _ := newTestProcessor(t)

	inet := rp.serverInet()
	if !inet.Valid {
		t.Fatal("expected a valid inet for analytics")
	}
	if inet.IPNet.IP.To4() == nil {
		t.Fatalf("expected an ipv4 address\tgot: %s", inet.IPNet.IP)
	}
	if ones, bits := inet.IPNet.Mask.Size(); ones != 32 || bits != 32 {
		t.Fatalf("expected a /32 mask\tgot: /%d of %d", ones, bits)
	}
}

func TestHandleGuessUpdatesAnalytics(t *testing.T) {
	rp, gm, mock := newTestProcessor(t)

	board, err := mt.NewBoardWithTreasures(mt.GridSize, []mt.Coordinates{{Row: 2, Col: 3}, {Row: 9, Col: 9}})
	if err != nil {
		t.Fatal(err)
	}
	game := gm.AddGame(board)
	p1 := game.CreatePlayerOne("s1", "alice")
	p2, err := game.CreatePlayerTwo("s2", "bob")
	if err != nil {
		t.Fatal(err)
	}

	guessesQuery := `INSERT INTO game_server_analytics \(server_ip, guesses_made\)`
	treasuresQuery := `INSERT INTO game_server_analytics \(server_ip, treasures_found\)`

	tests := []struct {
		name        string
		player      *mt.Player
		payload     string
		expectedErr bool
		found       bool
		expect      func()
	}{
		{
			name:    "hit bumps guesses and treasures",
			player:  p1,
			payload: "2,3",
			found:   true,
			expect: func() {
				mock.ExpectExec(guessesQuery).WithArgs(sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(treasuresQuery).WithArgs(sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "miss bumps guesses only",
			player:  p2,
			payload: "0,0",
			expect: func() {
				mock.ExpectExec(guessesQuery).WithArgs(sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:        "invalid location",
			player:      p1,
			payload:     "2;3",
			expectedErr: true,
			expect:      func() {},
		},
		{
			name:        "not player's turn",
			player:      p2,
			payload:     "1,1",
			expectedErr: true,
			expect:      func() {},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.expect()

			outcome, err := rp.handleGuess(game, test.player, test.payload)
			if test.expectedErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if outcome.Found != test.found {
				t.Fatalf("expected found: %t\tgot: %t", test.found, outcome.Found)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestAnalyticsFailureIsNotFatal(t *testing.T) {
	rp, _, mock := newTestProcessor(t)
	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(sqlmock.ErrCancelled)

	// logged and swallowed
	rp.analytics(rp.dbManager.Analytics.IncrementGamesCreatedCount)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestServerOptions(t *testing.T) {
	rp := NewRequestProcessor(mc.NewTreasureSessionManager(), mt.NewTreasureGameManager(0), nil)

	server := NewServer(rp, WithPort(9090), WithStage(StageProd))
	if server.Addr() != "0.0.0.0:9090" {
		t.Fatalf("unexpected addr: %s", server.Addr())
	}
	if rp.upgrader.CheckOrigin != nil {
		t.Fatal("expected the default origin check in prod")
	}

	NewServer(rp, WithStage(StageDev))
	if rp.upgrader.CheckOrigin == nil {
		t.Fatal("expected all origins to be allowed in dev")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected an invalid stage to panic")
		}
	}()
	NewServer(rp, WithStage("staging"))
}
