package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	mc "github.com/saeidalz13/treasurehunt-backend/models/connection"
)

func NewRouter(rp *RequestProcessor) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get(mc.PathTreasureHunt, rp.ServeHTTP)
	r.Get(mc.PathPeers, rp.handlePeers)
	r.Get(mc.PathHealth, rp.handleHealth)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeInvalidRequest(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeInvalidRequest(w, http.StatusMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
	})

	return r
}

// Logs before handing over; the websocket route hijacks the
// connection so the response is not wrapped.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Str("request_id", chimw.GetReqID(r.Context())).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeInvalidRequest(w http.ResponseWriter, status int, details string) {
	resp := mc.NewMessage[mc.NoPayload](mc.CodeInvalidRequest)
	resp.AddError(details, http.StatusText(status))
	writeJSON(w, status, resp)
}

// Lists games waiting for player 2 so clients can pick a peer.
func (rp *RequestProcessor) handlePeers(w http.ResponseWriter, r *http.Request) {
	openGames := rp.gameManager.OpenGames()

	peers := make([]mc.RespPeer, 0, len(openGames))
	for _, game := range openGames {
		playerOne := game.PlayerOne()
		if playerOne == nil {
			continue
		}
		peers = append(peers, mc.RespPeer{GameUuid: game.Uuid(), DisplayName: playerOne.DisplayName()})
	}

	resp := mc.NewMessage[[]mc.RespPeer](mc.CodePeers)
	resp.AddPayload(peers)
	writeJSON(w, http.StatusOK, resp)
}

func (rp *RequestProcessor) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := mc.NewMessage[mc.RespHealth](mc.CodeHealth)
	resp.AddPayload(mc.RespHealth{Ok: true, Sessions: rp.sessionManager.SessionCount()})
	writeJSON(w, http.StatusOK, resp)
}
