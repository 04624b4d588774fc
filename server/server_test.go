package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/flip7/eventlog"
	"github.com/minaorangina/flip7/game"
	utils "github.com/minaorangina/flip7/internal"
	"github.com/minaorangina/flip7/match"
	"github.com/minaorangina/flip7/players"
	"github.com/minaorangina/flip7/protocol"
	"github.com/minaorangina/flip7/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*GameServer, *store.InMemoryGameStore) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := eventlog.NewHub()
	go hub.Listen(ctx)

	str := store.NewInMemoryGameStore()
	s := NewServer(Opts{
		Store:    str,
		Hub:      hub,
		Defaults: match.Opts{BestOf: 1, Timeout: time.Second},
		Context:  ctx,
	})
	return s, str
}

func newMatchRequest(t *testing.T, req NewMatchReq) *http.Request {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/new", bytes.NewReader(data))
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct status, got %d, want %d", got, want)
	}
}

func TestServerPing(t *testing.T) {
	server, _ := newTestServer(t)
	response := httptest.NewRecorder()
	server.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/", nil))

	assertStatus(t, response.Code, http.StatusOK)
	assert.Contains(t, response.Body.String(), "hit17")
}

func TestServerPOSTNewMatch(t *testing.T) {
	t.Run("starts a match and records its games", func(t *testing.T) {
		server, str := newTestServer(t)
		seed := int64(4)

		response := httptest.NewRecorder()
		server.ServeHTTP(response, newMatchRequest(t, NewMatchReq{Bots: []string{"hit17:Elton", "scaredy:Bernie"}, Seed: &seed}))

		assertStatus(t, response.Code, http.StatusCreated)
		var res NewMatchRes
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &res))
		utils.AssertNotEmptyString(t, res.MatchID)
		utils.AssertEqual(t, res.FirstGameID, res.MatchID+"-1")

		assert.Eventually(t, func() bool {
			_, ok := str.FindResult(res.FirstGameID)
			return ok
		}, 5*time.Second, 10*time.Millisecond)

		response = httptest.NewRecorder()
		server.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/game/"+res.FirstGameID, nil))
		assertStatus(t, response.Code, http.StatusOK)

		var found GetGameRes
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &found))
		utils.AssertEqual(t, found.Status, "finished")
		require.NotNil(t, found.Result)
		assert.Contains(t, []string{"Elton", "Bernie"}, found.Result.Winner)
	})

	t.Run("returns 400 if the body is missing", func(t *testing.T) {
		server, _ := newTestServer(t)
		response := httptest.NewRecorder()
		server.ServeHTTP(response, httptest.NewRequest(http.MethodPost, "/new", strings.NewReader("")))
		assertStatus(t, response.Code, http.StatusBadRequest)
	})

	t.Run("returns 400 for unknown bots", func(t *testing.T) {
		server, _ := newTestServer(t)
		response := httptest.NewRecorder()
		server.ServeHTTP(response, newMatchRequest(t, NewMatchReq{Bots: []string{"psychic"}}))
		assertStatus(t, response.Code, http.StatusBadRequest)
	})

	t.Run("returns 400 for an even best of", func(t *testing.T) {
		server, _ := newTestServer(t)
		response := httptest.NewRecorder()
		server.ServeHTTP(response, newMatchRequest(t, NewMatchReq{Bots: []string{"hit17"}, BestOf: 2}))
		assertStatus(t, response.Code, http.StatusBadRequest)
	})

	t.Run("Does not match on GET /new", func(t *testing.T) {
		server, _ := newTestServer(t)
		response := httptest.NewRecorder()
		server.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/new", nil))
		assertStatus(t, response.Code, http.StatusNotFound)
	})
}

func TestServerGETGames(t *testing.T) {
	server, str := newTestServer(t)
	g, err := game.NewGame(game.GameOpts{ID: "listed", Bots: []players.Bot{players.NewHit17Bot("Harry")}})
	require.NoError(t, err)
	require.NoError(t, str.AddGame(g))

	response := httptest.NewRecorder()
	server.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/games", nil))
	assertStatus(t, response.Code, http.StatusOK)

	var states []game.State
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &states))
	require.Len(t, states, 1)
	utils.AssertEqual(t, states[0].GameID, "listed")

	t.Run("unknown game", func(t *testing.T) {
		response := httptest.NewRecorder()
		server.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/game/nope", nil))
		assertStatus(t, response.Code, http.StatusNotFound)
	})

	t.Run("game in progress", func(t *testing.T) {
		response := httptest.NewRecorder()
		server.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/game/listed", nil))
		assertStatus(t, response.Code, http.StatusOK)
		assert.Contains(t, response.Body.String(), `"status":"in progress"`)
	})
}

func TestServerWS(t *testing.T) {
	t.Run("rejects unknown games", func(t *testing.T) {
		server, _ := newTestServer(t)
		response := httptest.NewRecorder()
		server.ServeHTTP(response, httptest.NewRequest(http.MethodGet, "/ws?game_id=nope", nil))
		assertStatus(t, response.Code, http.StatusNotFound)
	})

	t.Run("streams events to spectators", func(t *testing.T) {
		server, _ := newTestServer(t)
		ts := httptest.NewServer(server)
		defer ts.Close()

		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		// the subscription is registered before the handshake completes
		res, err := http.Post(ts.URL+"/new", "application/json", strings.NewReader(`{"bots":["hit17"]}`))
		require.NoError(t, err)
		res.Body.Close()
		assertStatus(t, res.StatusCode, http.StatusCreated)

		utils.Within(t, 5*time.Second, func() {
			var e protocol.Event
			err := conn.ReadJSON(&e)
			assert.NoError(t, err)
			assert.Equal(t, protocol.GameStarted, e.Type)
		})
	})
}
