package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/flip7/eventlog"
	"github.com/minaorangina/flip7/game"
	"github.com/minaorangina/flip7/match"
	"github.com/minaorangina/flip7/players"
	"github.com/minaorangina/flip7/store"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NewMatchReq struct {
	Bots   []string `json:"bots"`
	BestOf int      `json:"bestOf"`
	Seed   *int64   `json:"seed,omitempty"`
}

type NewMatchRes struct {
	MatchID     string `json:"matchID"`
	FirstGameID string `json:"firstGameID"`
}

type GetGameRes struct {
	Status string       `json:"status"`
	State  game.State   `json:"state"`
	Result *game.Result `json:"result,omitempty"`
}

type Opts struct {
	Store store.GameStore
	Hub   *eventlog.Hub
	// Defaults supplies timeout, target score and the like for new matches
	Defaults match.Opts
	Logger   logrus.FieldLogger
	Context  context.Context
}

// GameServer lets spectators start bot matches and watch them
type GameServer struct {
	store    store.GameStore
	hub      *eventlog.Hub
	defaults match.Opts
	logger   logrus.FieldLogger
	ctx      context.Context
	http.Server
}

func NewID() string {
	return uuid.NewV4().String()
}

func unknownGameIDMsg(unknownID string) string {
	return fmt.Sprintf("unknown game ID '%s'", unknownID)
}

// NewServer creates a new GameServer
func NewServer(opts Opts) *GameServer {
	s := &GameServer{
		store:    opts.Store,
		hub:      opts.Hub,
		defaults: opts.Defaults,
		logger:   opts.Logger,
		ctx:      opts.Context,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}

	router := http.NewServeMux()

	router.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Add("Content-Type", "text/plain")
		fmt.Fprintf(w, "flip7 spectator server\nbots: %s\n", strings.Join(players.Kinds(), ", "))
	}))
	router.Handle("/new", http.HandlerFunc(s.HandleNewMatch))
	router.Handle("/games", http.HandlerFunc(s.HandleListGames))
	router.Handle("/game/", http.HandlerFunc(s.HandleFindGame))
	router.Handle("/ws", http.HandlerFunc(s.HandleWS))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	s.Handler = handlers.LoggingHandler(logWriter(s.logger), cors(router))

	return s
}

// logWriter routes access logs through logrus
func logWriter(logger logrus.FieldLogger) io.Writer {
	if l, ok := logger.(*logrus.Logger); ok {
		return l.WriterLevel(logrus.DebugLevel)
	}
	if e, ok := logger.(*logrus.Entry); ok {
		return e.WriterLevel(logrus.DebugLevel)
	}
	return os.Stderr
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.Handler.ServeHTTP(w, r)
}

// HandleNewMatch starts a match between built-in bots in the background
func (g *GameServer) HandleNewMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data NewMatchReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		g.writeParseError(err, w)
		return
	}

	if len(data.Bots) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing bots"))
		return
	}
	for _, spec := range data.Bots {
		kind, _ := players.ParseBotSpec(spec)
		if _, err := players.NewBot(kind, "", 0); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}
	}

	opts := g.defaults
	opts.ID = NewID()
	opts.Bots = data.Bots
	opts.Store = g.store
	if g.hub != nil {
		opts.Sink = g.hub
	}
	opts.Logger = g.logger
	if data.BestOf != 0 {
		opts.BestOf = data.BestOf
	}
	if opts.BestOf == 0 {
		opts.BestOf = 1
	}
	if data.Seed != nil {
		opts.Seed = data.Seed
	}
	if opts.BestOf%2 == 0 || opts.BestOf < 0 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(match.ErrBestOf.Error()))
		return
	}

	go func() {
		if _, err := match.Play(g.ctx, opts); err != nil {
			g.logger.WithError(err).WithField("match_id", opts.ID).Error("match failed")
		}
	}()

	bytes, err := json.Marshal(NewMatchRes{MatchID: opts.ID, FirstGameID: opts.ID + "-1"})
	if err != nil {
		g.logger.WithError(err).Error("could not encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(bytes)
}

func (g *GameServer) HandleListGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	g.writeJSON(w, g.store.Games())
}

func (g *GameServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	gameID := strings.TrimPrefix(r.URL.Path, "/game/")
	if gameID == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("missing game ID"))
		return
	}

	found := g.store.FindGame(gameID)
	if found == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(unknownGameIDMsg(gameID)))
		return
	}

	response := GetGameRes{Status: "in progress", State: found.State()}
	if result, ok := g.store.FindResult(gameID); ok {
		response.Status = "finished"
		response.Result = &result
	}
	g.writeJSON(w, response)
}

// HandleWS streams live events for one game, or for every game when no
// game_id is given
func (g *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	if g.hub == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	gameID := r.URL.Query().Get("game_id")
	if gameID != "" && g.store.FindGame(gameID) == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(unknownGameIDMsg(gameID)))
		return
	}

	events, stop := g.hub.Subscribe(gameID)
	defer stop()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.WithError(err).Warn("could not upgrade to websocket")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				g.logger.WithError(err).Debug("spectator went away")
				return
			}
		case <-closed:
			return
		}
	}
}

func (g *GameServer) writeJSON(w http.ResponseWriter, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		g.logger.WithError(err).Error("could not encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.Write(bytes)
}

func (g *GameServer) writeParseError(err error, w http.ResponseWriter) {
	w.Header().Add("Content-Type", "text/plain")
	if err == io.EOF {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Missing body"))
		return
	}
	g.logger.WithError(err).Debug("bad request body")
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte("Malformed body"))
}
