/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Blind Test Host
//
// A host runs a music quiz from a shared screen: songs are queued up with a
// YouTube link and a hidden answer, played one at a time through an embedded
// player, revealed once someone guesses, and players' scores are kept on a
// leaderboard until the host ends the game and shows the podium.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - Every event for a game runs on that game's hub goroutine
// - The page that reports widget_ready becomes the player widget
// - Play commands sent before the widget is ready are replayed once it is
// - Songs and players persist per game ID and survive hub reaping
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - QR code for a revealed song's YouTube link, backed by go-qrcode

package main

import (
	"crypto/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/ayoublk/blindtest/catalog"
	"github.com/ayoublk/blindtest/games"
	"github.com/ayoublk/blindtest/store"
)

const (
	gameIDLength = 8
	sendBuffer   = 64
	qrSize       = 320
)

// Messages coming from clients
type ClientMessage struct {
	Type   string `json:"type"`
	ID     int    `json:"id,omitempty"`     // song or player ID
	Title  string `json:"title,omitempty"`  // add_song / edit_save
	Answer string `json:"answer,omitempty"` // add_song / edit_save
	URL    string `json:"url,omitempty"`    // add_song / edit_save
	Name   string `json:"name,omitempty"`   // add_player
	Delta  int    `json:"delta,omitempty"`  // score
}

// StateMessage is broadcast to every client after each event.
type StateMessage struct {
	Type   string `json:"type"` // "state"
	GameID string `json:"game_id"`
	games.Snapshot
}

// WidgetMessage drives the player embedded in the widget client's page.
type WidgetMessage struct {
	Type string `json:"type"` // "widget"
	Op   string `json:"op"`   // "load", "play" or "pause"
	Ref  string `json:"ref,omitempty"`
}

type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan any
	remote string
}

type command struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id   string
	game *games.BlindTest

	clients map[*Client]bool
	widget  *Client

	register chan *Client
	unreg    chan *Client
	commands chan command
	calls    chan func()
	quit     chan struct{}
	stopOnce sync.Once

	mu          sync.RWMutex
	createdAt   time.Time
	lastActive  time.Time
	clientCount int
}

func newHub(gameID string, game *games.BlindTest) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		game:       game,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan command),
		calls:      make(chan func()),
		quit:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.clientCount = len(h.clients)
	h.mu.Unlock()
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.touch()

			logf(cfg, "GAMES: Client %s (%s) joined %s", c.id, c.remote, h.id)

			h.sendTo(c, h.state())

		case c := <-h.unreg:
			h.removeClient(cfg, c)
			h.touch()

			h.broadcast(cfg)

		case cmd := <-h.commands:
			h.handle(cfg, cmd)
			h.touch()

			h.broadcast(cfg)

		case fn := <-h.calls:
			fn()

		case <-h.quit:
			for c := range h.clients {
				h.removeClient(cfg, c)
				_ = c.conn.Close()
			}
			h.touch()

			return
		}
	}
}

func (h *Hub) handle(cfg *Config, cmd command) {
	g := h.game
	msg := cmd.msg

	switch msg.Type {
	case "add_song":
		if err := g.AddSong(msg.Title, msg.Answer, msg.URL); err != nil {
			logf(cfg, "GAMES: %s rejected song from %s: %v", h.id, cmd.client.id, err)
		}
	case "delete_song":
		g.DeleteSong(msg.ID)
	case "toggle_reveal":
		g.ToggleRevealed(msg.ID)
	case "toggle_play":
		g.TogglePlay(msg.ID)
	case "edit_start":
		g.BeginEdit(msg.ID)
	case "edit_save":
		if g.SetDraft(catalog.Draft{Title: msg.Title, Answer: msg.Answer, MediaSource: msg.URL}) {
			_ = g.SaveEdit()
		}
	case "edit_cancel":
		g.CancelEdit()
	case "add_player":
		if err := g.AddPlayer(msg.Name); err != nil {
			logf(cfg, "GAMES: %s rejected player from %s: %v", h.id, cmd.client.id, err)
		}
	case "name_input":
		g.NameInput()
	case "remove_player":
		g.RemovePlayer(msg.ID)
	case "score":
		g.AdjustScore(msg.ID, msg.Delta)
	case "end_game":
		podium := g.EndGame()
		logf(cfg, "GAMES: %s ended with %d players", h.id, len(podium))
	case "close_summary":
		g.CloseSummary()
	case "widget_ready":
		// Evicted clients have a closed send channel.
		if !h.clients[cmd.client] || h.widget == cmd.client {
			return
		}

		// A newer page takes over the widget role; the coordinator pauses
		// the old one.
		h.widget = cmd.client
		g.WidgetReady(remoteWidget{hub: h, client: cmd.client, cfg: cfg})

		logf(cfg, "GAMES: Client %s is the player widget for %s", cmd.client.id, h.id)
	default:
		// ignore unknown types
	}
}

// do runs fn on the hub goroutine and waits for it. It reports false once
// the hub has stopped.
func (h *Hub) do(fn func(g *games.BlindTest)) bool {
	done := make(chan struct{})

	select {
	case h.calls <- func() { fn(h.game); close(done) }:
	case <-h.quit:
		return false
	}

	<-done

	return true
}

func (h *Hub) state() StateMessage {
	return StateMessage{
		Type:     "state",
		GameID:   h.id,
		Snapshot: h.game.Snapshot(),
	}
}

func (h *Hub) removeClient(cfg *Config, c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	close(c.send)

	if h.widget == c {
		h.widget = nil
		h.game.WidgetGone()

		logf(cfg, "GAMES: Player widget for %s disconnected", h.id)
	}
}

// sendTo queues msg without blocking. It reports false when the client's
// buffer is full.
func (h *Hub) sendTo(c *Client, msg any) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) broadcast(cfg *Config) {
	state := h.state()

	for c := range h.clients {
		if !h.sendTo(c, state) {
			h.removeClient(cfg, c)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// remoteWidget forwards playback commands to the page that reported ready.
type remoteWidget struct {
	hub    *Hub
	client *Client
	cfg    *Config
}

func (w remoteWidget) emit(op, ref string) {
	if !w.hub.clients[w.client] {
		logf(w.cfg, "GAMES: Skipped %s command for departed widget %s", op, w.client.id)
		return
	}

	if !w.hub.sendTo(w.client, WidgetMessage{Type: "widget", Op: op, Ref: ref}) {
		logf(w.cfg, "GAMES: Dropped %s command for widget %s", op, w.client.id)
	}
}

func (w remoteWidget) Load(ref string) { w.emit("load", ref) }

func (w remoteWidget) Play() { w.emit("play", "") }

func (w remoteWidget) Pause() { w.emit("pause", "") }

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	newGame     func(gameID string) *games.BlindTest
	done        chan struct{}
}

func newGameManager(idleTimeout time.Duration, newGame func(string) *games.BlindTest) *GameManager {
	gm := &GameManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		newGame:     newGame,
		done:        make(chan struct{}),
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(cfg *Config, gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(gameID, gm.newGame(gameID))
	gm.hubs[gameID] = hub
	go hub.run(cfg)
	return hub
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, gameIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, gameIDLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reap stops hubs with no clients that have been idle since before cutoff.
// Their songs and players stay in storage.
func (gm *GameManager) reap(cutoff time.Time) []string {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	var reaped []string

	for id, hub := range gm.hubs {
		hub.mu.RLock()
		last, count := hub.lastActive, hub.clientCount
		hub.mu.RUnlock()

		if count == 0 && last.Before(cutoff) {
			delete(gm.hubs, id)
			hub.stop()
			reaped = append(reaped, id)
		}
	}

	return reaped
}

func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.reap(time.Now().Add(-gm.idleTimeout))
		case <-gm.done:
			return
		}
	}
}

func (gm *GameManager) shutdown() {
	close(gm.done)

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.stop()
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		hub := gm.getHub(cfg, gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade for %s: %v", gameID, err)
			return
		}

		// The server's write timeout must not apply to the hijacked conn.
		_ = conn.NetConn().SetDeadline(time.Time{})

		client := &Client{
			id:     uuid.NewString(),
			conn:   conn,
			send:   make(chan any, sendBuffer),
			remote: realIP(r),
		}

		select {
		case hub.register <- client:
		case <-hub.quit:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.quit:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.commands <- command{client: c, msg: msg}:
		case <-h.quit:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// serveSongQR renders a PNG QR code linking to a revealed song's video.
// Hidden songs are indistinguishable from missing ones.
func serveSongQR(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")

		songID, err := strconv.Atoi(ps.ByName("id"))
		if gameID == "" || err != nil {
			http.NotFound(w, r)
			return
		}

		var (
			song  catalog.Song
			found bool
		)

		ok := gm.getHub(cfg, gameID).do(func(g *games.BlindTest) {
			song, found = g.Catalog().Song(songID)
		})
		if !ok || !found || !song.Revealed {
			http.NotFound(w, r)
			return
		}

		png, err := qrcode.Encode(catalog.WatchURL(song.MediaRef), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		_, _ = w.Write(png)
	}
}

func getIndexHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/blindtest/index.html")
		if err != nil {
			errs <- err
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}

		page := strings.ReplaceAll(string(data), "{{PREFIX}}", cfg.prefix)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)
		cspGame(w)

		_, err = w.Write([]byte(page))
		if err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// newGameFactory builds the per-game state loader used by the manager.
func newGameFactory(cfg *Config, medium store.Medium) func(string) *games.BlindTest {
	logger := newLogger(cfg)

	opts := []games.Option{games.WithQueueSize(cfg.queueSize)}
	if cfg.demo {
		opts = append(opts, games.WithDemoSongs())
	}

	return func(gameID string) *games.BlindTest {
		return games.New(medium, gameID, logger.With("game", gameID), opts...)
	}
}

// registerBlindTest sets up routes so that:
//   - $path                     → redirects to new random game (8-char ID)
//   - $path/:gameid             → host page
//   - $path/:gameid/ws          → WebSocket for that game
//   - $path/:gameid/songs/:id/qr → PNG QR code for a revealed song
func registerBlindTest(cfg *Config, path string, mux *httprouter.Router, medium store.Medium, errs chan<- error) *GameManager {
	gm := newGameManager(cfg.sessionTimeout, newGameFactory(cfg, medium))

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg, errs))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/songs/:id/qr", serveSongQR(cfg, gm))

	return gm
}
