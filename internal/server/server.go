package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/greyhaven/greyhavenmud/server/internal/command"
	"github.com/greyhaven/greyhavenmud/server/internal/config"
	"github.com/greyhaven/greyhavenmud/server/internal/logger"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/store"
	"github.com/greyhaven/greyhavenmud/server/internal/world"
)

// Server owns the listener, the session map, and the message bus. It
// implements the dispatcher's GameServer interface. The session map is
// guarded by the world lock along with everything else.
type Server struct {
	world    *world.World
	cfg      *config.GameConfig
	store    *store.Store
	limiter  *RateLimiter
	dispatch *command.Dispatcher

	sessions map[string]*Client // lowercase username -> current connection
	upgrader websocket.Upgrader

	saves   chan *store.Record // snapshots queued for the save writer
	closing bool               // set under the world lock during shutdown
}

// NewServer wires the server to a loaded world and player store.
func NewServer(w *world.World, cfg *config.GameConfig, st *store.Store) *Server {
	s := &Server{
		world:    w,
		cfg:      cfg,
		store:    st,
		limiter:  NewRateLimiter(cfg.RateLimit),
		sessions: make(map[string]*Client),
		saves:    make(chan *store.Record, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.dispatch = command.NewDispatcher(w, cfg, s, rand.New(rand.NewSource(time.Now().UnixNano())))
	return s
}

// Run serves WebSocket sessions on addr and drives the tick loop until
// the context is cancelled, then saves everyone and shuts down.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server listening", "addr", addr)
		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		s.runTicker(ctx)
		return nil
	})
	g.Go(func() error {
		s.runSaver()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runSaver drains queued player snapshots to disk in FIFO order. It
// exits when shutdown closes the queue after the final flush.
func (s *Server) runSaver() {
	for rec := range s.saves {
		s.writeRecord(rec)
	}
}

func (s *Server) writeRecord(rec *store.Record) {
	if err := s.store.Write(rec); err != nil {
		logger.Error("Failed to save player", "player", rec.Username, "error", err)
	}
}

// shutdown snapshots every attached player under the lock, drops their
// connections, then flushes the save queue and closes it.
func (s *Server) shutdown() {
	s.world.Lock()
	s.closing = true
	players := s.world.AttachedPlayers()
	records := make([]*store.Record, 0, len(players))
	for _, p := range players {
		records = append(records, store.Snapshot(p))
	}
	for _, client := range s.sessions {
		client.SendFrame(protocol.ServerFrame{Type: protocol.FrameLogout})
		client.Close()
	}
	s.world.Unlock()

	for _, rec := range records {
		s.saves <- rec
	}
	close(s.saves)
	logger.Info("Server shut down, all players saved")
}

// getRealIP prefers the first X-Forwarded-For hop over the socket
// address.
func getRealIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warning("WebSocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	client := NewClient(conn)
	go s.handleConnection(client, getRealIP(r))
}

// handleConnection runs one connection from handshake to cleanup.
// Before authentication only register and login frames are accepted.
func (s *Server) handleConnection(client *Client, ip string) {
	defer client.Close()
	logger.Debug("Connection opened", "remote", client.RemoteAddr())

	var p *player.Player
	for p == nil {
		frame, err := client.ReadFrame()
		if err != nil {
			logger.Debug("Connection closed before auth", "remote", client.RemoteAddr())
			return
		}
		switch frame.Type {
		case protocol.FrameRegister:
			p = s.handleRegister(client, ip, frame.Data)
		case protocol.FrameLogin:
			p = s.handleLogin(client, ip, frame.Data)
		default:
			client.SendFrame(protocol.ServerFrame{Type: protocol.FrameError, Data: "you must log in first"})
		}
	}

	s.sessionLoop(client, p)
}

// sessionLoop reads command frames for an authenticated player until
// the connection drops, then runs disconnect housekeeping.
func (s *Server) sessionLoop(client *Client, p *player.Player) {
	for {
		frame, err := client.ReadFrame()
		if err != nil {
			break
		}
		if frame.Type != protocol.FrameCommand {
			client.SendFrame(protocol.ServerFrame{Type: protocol.FrameError, Data: "unexpected frame type"})
			continue
		}
		var req protocol.CommandRequest
		if err := unmarshalPayload(frame.Data, &req); err != nil {
			client.SendFrame(protocol.ServerFrame{Type: protocol.FrameError, Data: "malformed command frame"})
			continue
		}

		s.world.Lock()
		if s.sessions[strings.ToLower(p.Username)] == client {
			s.dispatch.Execute(p, req.Command)
		}
		s.world.Unlock()
	}

	s.cleanupSession(client, p)
}

// cleanupSession runs disconnect housekeeping, unless a displacement
// already rebound the username to a newer connection.
func (s *Server) cleanupSession(client *Client, p *player.Player) {
	s.world.Lock()
	defer s.world.Unlock()

	key := strings.ToLower(p.Username)
	if s.sessions[key] != client {
		// Displaced: the new connection owns the player now.
		return
	}

	s.dispatch.CancelTradeFor(p, "trade cancelled: your partner disconnected")
	s.world.RemoveFighterFromLocation(p.Location, p.Username)
	p.InPvPCombat = false

	s.Broadcast(p.Location, fmt.Sprintf("%s has left the world.", p.Username), protocol.MsgSystem, p.Username)
	s.SavePlayer(p)
	s.world.DetachPlayer(p.Username)
	delete(s.sessions, key)
	logger.Info("Player disconnected", "player", p.Username)
}

// clientFor returns the connection currently bound to a player.
func (s *Server) clientFor(p *player.Player) (*Client, bool) {
	client, ok := s.sessions[strings.ToLower(p.Username)]
	return client, ok
}

// Send delivers a typed message to one player.
func (s *Server) Send(p *player.Player, text string, t protocol.MessageType) {
	if client, ok := s.clientFor(p); ok {
		client.SendMessage(t, text)
	}
}

// Broadcast delivers a typed message to every player in a location,
// optionally excluding one username.
func (s *Server) Broadcast(locationID, text string, t protocol.MessageType, excludeUsername string) {
	for _, p := range s.world.PlayersIn(locationID) {
		if p.Username == excludeUsername {
			continue
		}
		s.Send(p, text, t)
	}
}

// SendToAll delivers a typed message to every attached player.
func (s *Server) SendToAll(text string, t protocol.MessageType) {
	for _, p := range s.world.AttachedPlayers() {
		s.Send(p, text, t)
	}
}

// SendFrame delivers a raw frame to one player.
func (s *Server) SendFrame(p *player.Player, frame protocol.ServerFrame) {
	if client, ok := s.clientFor(p); ok {
		client.SendFrame(frame)
	}
}

// playerView snapshots a player for the wire.
func playerView(p *player.Player) protocol.PlayerView {
	return protocol.PlayerView{
		Username:  p.Username,
		Level:     p.Level,
		XP:        p.XP,
		Health:    p.CurrentHealth,
		MaxHealth: p.MaxHealth(),
		Mana:      p.CurrentMana,
		MaxMana:   p.MaxMana(),
		Damage:    p.TotalDamage(),
		Defense:   p.TotalDefense(),
		Gold:      p.Gold,
		Location:  p.Location,
		IsGM:      p.IsGM,
	}
}

// roomView snapshots what a player can currently see in their room.
func (s *Server) roomView(p *player.Player) protocol.RoomView {
	view := protocol.RoomView{ID: p.Location, Exits: map[string]string{}}
	loc, ok := s.world.GetLocation(p.Location)
	if !ok {
		return view
	}
	view.Name = loc.Name
	view.Description = loc.Description
	for dir, destID := range loc.Exits {
		name := destID
		if dest, ok := s.world.GetLocation(destID); ok {
			name = dest.Name
		}
		view.Exits[dir] = name
	}
	for _, other := range s.world.PlayersIn(loc.ID) {
		if other.Username != p.Username {
			view.Players = append(view.Players, other.Username)
		}
	}
	for _, n := range loc.NPCs {
		view.NPCs = append(view.NPCs, n.Name)
	}
	for _, e := range s.world.VisibleEnemies(p, loc.ID) {
		view.Enemies = append(view.Enemies, e.Template.Name)
	}
	now := time.Now().UnixMilli()
	for _, g := range s.world.VisibleGroundItems(p, loc.ID, now) {
		view.Items = append(view.Items, g.Item.Name)
	}
	for _, dropped := range loc.Dropped {
		view.Items = append(view.Items, dropped.Item.Name)
	}
	return view
}

// SendGameState pushes the efficiency snapshot frame to one player.
func (s *Server) SendGameState(p *player.Player) {
	s.SendFrame(p, protocol.ServerFrame{
		Type: protocol.FrameGameState,
		Data: protocol.GameState{Player: playerView(p), Room: s.roomView(p)},
	})
}

// SavePlayer snapshots a player under the lock and hands the record to
// the save writer, so command handlers never block on disk. Failures
// are logged rather than propagated.
func (s *Server) SavePlayer(p *player.Player) {
	rec := store.Snapshot(p)
	if s.closing {
		s.writeRecord(rec)
		return
	}
	s.saves <- rec
}

// DeleteAccount removes the player's record and closes the session.
func (s *Server) DeleteAccount(p *player.Player) {
	if err := s.store.Delete(p.Username); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("Failed to delete player record", "player", p.Username, "error", err)
	}

	key := strings.ToLower(p.Username)
	if client, ok := s.sessions[key]; ok {
		client.SendFrame(protocol.ServerFrame{Type: protocol.FrameLogout})
		client.Close()
	}
	s.Broadcast(p.Location, fmt.Sprintf("%s has left the world.", p.Username), protocol.MsgSystem, p.Username)
	s.world.DetachPlayer(p.Username)
	delete(s.sessions, key)
	logger.Info("Account deleted", "player", p.Username)
}

// DisconnectPlayer saves and drops a player's connection (kick, ban).
// The read loop notices the closed socket and runs the normal cleanup.
func (s *Server) DisconnectPlayer(username, reason string) {
	p, ok := s.world.GetPlayer(username)
	if !ok {
		return
	}
	s.SavePlayer(p)
	if client, ok := s.clientFor(p); ok {
		client.SendFrame(protocol.ServerFrame{Type: protocol.FrameForceLogout})
		client.Close()
	}
	logger.Info("Player disconnected by server", "player", username, "reason", reason)
}

// Logout handles a voluntary quit: save, logout frame, close. Cleanup
// runs in the read loop.
func (s *Server) Logout(p *player.Player) {
	s.SavePlayer(p)
	if client, ok := s.clientFor(p); ok {
		client.SendFrame(protocol.ServerFrame{Type: protocol.FrameLogout})
		client.Close()
	}
}

// Schedule runs fn under the world lock after the delay. Callbacks must
// re-validate their preconditions; the world may have moved on.
func (s *Server) Schedule(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		s.world.Lock()
		defer s.world.Unlock()
		fn()
	})
}
