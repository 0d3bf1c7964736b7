package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/greyhaven/greyhavenmud/server/internal/logger"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/store"
)

// usernameRegex allows 3 to 12 ASCII letters.
var usernameRegex = regexp.MustCompile(`^[A-Za-z]{3,12}$`)

const minPasswordLength = 3

func unmarshalPayload(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(data, v)
}

func authError(client *Client, text string) {
	client.SendFrame(protocol.ServerFrame{Type: protocol.FrameError, Data: text})
}

// handleRegister creates an account and logs it straight in. Returns
// nil when registration failed and the connection should keep waiting.
func (s *Server) handleRegister(client *Client, ip string, data json.RawMessage) *player.Player {
	var req protocol.AuthRequest
	if err := unmarshalPayload(data, &req); err != nil {
		authError(client, "malformed register frame")
		return nil
	}

	if !usernameRegex.MatchString(req.Username) {
		authError(client, "username must be 3-12 letters")
		return nil
	}
	if len(req.Password) < minPasswordLength {
		authError(client, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return nil
	}
	if err := s.limiter.CheckRegistration(ip, time.Now()); err != nil {
		authError(client, err.Error())
		return nil
	}
	if s.store.Exists(req.Username) {
		authError(client, "that name is already taken")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		authError(client, "registration failed, try again")
		return nil
	}

	p := player.NewPlayer(req.Username, string(hash), s.cfg)
	if err := s.store.Save(p); err != nil {
		logger.Error("Failed to save new player", "player", req.Username, "error", err)
		authError(client, "registration failed, try again")
		return nil
	}
	s.limiter.RecordRegistration(ip, time.Now())
	logger.Info("Account registered", "player", p.Username, "ip", ip)

	s.bindSession(client, p)
	return p
}

// handleLogin authenticates an existing account, enforcing the login
// rate limit, the ban list, and the single-session rule.
func (s *Server) handleLogin(client *Client, ip string, data json.RawMessage) *player.Player {
	var req protocol.AuthRequest
	if err := unmarshalPayload(data, &req); err != nil {
		authError(client, "malformed login frame")
		return nil
	}

	if blocked, remaining := s.limiter.CheckLogin(ip, time.Now()); blocked {
		authError(client, fmt.Sprintf("too many failed logins; try again in %d seconds", int(remaining.Seconds())+1))
		return nil
	}

	loaded, err := s.store.Load(req.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error("Failed to load player", "player", req.Username, "error", err)
		}
		s.recordFailure(client, ip)
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(loaded.PasswordHash), []byte(req.Password)) != nil {
		s.recordFailure(client, ip)
		return nil
	}

	now := time.Now()
	if loaded.IsBanned(now) {
		remaining := time.Duration(loaded.BannedUntil-now.UnixMilli()) * time.Millisecond
		authError(client, fmt.Sprintf("you are banned for another %s", remaining.Round(time.Minute)))
		return nil
	}
	s.limiter.RecordLoginSuccess(ip)

	// The same username may already be attached; the newer connection
	// wins and the older one is displaced.
	s.world.Lock()
	p := loaded
	key := strings.ToLower(req.Username)
	if attached, ok := s.world.GetPlayer(req.Username); ok {
		p = attached
		if old, ok := s.sessions[key]; ok {
			s.SavePlayer(p)
			authError(old, "you have logged in from elsewhere")
			old.SendFrame(protocol.ServerFrame{Type: protocol.FrameForceLogout})
			old.Close()
			logger.Info("Session displaced", "player", p.Username)
		}
	}
	s.world.Unlock()

	s.bindSession(client, p)
	logger.Info("Player logged in", "player", p.Username, "ip", ip)
	return p
}

// recordFailure counts a failed login and answers with a uniform error
// so the response never reveals whether the account exists.
func (s *Server) recordFailure(client *Client, ip string) {
	if blocked, window := s.limiter.RecordLoginFailure(ip, time.Now()); blocked {
		authError(client, fmt.Sprintf("too many failed logins; try again in %d seconds", int(window.Seconds())))
		return
	}
	authError(client, "invalid username or password")
}

// bindSession attaches the player to the world, records the session,
// and pushes the welcome state.
func (s *Server) bindSession(client *Client, p *player.Player) {
	s.world.Lock()
	defer s.world.Unlock()

	if _, ok := s.world.GetLocation(p.Location); !ok {
		p.Location = s.cfg.Player.StartingLocation
	}

	s.world.AttachPlayer(p)
	s.sessions[strings.ToLower(p.Username)] = client

	client.SendFrame(protocol.ServerFrame{
		Type: protocol.FrameAuth,
		Data: protocol.AuthResult{Success: true, Player: ptr(playerView(p))},
	})
	s.Send(p, fmt.Sprintf("Welcome, %s!", p.Username), protocol.MsgSystem)
	s.Broadcast(p.Location, fmt.Sprintf("%s has entered the world.", p.Username), protocol.MsgSystem, p.Username)
	s.dispatch.Execute(p, "look")
	s.SendGameState(p)
}

func ptr[T any](v T) *T { return &v }
