package protocol

import (
	"encoding/json"
	"time"
)

// MessageType tags every game message frame. The set is closed; the
// client keys rendering off it.
type MessageType string

const (
	MsgInfo    MessageType = "info"
	MsgSuccess MessageType = "success"
	MsgError   MessageType = "error"
	MsgCombat  MessageType = "combat"
	MsgSay     MessageType = "say"
	MsgWhisper MessageType = "whisper"
	MsgNPC     MessageType = "npc"
	MsgSystem  MessageType = "system"
	MsgLoot    MessageType = "loot"
)

// Client -> server frame types.
const (
	FrameRegister = "register"
	FrameLogin    = "login"
	FrameCommand  = "command"
)

// Server -> client frame types.
const (
	FrameAuth        = "auth"
	FrameError       = "error"
	FrameMessage     = "message"
	FrameGameState   = "gameState"
	FrameLogout      = "logout"
	FrameForceLogout = "forceLogout"
	FrameAreaMap     = "areaMap"
	FrameRoomExits   = "roomExits"
)

// ClientFrame is the envelope for every client -> server frame.
type ClientFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AuthRequest is the payload of register and login frames.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CommandRequest is the payload of command frames: one line of
// "verb [args...]" with IDs already resolved by the client.
type CommandRequest struct {
	Command string `json:"command"`
}

// ServerFrame is the envelope for every server -> client frame.
type ServerFrame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Message is the payload of message frames.
type Message struct {
	Type      MessageType `json:"type"`
	Text      string      `json:"text"`
	Timestamp int64       `json:"timestamp"`
}

// NewMessage stamps a message with the current time.
func NewMessage(t MessageType, text string) Message {
	return Message{Type: t, Text: text, Timestamp: time.Now().UnixMilli()}
}

// AuthResult is the payload of auth frames.
type AuthResult struct {
	Success bool        `json:"success"`
	Player  *PlayerView `json:"player,omitempty"`
}

// PlayerView is the client-facing snapshot of a player.
type PlayerView struct {
	Username  string `json:"username"`
	Level     int    `json:"level"`
	XP        int    `json:"xp"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"maxHealth"`
	Mana      int    `json:"mana"`
	MaxMana   int    `json:"maxMana"`
	Damage    int    `json:"damage"`
	Defense   int    `json:"defense"`
	Gold      int    `json:"gold"`
	Location  string `json:"location"`
	IsGM      bool   `json:"isGm,omitempty"`
}

// RoomView is the client-facing snapshot of a room.
type RoomView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Exits       map[string]string `json:"exits"`
	Players     []string          `json:"players"`
	NPCs        []string          `json:"npcs"`
	Enemies     []string          `json:"enemies"`
	Items       []string          `json:"items"`
}

// GameState is the payload of gameState frames.
type GameState struct {
	Player PlayerView `json:"player"`
	Room   RoomView   `json:"room"`
}

// MapRoom is one occupied cell of the area map sideband.
type MapRoom struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Name    string `json:"name"`
	Current bool   `json:"current,omitempty"`
}

// AreaMap is the payload of areaMap frames.
type AreaMap struct {
	Rooms          []MapRoom `json:"rooms"`
	GridSize       int       `json:"gridSize"`
	PlayerPosition MapRoom   `json:"playerPosition"`
}

// RoomExits is the payload of roomExits frames.
type RoomExits struct {
	Exits map[string]string `json:"exits"`
}
