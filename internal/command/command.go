package command

import (
	"math/rand"
	"strings"
	"time"

	"github.com/greyhaven/greyhavenmud/server/internal/config"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/world"
)

// GameServer is the slice of the server the command handlers need:
// message delivery, persistence, session control, and deferred work.
// Scheduled functions run under the world lock after the delay.
type GameServer interface {
	Send(p *player.Player, text string, t protocol.MessageType)
	Broadcast(locationID, text string, t protocol.MessageType, excludeUsername string)
	SendToAll(text string, t protocol.MessageType)
	SendFrame(p *player.Player, frame protocol.ServerFrame)
	SendGameState(p *player.Player)
	SavePlayer(p *player.Player)
	DeleteAccount(p *player.Player)
	DisconnectPlayer(username, reason string)
	Logout(p *player.Player)
	Schedule(d time.Duration, fn func())
}

// Dispatcher routes parsed command lines to their handlers. Handlers
// run to completion under the world lock and reply only through the
// message bus.
type Dispatcher struct {
	world *world.World
	cfg   *config.GameConfig
	srv   GameServer
	rng   *rand.Rand
}

// NewDispatcher wires a dispatcher to the world, config and server.
func NewDispatcher(w *world.World, cfg *config.GameConfig, srv GameServer, rng *rand.Rand) *Dispatcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Dispatcher{world: w, cfg: cfg, srv: srv, rng: rng}
}

// Command is a parsed input line.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits an input line into verb and arguments.
func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Name: "", Args: []string{}}
	}
	return &Command{Name: strings.ToLower(parts[0]), Args: parts[1:]}
}

// Arg returns the nth argument or "".
func (c *Command) Arg(n int) string {
	if n < len(c.Args) {
		return c.Args[n]
	}
	return ""
}

// Execute parses and runs one command line for a player. The caller
// holds the world lock.
func (d *Dispatcher) Execute(p *player.Player, input string) {
	cmd := ParseCommand(input)
	if cmd.Name == "" {
		return
	}

	switch cmd.Name {
	case "north", "south", "east", "west", "up", "down",
		"northeast", "northwest", "southeast", "southwest":
		d.executeMove(p, cmd.Name)
	case "move", "go":
		if cmd.Arg(0) == "" {
			d.sendError(p, "Move where?")
			return
		}
		d.executeMove(p, strings.ToLower(cmd.Arg(0)))
	case "look", "l":
		d.executeLook(p)
	case "map", "m":
		d.executeMap(p)
	case "inventory", "inv", "i":
		d.executeInventory(p)
	case "equipment", "eq":
		d.executeEquipment(p)
	case "examine", "x", "ex", "consider", "con":
		d.executeExamine(p, cmd.Arg(0))
	case "get", "take":
		d.executeGet(p, cmd.Arg(0))
	case "drop":
		d.executeDrop(p, cmd.Arg(0))
	case "use":
		d.executeUse(p, cmd.Arg(0))
	case "equip", "wear", "wield":
		d.executeEquip(p, cmd.Arg(0))
	case "unequip", "remove":
		d.executeUnequip(p, cmd.Arg(0))
	case "give":
		d.executeGive(p, cmd.Args)
	case "attack", "hit", "strike":
		d.executeAttack(p, cmd.Arg(0))
	case "flee", "run":
		d.executeFlee(p)
	case "talk", "speak":
		d.executeTalk(p, cmd.Arg(0))
	case "buy":
		d.executeBuy(p, cmd.Arg(0))
	case "sell":
		d.executeSell(p, cmd.Arg(0))
	case "list", "shop":
		d.executeList(p)
	case "homestone":
		d.executeHomestone(p, cmd.Arg(0))
	case "trade":
		d.executeTrade(p, cmd.Args)
	case "craft":
		d.executeCraft(p, cmd.Arg(0))
	case "recipes":
		d.executeRecipes(p)
	case "harvest":
		d.executeHarvest(p, cmd.Arg(0))
	case "materials":
		d.executeMaterials(p)
	case "quest", "quests":
		d.executeQuestLog(p)
	case "say":
		d.executeSay(p, strings.Join(cmd.Args, " "))
	case "whisper", "wis", "tell", "w":
		d.executeWhisper(p, cmd.Args)
	case "reply", "r":
		d.executeReply(p, strings.Join(cmd.Args, " "))
	case "friend", "friends", "f":
		d.executeFriend(p, cmd.Args)
	case "who":
		d.executeWho(p)
	case "help":
		d.executeHelp(p)
	case "stats":
		d.executeStats(p)
	case "quit", "logout":
		d.executeQuit(p)
	case "reset-account":
		d.executeResetAccount(p)
	case "delete-account":
		d.executeDeleteAccount(p)
	case "ban":
		d.executeBan(p, cmd.Args)
	case "kick":
		d.executeKick(p, cmd.Args)
	case "teleport":
		d.executeTeleport(p, cmd.Args)
	default:
		d.sendError(p, "Unknown command. Type 'help' for a list of commands.")
	}
}

func (d *Dispatcher) sendError(p *player.Player, text string) {
	d.srv.Send(p, text, protocol.MsgError)
}

func (d *Dispatcher) sendInfo(p *player.Player, text string) {
	d.srv.Send(p, text, protocol.MsgInfo)
}

func (d *Dispatcher) sendSuccess(p *player.Player, text string) {
	d.srv.Send(p, text, protocol.MsgSuccess)
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
