package command

import (
	"strings"
	"testing"

	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
)

// lastFrame returns the most recent frame of the given type.
func lastFrame(fx *fixture, frameType string) (protocol.ServerFrame, bool) {
	for i := len(fx.srv.frames) - 1; i >= 0; i-- {
		if fx.srv.frames[i].Type == frameType {
			return fx.srv.frames[i], true
		}
	}
	return protocol.ServerFrame{}, false
}

func TestLookEmitsRoomExits(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")

	fx.d.Execute(alice, "look")

	frame, ok := lastFrame(fx, protocol.FrameRoomExits)
	if !ok {
		t.Fatal("look did not emit a roomExits frame")
	}
	exits, ok := frame.Data.(protocol.RoomExits)
	if !ok {
		t.Fatalf("roomExits payload has type %T", frame.Data)
	}
	if len(exits.Exits) != 2 {
		t.Fatalf("got %d exits, want 2", len(exits.Exits))
	}
	if exits.Exits["north"] != "Forest" || exits.Exits["east"] != "Arena" {
		t.Errorf("exits = %v, want destination names", exits.Exits)
	}
}

func TestMapRendersAreaAndEmitsSideband(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")

	fx.d.Execute(alice, "map")

	var rendered string
	for _, m := range fx.srv.messages {
		if m.to == "alice" && strings.Contains(m.text, "You") {
			rendered = m.text
		}
	}
	if rendered == "" {
		t.Fatal("no rendered grid sent")
	}
	if !strings.Contains(rendered, "[    You    ]") {
		t.Errorf("current room not marked as You:\n%s", rendered)
	}
	if !strings.Contains(rendered, "Forest") || !strings.Contains(rendered, "Arena") {
		t.Errorf("connected rooms missing from the grid:\n%s", rendered)
	}
	if strings.Contains(rendered, "Town Square") {
		t.Error("current room should render as You, not its name")
	}

	frame, ok := lastFrame(fx, protocol.FrameAreaMap)
	if !ok {
		t.Fatal("map did not emit an areaMap frame")
	}
	areaMap, ok := frame.Data.(protocol.AreaMap)
	if !ok {
		t.Fatalf("areaMap payload has type %T", frame.Data)
	}
	if len(areaMap.Rooms) != 3 {
		t.Fatalf("got %d rooms, want 3", len(areaMap.Rooms))
	}
	if areaMap.PlayerPosition.Name != "Town Square" || !areaMap.PlayerPosition.Current {
		t.Errorf("player position = %+v, want the current room", areaMap.PlayerPosition)
	}
	byName := make(map[string]protocol.MapRoom)
	for _, r := range areaMap.Rooms {
		byName[r.Name] = r
	}
	if r := byName["Forest"]; r.X != 0 || r.Y != 1 {
		t.Errorf("Forest at (%d,%d), want (0,1)", r.X, r.Y)
	}
	if r := byName["Arena"]; r.X != 1 || r.Y != 0 {
		t.Errorf("Arena at (%d,%d), want (1,0)", r.X, r.Y)
	}
}

func TestMapAliases(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "forest")

	fx.d.Execute(alice, "m")
	if _, ok := lastFrame(fx, protocol.FrameAreaMap); !ok {
		t.Error("the m alias should render the map")
	}
}
