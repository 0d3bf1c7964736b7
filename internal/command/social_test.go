package command

import (
	"testing"

	"github.com/greyhaven/greyhavenmud/server/internal/npc"
)

func TestSayReachesRoomOnly(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	fx.addPlayer("bob", "town_square")
	fx.addPlayer("carol", "forest")

	fx.d.Execute(alice, "say hello there")

	if !fx.srv.received("alice", "You say: hello there") {
		t.Error("speaker echo missing")
	}
	if !fx.srv.received("bob", "alice says: hello there") {
		t.Error("room broadcast missing")
	}
	if fx.srv.received("carol", "hello there") {
		t.Error("speech leaked to another room")
	}
}

func TestSayTriggersPortal(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	alice.Gold = 20

	loc, _ := fx.world.GetLocation("town_square")
	loc.NPCs = append(loc.NPCs, &npc.NPC{
		ID: "ferryman", Name: "Ferryman", Dialogue: "Where to?",
		Portals: []npc.Portal{{Keyword: "forest", LocationID: "forest", Cost: 5}},
	})

	fx.d.Execute(alice, "say forest")

	if alice.Location != "forest" {
		t.Fatalf("location = %q, want forest via the portal", alice.Location)
	}
	if alice.Gold != 15 {
		t.Errorf("gold = %d, want 15 after the 5 gold fare", alice.Gold)
	}
	if fx.srv.received("alice", "You say: forest") {
		t.Error("portal keywords must not be spoken aloud")
	}
}

func TestSayPortalQuotesWhenBroke(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	alice.Gold = 2

	loc, _ := fx.world.GetLocation("town_square")
	loc.NPCs = append(loc.NPCs, &npc.NPC{
		ID: "ferryman", Name: "Ferryman", Dialogue: "Where to?",
		Portals: []npc.Portal{{Keyword: "forest", LocationID: "forest", Cost: 5}},
	})

	fx.d.Execute(alice, "say forest")
	if alice.Location != "town_square" {
		t.Fatal("broke players must not travel")
	}
	if !fx.srv.received("alice", "Passage costs 5 gold") {
		t.Error("missing fare quote")
	}
}

func TestWhisperAndReply(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	bob := fx.addPlayer("bob", "forest")

	fx.d.Execute(alice, "whisper bob meet me at the square")
	if !fx.srv.received("bob", "alice whispers: meet me at the square") {
		t.Fatal("whisper not delivered")
	}
	if bob.LastWhisperFrom != "alice" {
		t.Fatal("reply target not recorded")
	}

	fx.d.Execute(bob, "reply on my way")
	if !fx.srv.received("alice", "bob whispers: on my way") {
		t.Error("reply not delivered")
	}

	fx.d.Execute(alice, "w bob still there?")
	if !fx.srv.received("bob", "alice whispers: still there?") {
		t.Error("the w alias should whisper")
	}
}

func TestReplyWithoutWhisper(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")

	fx.d.Execute(alice, "reply hello")
	if !fx.srv.received("alice", "No one has whispered to you") {
		t.Error("expected a no-target error")
	}
}

func TestFriendCommands(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	fx.addPlayer("Bob", "forest")

	fx.d.Execute(alice, "friend add bob")
	if !alice.IsFriend("Bob") {
		t.Fatal("friend not added")
	}

	fx.srv.reset()
	fx.d.Execute(alice, "friend list")
	if !fx.srv.received("alice", "Bob (online)") {
		t.Error("online friend not shown as online")
	}

	fx.d.Execute(alice, "friend remove bob")
	if alice.IsFriend("bob") {
		t.Error("friend not removed")
	}
}

func TestWhoListsEveryone(t *testing.T) {
	fx := newFixture(t)
	alice := fx.addPlayer("alice", "town_square")
	fx.addPlayer("bob", "forest")
	alice.AddFriend("bob")

	fx.d.Execute(alice, "who")
	if !fx.srv.received("alice", "Online (2):") {
		t.Error("missing online count")
	}
	if !fx.srv.received("alice", "bob (friend)") {
		t.Error("friends should be marked in the who list")
	}
}
