package world

import (
	"testing"
)

// TestLoadShippedCatalog loads the content directory that ships with the
// server and checks that every cross-reference resolves.
func TestLoadShippedCatalog(t *testing.T) {
	catalog, err := LoadCatalog("../../data")
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	if len(catalog.Locations) == 0 {
		t.Fatal("no locations loaded")
	}
	town, ok := catalog.Locations["town_square"]
	if !ok {
		t.Fatal("town_square missing from the catalog")
	}
	if !town.Tags.Homestone {
		t.Error("town_square should be a homestone location")
	}
	if town.Shop == nil {
		t.Error("town_square shop reference not enriched")
	}
	if len(town.NPCs) == 0 {
		t.Error("town_square NPC references not enriched")
	}

	forest, ok := catalog.Locations["forest_edge"]
	if !ok {
		t.Fatal("forest_edge missing from the catalog")
	}
	if len(forest.Enemies) == 0 {
		t.Error("forest_edge enemy declarations not instantiated")
	}
	for _, inst := range forest.Enemies {
		if inst.CurrentHealth != inst.Template.MaxHealth {
			t.Error("enemy instances should start at full health")
		}
	}
	if len(forest.Resources) == 0 {
		t.Error("forest_edge resource nodes missing")
	}

	// Quests carry a back-link to the NPC that offers them.
	for _, q := range catalog.Quests.All() {
		if q.NPCID == "" {
			t.Errorf("quest %q has no offering NPC", q.ID)
		}
	}
}

func TestEnrichRejectsUnknownReferences(t *testing.T) {
	if _, err := LoadCatalog("testdata/missing"); err == nil {
		t.Error("expected an error for a nonexistent data directory")
	}
}
