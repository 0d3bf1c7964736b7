package command

import (
	"fmt"
	"math"
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/npc"
	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/quest"
)

// executeTalk runs the NPC conversation sequence: quest turn-in first,
// then quest offering, then healer service, then plain dialogue.
func (d *Dispatcher) executeTalk(p *player.Player, npcID string) {
	if npcID == "" {
		d.sendError(p, "Talk to whom?")
		return
	}
	loc, ok := d.world.GetLocation(p.Location)
	if !ok {
		d.sendError(p, "You are nowhere. This should not happen.")
		return
	}
	n, ok := loc.FindNPC(npcID)
	if !ok {
		d.sendError(p, "There is no one like that here.")
		return
	}

	// Visiting an NPC satisfies any active visit quest targeting them.
	for questID := range p.ActiveQuests {
		q, ok := d.world.Catalog().Quests.Get(questID)
		if ok && q.Type == quest.TypeVisit && q.Target == n.ID {
			p.ActiveQuests[questID] = q.Count
		}
	}

	if d.tryCompleteQuests(p, n) {
		return
	}
	if d.tryOfferQuest(p, n) {
		return
	}
	if n.Healer && d.healerService(p, n) {
		return
	}
	d.srv.Send(p, fmt.Sprintf("%s says: %s", n.Name, n.Dialogue), protocol.MsgNPC)
}

// questComplete reports whether an active quest's objective is met.
func (d *Dispatcher) questComplete(p *player.Player, q *quest.Quest) bool {
	progress := p.ActiveQuests[q.ID]
	switch q.Type {
	case quest.TypeCollect:
		return d.collectCount(p, q.Target) >= q.Count
	default:
		return progress >= q.Count
	}
}

// collectCount counts the collect target in the materials map when the
// target is a material, otherwise in the inventory.
func (d *Dispatcher) collectCount(p *player.Player, target string) int {
	if _, ok := d.world.Catalog().Materials.Get(target); ok {
		return p.Materials[target]
	}
	return p.CountItems(target)
}

// tryCompleteQuests turns in every finished quest offered by this NPC.
// Completion with an item reward verifies post-removal inventory space
// before anything mutates.
func (d *Dispatcher) tryCompleteQuests(p *player.Player, n *npc.NPC) bool {
	completed := false
	for questID := range p.ActiveQuests {
		q, ok := d.world.Catalog().Quests.Get(questID)
		if !ok || q.NPCID != n.ID || !d.questComplete(p, q) {
			continue
		}

		if q.HasItemReward() {
			freed := 0
			if q.Type == quest.TypeCollect {
				if _, isMaterial := d.world.Catalog().Materials.Get(q.Target); !isMaterial {
					freed = q.Count
				}
			}
			if len(p.Inventory)-freed+1 > p.MaxInventorySlots() {
				d.sendError(p, fmt.Sprintf("You need to make room in your inventory to finish %s.", q.Name))
				continue
			}
		}

		d.completeQuest(p, n, q)
		completed = true
	}
	return completed
}

// completeQuest consumes collect targets, grants rewards, and moves the
// quest to the completed set. Space has already been verified.
func (d *Dispatcher) completeQuest(p *player.Player, n *npc.NPC, q *quest.Quest) {
	if q.Type == quest.TypeCollect {
		if _, isMaterial := d.world.Catalog().Materials.Get(q.Target); isMaterial {
			p.RemoveMaterials(map[string]int{q.Target: q.Count})
		} else {
			p.RemoveItems(q.Target, q.Count)
		}
	}

	delete(p.ActiveQuests, q.ID)
	p.CompletedQuests[q.ID] = true

	d.srv.Send(p, fmt.Sprintf("%s says: %s", n.Name, q.CompletionDialogue), protocol.MsgNPC)

	rewards := []string{}
	if q.Reward.Gold > 0 {
		p.Gold += q.Reward.Gold
		rewards = append(rewards, fmt.Sprintf("%d gold", q.Reward.Gold))
	}
	if q.Reward.XP > 0 {
		rewards = append(rewards, fmt.Sprintf("%d experience", q.Reward.XP))
	}
	if q.HasItemReward() {
		if template, ok := d.world.Catalog().Items.Get(q.Reward.ItemID); ok {
			p.Inventory = append(p.Inventory, template.NewInstance())
			rewards = append(rewards, template.Name)
		}
	}
	if len(rewards) > 0 {
		d.srv.Send(p, fmt.Sprintf("Quest complete: %s! You receive %s.", q.Name, strings.Join(rewards, ", ")), protocol.MsgSuccess)
	} else {
		d.srv.Send(p, fmt.Sprintf("Quest complete: %s!", q.Name), protocol.MsgSuccess)
	}

	gains := p.GainXP(q.Reward.XP, d.cfg)
	d.announceLevelUps(p, gains)
	d.srv.SendGameState(p)
	d.srv.SavePlayer(p)
}

// tryOfferQuest offers or reiterates the NPC's quest.
func (d *Dispatcher) tryOfferQuest(p *player.Player, n *npc.NPC) bool {
	if !n.IsQuestGiver() {
		return false
	}
	q, ok := d.world.Catalog().Quests.Get(n.QuestID)
	if !ok || p.CompletedQuests[q.ID] {
		return false
	}

	if _, active := p.ActiveQuests[q.ID]; active {
		d.srv.Send(p, fmt.Sprintf("%s says: %s", n.Name, q.Dialogue), protocol.MsgNPC)
		return true
	}

	if q.RequiredLevel > 0 && p.Level < q.RequiredLevel {
		return false
	}
	if q.PrerequisiteQuest != "" && !p.CompletedQuests[q.PrerequisiteQuest] {
		return false
	}

	p.ActiveQuests[q.ID] = 0
	dialogue := n.QuestDialogue
	if dialogue == "" {
		dialogue = q.Dialogue
	}
	d.srv.Send(p, fmt.Sprintf("%s says: %s", n.Name, dialogue), protocol.MsgNPC)
	d.srv.Send(p, fmt.Sprintf("New quest: %s", q.Name), protocol.MsgSuccess)
	d.srv.SavePlayer(p)
	return true
}

// healerService heals a wounded player for gold. Returns false when
// there is nothing to heal so plain dialogue plays instead.
func (d *Dispatcher) healerService(p *player.Player, n *npc.NPC) bool {
	missingHealth := p.MaxHealth() - p.CurrentHealth
	missingMana := p.MaxMana() - p.CurrentMana
	if missingHealth <= 0 && missingMana <= 0 {
		return false
	}

	cost := int(math.Ceil(float64(missingHealth+missingMana) * d.cfg.Economy.HealerCostFactor / 100))
	if !p.SpendGold(cost) {
		d.srv.Send(p, fmt.Sprintf("%s says: I can make you whole for %d gold.", n.Name, cost), protocol.MsgNPC)
		return true
	}

	p.CurrentHealth = p.MaxHealth()
	p.CurrentMana = p.MaxMana()
	d.srv.Send(p, fmt.Sprintf("%s heals your wounds for %d gold.", n.Name, cost), protocol.MsgSuccess)
	d.srv.SendGameState(p)
	d.srv.SavePlayer(p)
	return true
}

// executeQuestLog lists active quests with progress.
func (d *Dispatcher) executeQuestLog(p *player.Player) {
	if len(p.ActiveQuests) == 0 && len(p.CompletedQuests) == 0 {
		d.sendInfo(p, "You have no quests.")
		return
	}

	var sb strings.Builder
	if len(p.ActiveQuests) > 0 {
		sb.WriteString("Active quests:\n")
		for questID, progress := range p.ActiveQuests {
			q, ok := d.world.Catalog().Quests.Get(questID)
			if !ok {
				continue
			}
			shown := progress
			if q.Type == quest.TypeCollect {
				shown = d.collectCount(p, q.Target)
				if shown > q.Count {
					shown = q.Count
				}
			}
			sb.WriteString(fmt.Sprintf("  %s (%d/%d)\n", q.Name, shown, q.Count))
		}
	}
	if len(p.CompletedQuests) > 0 {
		sb.WriteString(fmt.Sprintf("Completed: %d\n", len(p.CompletedQuests)))
	}
	d.sendInfo(p, strings.TrimRight(sb.String(), "\n"))
}
