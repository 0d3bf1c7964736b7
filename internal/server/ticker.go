package server

import (
	"context"
	"fmt"
	"time"

	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
)

const (
	tickInterval  = time.Second
	combatTimeout = 5 * time.Minute
)

// runTicker drives the periodic housekeeping: enemy respawns, dropped
// item expiry, abandoned combat cleanup, and rate-limit bucket pruning.
// There is no passive health regeneration; recovery comes from potions,
// healers, and level-ups.
func (s *Server) runTicker(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

func (s *Server) tick(now time.Time) {
	nowMs := now.UnixMilli()

	s.world.Lock()
	s.reviveEnemies(nowMs)
	s.expireDroppedItems(nowMs)
	s.timeOutCombat(nowMs)
	s.world.Unlock()

	s.limiter.Cleanup(now)
}

// reviveEnemies brings defeated, non-oneTime enemies back once their
// respawn deadline passes.
func (s *Server) reviveEnemies(nowMs int64) {
	for _, loc := range s.world.Catalog().Locations {
		for _, e := range loc.Enemies {
			if e.IsAlive() || e.OneTime || e.LastKilledAt == 0 {
				continue
			}
			respawn := e.RespawnTimeMs()
			if respawn <= 0 {
				respawn = s.cfg.Gameplay.EnemyRespawnTimeMs
			}
			if nowMs-e.LastKilledAt < respawn {
				continue
			}
			e.Revive()
			s.Broadcast(loc.ID, fmt.Sprintf("A %s appears.", e.Template.Name), protocol.MsgSystem, "")
		}
	}
}

// expireDroppedItems crumbles runtime drops past their lifetime.
func (s *Server) expireDroppedItems(nowMs int64) {
	lifetime := s.cfg.Gameplay.DroppedItemLifetimeMs
	if lifetime <= 0 {
		return
	}
	for _, loc := range s.world.Catalog().Locations {
		kept := loc.Dropped[:0]
		for _, dropped := range loc.Dropped {
			if nowMs-dropped.DroppedAt >= lifetime {
				s.Broadcast(loc.ID, fmt.Sprintf("%s crumbles to dust.", dropped.Item.Name), protocol.MsgSystem, "")
				continue
			}
			kept = append(kept, dropped)
		}
		loc.Dropped = kept
	}
}

// timeOutCombat abandons fights with no hit landed for five minutes:
// enemy fighter sets and stale PvP flags alike.
func (s *Server) timeOutCombat(nowMs int64) {
	for _, loc := range s.world.Catalog().Locations {
		for _, e := range loc.Enemies {
			if !e.IsAlive() || len(e.Fighters) == 0 || e.LastAttackAt == 0 {
				continue
			}
			if nowMs-e.LastAttackAt >= combatTimeout.Milliseconds() {
				e.Fighters = nil
				e.LastAttackAt = 0
			}
		}
	}

	for _, p := range s.world.AttachedPlayers() {
		if !p.InPvPCombat {
			continue
		}
		if nowMs-p.LastPvPHitAt >= combatTimeout.Milliseconds() {
			p.InPvPCombat = false
			p.LastPvPHitAt = 0
		}
	}
}
