package command

import (
	"strings"

	"github.com/greyhaven/greyhavenmud/server/internal/player"
	"github.com/greyhaven/greyhavenmud/server/internal/protocol"
	"github.com/greyhaven/greyhavenmud/server/internal/world"
)

const (
	mapDepth     = 5
	mapCellWidth = 11
)

// executeMap renders the area around the player as an ASCII grid and
// also emits the structured areaMap sideband.
func (d *Dispatcher) executeMap(p *player.Player) {
	loc, ok := d.world.GetLocation(p.Location)
	if !ok {
		d.sendError(p, "You are nowhere. This should not happen.")
		return
	}

	grid := d.surveyArea(loc)
	d.sendInfo(p, renderGrid(grid, loc.ID))
	d.sendAreaMap(p, grid, loc.ID)
}

// surveyArea walks the planar exits breadth-first from the origin room,
// assigning each room a grid coordinate. The first room to claim a
// coordinate keeps it; up/down exits are not projected.
func (d *Dispatcher) surveyArea(origin *world.Location) map[world.Vec]*world.Location {
	grid := map[world.Vec]*world.Location{{X: 0, Y: 0}: origin}
	visited := map[string]world.Vec{origin.ID: {X: 0, Y: 0}}

	type queued struct {
		loc   *world.Location
		pos   world.Vec
		depth int
	}
	queue := []queued{{origin, world.Vec{}, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= mapDepth {
			continue
		}
		for dir, destID := range cur.loc.Exits {
			vec, planar := world.DirectionVectors[dir]
			if !planar {
				continue
			}
			if _, seen := visited[destID]; seen {
				continue
			}
			dest, ok := d.world.GetLocation(destID)
			if !ok {
				continue
			}
			pos := world.Vec{X: cur.pos.X + vec.X, Y: cur.pos.Y + vec.Y}
			if _, occupied := grid[pos]; occupied {
				continue
			}
			grid[pos] = dest
			visited[destID] = pos
			queue = append(queue, queued{dest, pos, cur.depth + 1})
		}
	}
	return grid
}

// renderGrid draws the surveyed rooms with connectors between adjacent
// cells. Each occupied cell is the room name padded to a fixed width in
// brackets; the player's room renders as You.
func renderGrid(grid map[world.Vec]*world.Location, currentID string) string {
	minX, maxX, minY, maxY := 0, 0, 0, 0
	for pos := range grid {
		if pos.X < minX {
			minX = pos.X
		}
		if pos.X > maxX {
			maxX = pos.X
		}
		if pos.Y < minY {
			minY = pos.Y
		}
		if pos.Y > maxY {
			maxY = pos.Y
		}
	}

	cellAt := func(x, y int) *world.Location {
		return grid[world.Vec{X: x, Y: y}]
	}
	// connected reports whether the room at (x, y) has a planar exit
	// leading exactly to the room occupying the neighbor cell.
	connected := func(x, y int, dir string) bool {
		from := cellAt(x, y)
		if from == nil {
			return false
		}
		vec := world.DirectionVectors[dir]
		to := cellAt(x+vec.X, y+vec.Y)
		if to == nil {
			return false
		}
		return from.Exits[dir] == to.ID
	}

	var sb strings.Builder
	for y := maxY; y >= minY; y-- {
		var row strings.Builder
		for x := minX; x <= maxX; x++ {
			if loc := cellAt(x, y); loc != nil {
				name := loc.Name
				if loc.ID == currentID {
					name = "You"
				}
				row.WriteString("[" + padCenter(name, mapCellWidth) + "]")
			} else {
				row.WriteString(strings.Repeat(" ", mapCellWidth+2))
			}
			if x < maxX {
				if connected(x, y, "east") || connected(x+1, y, "west") {
					row.WriteString("---")
				} else {
					row.WriteString("   ")
				}
			}
		}
		sb.WriteString(strings.TrimRight(row.String(), " ") + "\n")

		if y > minY {
			var conn strings.Builder
			for x := minX; x <= maxX; x++ {
				segment := []byte(strings.Repeat(" ", mapCellWidth+2))
				if connected(x, y, "south") || connected(x, y-1, "north") {
					segment[(mapCellWidth+2)/2] = '|'
				}
				conn.Write(segment)
				if x < maxX {
					gap := []byte("   ")
					se := connected(x, y, "southeast") || connected(x+1, y-1, "northwest")
					sw := connected(x+1, y, "southwest") || connected(x, y-1, "northeast")
					switch {
					case se && sw:
						gap[1] = 'X'
					case se:
						gap[1] = '\\'
					case sw:
						gap[1] = '/'
					}
					conn.Write(gap)
				}
			}
			line := strings.TrimRight(conn.String(), " ")
			if line != "" {
				sb.WriteString(line + "\n")
			} else {
				sb.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// padCenter truncates or centers a name within the cell width.
func padCenter(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// sendAreaMap emits the structured map sideband.
func (d *Dispatcher) sendAreaMap(p *player.Player, grid map[world.Vec]*world.Location, currentID string) {
	areaMap := protocol.AreaMap{GridSize: mapDepth*2 + 1}
	for pos, loc := range grid {
		room := protocol.MapRoom{X: pos.X, Y: pos.Y, Name: loc.Name, Current: loc.ID == currentID}
		areaMap.Rooms = append(areaMap.Rooms, room)
		if room.Current {
			areaMap.PlayerPosition = room
		}
	}
	d.srv.SendFrame(p, protocol.ServerFrame{Type: protocol.FrameAreaMap, Data: areaMap})
}
