package world

// Direction names form a closed set; exits with any other key are a
// load error.
var Directions = []string{
	"north", "south", "east", "west",
	"up", "down",
	"northeast", "northwest", "southeast", "southwest",
}

// Vec is a 2D grid offset used by the area map renderer.
type Vec struct {
	X, Y int
}

// DirectionVectors maps each planar direction to its unit grid offset.
// Up and down have no planar projection and are omitted from the map.
var DirectionVectors = map[string]Vec{
	"north":     {0, 1},
	"south":     {0, -1},
	"east":      {1, 0},
	"west":      {-1, 0},
	"northeast": {1, 1},
	"northwest": {-1, 1},
	"southeast": {1, -1},
	"southwest": {-1, -1},
}

// IsDirection reports whether the name belongs to the closed set.
func IsDirection(name string) bool {
	for _, d := range Directions {
		if d == name {
			return true
		}
	}
	return false
}
