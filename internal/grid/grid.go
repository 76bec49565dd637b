// Package grid implements the arena's hex board: coordinate arithmetic,
// the phase-to-storm table, and the spatial-context string every agent
// strategy receives. The whole board is built once and indexed by
// coordinate rather than recomputed per lookup.
package grid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rawblock/gladiator-arena/pkg/models"
)

// Radius is the arena's hex radius; 37 tiles total (1 + 3*3*4).
const Radius = 3

// Tile is a single hex cell.
type Tile struct {
	Coord models.HexCoord
	Level int
	Occupant string // agent id, empty if vacant
	Items []string
}

// Grid is the 37-tile arena. Zero value is not usable; call New.
type Grid struct {
	tiles map[models.HexCoord]*Tile
}

// New builds a fresh, empty radius-3 arena.
func New() *Grid {
	g := &Grid{tiles: make(map[models.HexCoord]*Tile)}
	for q := -Radius; q <= Radius; q++ {
		for r := -Radius; r <= Radius; r++ {
			c := models.HexCoord{Q: q, R: r}
			if !models.InRadius(c, Radius) {
				continue
			}
			g.tiles[c] = &Tile{Coord: c, Level: models.Level(c)}
		}
	}
	return g
}

// Tile returns the tile at c, or nil if c is outside the arena.
func (g *Grid) Tile(c models.HexCoord) *Tile {
	return g.tiles[c]
}

// TileCount is always 37 for a radius-3 hex.
func (g *Grid) TileCount() int {
	return len(g.tiles)
}

// Occupy assigns an occupant to a tile, overwriting any previous occupant
// record. Callers are responsible for checking vacancy first; Occupy itself
// never validates (the Move/Validate path in the Secretary and grid.Move do).
func (g *Grid) Occupy(c models.HexCoord, agentID string) {
	if t := g.tiles[c]; t != nil {
		t.Occupant = agentID
	}
}

// Vacate clears the occupant of a tile if it currently matches agentID.
func (g *Grid) Vacate(c models.HexCoord, agentID string) {
	if t := g.tiles[c]; t != nil && t.Occupant == agentID {
		t.Occupant = ""
	}
}

// PlaceItem drops an item name onto a tile.
func (g *Grid) PlaceItem(c models.HexCoord, item string) {
	if t := g.tiles[c]; t != nil {
		t.Items = append(t.Items, item)
	}
}

// TakeItems removes and returns all items sitting on c.
func (g *Grid) TakeItems(c models.HexCoord) []string {
	t := g.tiles[c]
	if t == nil || len(t.Items) == 0 {
		return nil
	}
	items := t.Items
	t.Items = nil
	return items
}

// Move validates and (on success) applies a movement from 'from' to 'to':
// inside the grid, adjacent, unoccupied, and not a no-op.
// Returns false without mutating the grid if the move is invalid.
func (g *Grid) Move(from, to models.HexCoord, agentID string) bool {
	if from.Equal(to) {
		return false
	}
	target := g.tiles[to]
	if target == nil {
		return false
	}
	if models.Distance(from, to) != 1 {
		return false
	}
	if target.Occupant != "" && target.Occupant != agentID {
		return false
	}
	g.Vacate(from, agentID)
	target.Occupant = agentID
	return true
}

// EmptyNeighbors returns the vacant tiles adjacent to c, inside the grid.
func (g *Grid) EmptyNeighbors(c models.HexCoord) []models.HexCoord {
	var out []models.HexCoord
	for _, n := range models.Neighbors(c) {
		if t := g.tiles[n]; t != nil && t.Occupant == "" {
			out = append(out, n)
		}
	}
	return out
}

// Phase is a monotone function of epoch index against maxEpochs, matching
// the fixed LOOT/HUNT/BLOOD/FINAL_STAND phase table. Boundaries scale with
// maxEpochs so a short test battle still visits every phase.
func Phase(epoch, maxEpochs int) models.Phase {
	if maxEpochs <= 0 {
		maxEpochs = 1
	}
	frac := float64(epoch) / float64(maxEpochs)
	switch {
	case frac < 0.35:
		return models.PhaseLoot
	case frac < 0.65:
		return models.PhaseHunt
	case frac < 0.9:
		return models.PhaseBlood
	default:
		return models.PhaseFinalStand
	}
}

// EpochsRemainingInPhase estimates how many epochs remain before the next
// phase boundary, for display in the spatial context block.
func EpochsRemainingInPhase(epoch, maxEpochs int) int {
	if maxEpochs <= 0 {
		return 0
	}
	bounds := []float64{0.35, 0.65, 0.9, 1.0}
	frac := float64(epoch) / float64(maxEpochs)
	for _, b := range bounds {
		if frac < b {
			remaining := int(b*float64(maxEpochs)) - epoch
			if remaining < 0 {
				remaining = 0
			}
			return remaining
		}
	}
	return 0
}

// MaxSafeLevel returns the highest ring index still free of storm for the
// given phase (table). LOOT returns Radius: every tile is safe and there is
// no storm (CombatEnabled reports that LOOT also disables combat).
func MaxSafeLevel(phase models.Phase) int {
	switch phase {
	case models.PhaseLoot:
		return Radius
	case models.PhaseHunt:
		return 2
	case models.PhaseBlood:
		return 1
	case models.PhaseFinalStand:
		return 0
	default:
		return Radius
	}
}

// CombatEnabled reports whether the phase allows ATTACK/SABOTAGE resolution.
func CombatEnabled(phase models.Phase) bool {
	return phase != models.PhaseLoot
}

// InStorm reports whether c is outside the phase's safe ring.
func InStorm(c models.HexCoord, phase models.Phase) bool {
	return models.Level(c) > MaxSafeLevel(phase)
}

// SpatialContext builds the human-readable block every decide-call
// receives: position, level, distance to centre, phase, epochs remaining,
// storm status, empty adjacent hexes, nearby agents and items.
func (g *Grid) SpatialContext(self *models.Agent, roster []*models.Agent, epoch, maxEpochs int) string {
	if self.Position == nil {
		return "You have not yet been placed on the arena."
	}
	pos := *self.Position
	phase := Phase(epoch, maxEpochs)
	remaining := EpochsRemainingInPhase(epoch, maxEpochs)

	var b strings.Builder
	fmt.Fprintf(&b, "Position: (%d,%d), level %d, distance to centre %d\n", pos.Q, pos.R, models.Level(pos), models.Distance(pos, models.HexCoord{}))
	fmt.Fprintf(&b, "Phase: %s (%d epochs remaining in phase)\n", phase, remaining)
	if InStorm(pos, phase) {
		b.WriteString("STORM: you are standing in the storm and must move.\n")
	} else {
		b.WriteString("You are on safe ground.\n")
	}

	var empties []string
	for _, n := range models.Neighbors(pos) {
		t := g.tiles[n]
		if t == nil || t.Occupant != "" {
			continue
		}
		tag := ""
		if InStorm(n, phase) {
			tag = " [STORM]"
		}
		empties = append(empties, fmt.Sprintf("(%d,%d)%s", n.Q, n.R, tag))
	}
	sort.Strings(empties)
	if len(empties) == 0 {
		b.WriteString("Empty adjacent hexes: none (boxed in)\n")
	} else {
		fmt.Fprintf(&b, "Empty adjacent hexes: %s\n", strings.Join(empties, ", "))
	}

	type nearby struct {
		desc string
		dist int
	}
	var agents []nearby
	var items []nearby
	for _, a := range roster {
		if a.ID == self.ID || a.Position == nil {
			continue
		}
		d := models.Distance(pos, *a.Position)
		if d > 2 {
			continue
		}
		adj := ""
		if d == 1 {
			adj = " ADJACENT"
		}
		agents = append(agents, nearby{
			desc: fmt.Sprintf("%s (%s, %d HP, distance %d%s)", a.Name, a.Class, a.HP, d, adj),
			dist: d,
		})
	}
	for c, t := range g.tiles {
		if len(t.Items) == 0 {
			continue
		}
		d := models.Distance(pos, c)
		if d > 2 {
			continue
		}
		items = append(items, nearby{
			desc: fmt.Sprintf("%s at (%d,%d), distance %d", strings.Join(t.Items, ", "), c.Q, c.R, d),
			dist: d,
		})
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].dist < agents[j].dist })
	sort.Slice(items, func(i, j int) bool { return items[i].dist < items[j].dist })

	if len(agents) == 0 {
		b.WriteString("Agents within 2 tiles: none\n")
	} else {
		b.WriteString("Agents within 2 tiles:\n")
		for _, a := range agents {
			fmt.Fprintf(&b, " - %s\n", a.desc)
		}
	}
	if len(items) == 0 {
		b.WriteString("Items within 2 tiles: none\n")
	} else {
		b.WriteString("Items within 2 tiles:\n")
		for _, it := range items {
			fmt.Fprintf(&b, " - %s\n", it.desc)
		}
	}
	return b.String()
}

// ClosestUnoccupiedNonStorm returns the adjacent unoccupied, non-storm tile
// closest to centre, used by the Secretary's fallback-move injection
// (step 7). Falls back to any unoccupied adjacent tile if every
// neighbor is storm; returns nil if fully boxed in.
func (g *Grid) ClosestUnoccupiedNonStorm(from models.HexCoord, phase models.Phase) *models.HexCoord {
	empties := g.EmptyNeighbors(from)
	if len(empties) == 0 {
		return nil
	}
	var best *models.HexCoord
	bestLevel := Radius + 1
	for i := range empties {
		c := empties[i]
		if InStorm(c, phase) {
			continue
		}
		if models.Level(c) < bestLevel {
			bestLevel = models.Level(c)
			best = &c
		}
	}
	if best != nil {
		return best
	}
	// Every neighbor is storm; fall back to any unoccupied adjacent tile.
	c := empties[0]
	return &c
}
