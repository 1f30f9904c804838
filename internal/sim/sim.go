// Package sim owns entity kinematic state: it advances positions each tick,
// reflects entities off arena boundaries and optionally resolves
// entity-entity overlap using the spatial index.
package sim

import (
	"math"
	"math/rand"

	"github.com/dotpop-game/dotpop/internal/physics"
)

// Config holds the population and motion policy for one simulation.
// Counts and fractions are session configuration, never hard-coded.
type Config struct {
	ArenaWidth  float64
	ArenaHeight float64

	Count          int      // total entities per wave
	TargetFraction float64  // fraction of Count tagged with TargetCategory
	TargetCategory string   // category the player must click
	Categories     []string // full category set, including the target

	Radius   float64 // entity radius
	MinSpeed float64 // minimum initial speed
	MaxSpeed float64 // maximum initial speed

	ResolveCollisions bool // enable entity-entity bounce
}

// Simulation advances a set of bouncing entities inside a bounded arena.
// All state is private to the instance; two simulations never share entities.
type Simulation struct {
	cfg       Config
	grid      *physics.SpatialGrid
	entities  []Entity
	maxRadius float64
	live      int
	targets   int
}

// New creates an empty simulation bound to the given spatial index.
// Call Populate to seed the first wave.
func New(cfg Config, grid *physics.SpatialGrid) *Simulation {
	return &Simulation{cfg: cfg, grid: grid}
}

// Populate discards any existing entities and seeds a fresh wave:
// TargetFraction of Count are tagged with the target category, the remainder
// is split evenly across the other categories. IDs restart from zero.
func (s *Simulation) Populate() {
	s.entities = s.entities[:0]
	s.live = 0
	s.targets = 0
	s.maxRadius = s.cfg.Radius

	targetCount := int(math.Round(float64(s.cfg.Count) * s.cfg.TargetFraction))
	if targetCount > s.cfg.Count {
		targetCount = s.cfg.Count
	}

	var others []string
	for _, c := range s.cfg.Categories {
		if c != s.cfg.TargetCategory {
			others = append(others, c)
		}
	}

	for i := 0; i < targetCount; i++ {
		s.spawn(s.cfg.TargetCategory, true)
	}

	rest := s.cfg.Count - targetCount
	if len(others) == 0 {
		// Degenerate single-category session: everything is a target.
		for i := 0; i < rest; i++ {
			s.spawn(s.cfg.TargetCategory, true)
		}
		return
	}
	// Split the remainder evenly, earlier categories absorb the extras.
	per := rest / len(others)
	extra := rest % len(others)
	for ci, cat := range others {
		n := per
		if ci < extra {
			n++
		}
		for i := 0; i < n; i++ {
			s.spawn(cat, false)
		}
	}
}

// spawn appends one live entity at a random in-bounds position with a random
// direction and speed in [MinSpeed, MaxSpeed].
func (s *Simulation) spawn(category string, target bool) {
	r := s.cfg.Radius
	angle := rand.Float64() * 2 * math.Pi
	speed := s.cfg.MinSpeed + rand.Float64()*(s.cfg.MaxSpeed-s.cfg.MinSpeed)

	s.entities = append(s.entities, Entity{
		ID:       len(s.entities),
		X:        r + rand.Float64()*(s.cfg.ArenaWidth-2*r),
		Y:        r + rand.Float64()*(s.cfg.ArenaHeight-2*r),
		VX:       math.Cos(angle) * speed,
		VY:       math.Sin(angle) * speed,
		Radius:   r,
		Category: category,
		Target:   target,
		Alive:    true,
	})
	s.live++
	if target {
		s.targets++
	}
}

// Add inserts a single entity with explicit kinematics and returns its id.
// Used by tests and by hosts that place entities deterministically.
func (s *Simulation) Add(x, y, vx, vy, radius float64, category string, target bool) int {
	id := len(s.entities)
	s.entities = append(s.entities, Entity{
		ID: id, X: x, Y: y, VX: vx, VY: vy, Radius: radius,
		Category: category, Target: target, Alive: true,
	})
	s.live++
	if target {
		s.targets++
	}
	if radius > s.maxRadius {
		s.maxRadius = radius
	}
	return id
}

// Advance updates every live entity's position by velocity*dt and applies
// boundary reflection: positions are clamped so the circle stays inside the
// arena and the offending velocity component is negated (perfectly elastic).
// A candidate update containing NaN or infinite values is rejected and the
// entity keeps its prior state.
func (s *Simulation) Advance(dt float64) {
	for i := range s.entities {
		e := &s.entities[i]
		if !e.Alive {
			continue
		}

		nx := e.X + e.VX*dt
		ny := e.Y + e.VY*dt
		if !finite(nx) || !finite(ny) || !finite(e.VX) || !finite(e.VY) {
			continue // malformed update, keep prior state
		}
		e.X = nx
		e.Y = ny

		if e.X-e.Radius < 0 {
			e.X = e.Radius
			e.VX = -e.VX
		} else if e.X+e.Radius > s.cfg.ArenaWidth {
			e.X = s.cfg.ArenaWidth - e.Radius
			e.VX = -e.VX
		}
		if e.Y-e.Radius < 0 {
			e.Y = e.Radius
			e.VY = -e.VY
		} else if e.Y+e.Radius > s.cfg.ArenaHeight {
			e.Y = s.cfg.ArenaHeight - e.Radius
			e.VY = -e.VY
		}
	}

	if s.cfg.ResolveCollisions {
		s.resolveOverlaps()
	}
}

// resolveOverlaps separates overlapping pairs and exchanges velocity along
// the collision normal. The grid still holds last tick's buckets, which is
// fine as a broad phase: the exact circle test runs on current positions.
func (s *Simulation) resolveOverlaps() {
	for i := range s.entities {
		a := &s.entities[i]
		if !a.Alive {
			continue
		}
		reach := a.Radius + s.maxRadius
		s.grid.QueryRadius(a.X, a.Y, reach, func(id int) bool {
			if id <= a.ID || id >= len(s.entities) {
				return false
			}
			b := &s.entities[id]
			if !b.Alive {
				return false
			}
			if physics.CirclesOverlap(a.X, a.Y, a.Radius, b.X, b.Y, b.Radius) {
				bounce(a, b)
			}
			return false
		})
	}
}

// bounce applies a simple elastic collision between two overlapping
// entities: an impulse along the center line (mass proportional to radius
// squared) plus positional separation proportional to overlap depth.
func bounce(a, b *Entity) {
	dist := physics.Distance(a.X, a.Y, b.X, b.Y)
	if dist == 0 {
		return
	}

	nx := (b.X - a.X) / dist
	ny := (b.Y - a.Y) / dist

	dvx := a.VX - b.VX
	dvy := a.VY - b.VY
	dvn := dvx*nx + dvy*ny
	if dvn < 0 {
		return // already separating
	}

	m1 := a.Radius * a.Radius
	m2 := b.Radius * b.Radius
	totalMass := m1 + m2

	impulse := 2 * dvn / totalMass
	a.VX -= impulse * m2 * nx
	a.VY -= impulse * m2 * ny
	b.VX += impulse * m1 * nx
	b.VY += impulse * m1 * ny

	overlap := (a.Radius + b.Radius) - dist
	if overlap > 0 {
		sep1 := overlap * m2 / totalMass
		sep2 := overlap * m1 / totalMass
		a.X -= nx * sep1
		a.Y -= ny * sep1
		b.X += nx * sep2
		b.Y += ny * sep2
	}
}

// RebuildIndex recomputes grid membership for every live entity.
// Called once per tick, after Advance, so queries never see stale positions.
func (s *Simulation) RebuildIndex() {
	s.grid.Clear()
	for i := range s.entities {
		e := &s.entities[i]
		if e.Alive {
			s.grid.Insert(e.ID, e.X, e.Y, e.Radius)
		}
	}
}

// Kill marks an entity dead and returns its last position. The caller is
// responsible for dropping the id from the spatial index in the same tick.
// Killing an already-dead or unknown id reports ok=false.
func (s *Simulation) Kill(id int) (x, y float64, ok bool) {
	if id < 0 || id >= len(s.entities) {
		return 0, 0, false
	}
	e := &s.entities[id]
	if !e.Alive {
		return 0, 0, false
	}
	e.Alive = false
	s.live--
	if e.Target {
		s.targets--
	}
	return e.X, e.Y, true
}

// Get returns a copy of the entity with the given id.
func (s *Simulation) Get(id int) (Entity, bool) {
	if id < 0 || id >= len(s.entities) {
		return Entity{}, false
	}
	return s.entities[id], true
}

// Live calls fn for every live entity. If fn returns true, iteration stops.
func (s *Simulation) Live(fn func(e Entity) bool) {
	for i := range s.entities {
		if s.entities[i].Alive && fn(s.entities[i]) {
			return
		}
	}
}

// LiveCount returns the number of live entities.
func (s *Simulation) LiveCount() int {
	return s.live
}

// TargetsLeft returns the number of live entities tagged as targets.
func (s *Simulation) TargetsLeft() int {
	return s.targets
}

// Clear drops every entity. Used during session teardown.
func (s *Simulation) Clear() {
	s.entities = s.entities[:0]
	s.live = 0
	s.targets = 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
