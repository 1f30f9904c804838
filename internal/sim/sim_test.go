package sim

import (
	"math"
	"testing"

	"github.com/dotpop-game/dotpop/internal/physics"
)

func newTestSim(cfg Config) *Simulation {
	grid := physics.NewSpatialGrid(cfg.ArenaWidth, cfg.ArenaHeight, 80)
	return New(cfg, grid)
}

// TestBoundaryReflection verifies the clamp-and-negate contract:
// arena 800x600, entity at (790,300) with velocity (50,0) and radius 15
// ends up at (785,300) with velocity (-50,0) after advance(dt=1).
func TestBoundaryReflection(t *testing.T) {
	s := newTestSim(Config{ArenaWidth: 800, ArenaHeight: 600})
	id := s.Add(790, 300, 50, 0, 15, "red", true)

	s.Advance(1)

	e, ok := s.Get(id)
	if !ok {
		t.Fatal("Expected entity to exist")
	}
	if e.X != 785 || e.Y != 300 {
		t.Errorf("Expected position (785,300), got (%v,%v)", e.X, e.Y)
	}
	if e.VX != -50 || e.VY != 0 {
		t.Errorf("Expected velocity (-50,0), got (%v,%v)", e.VX, e.VY)
	}
}

// TestEntitiesStayInBounds verifies that positions stay within the arena
// inclusive of radius after any sequence of advances.
func TestEntitiesStayInBounds(t *testing.T) {
	cfg := Config{
		ArenaWidth: 800, ArenaHeight: 600,
		Count: 60, TargetFraction: 0.2,
		TargetCategory: "red",
		Categories:     []string{"red", "blue", "green", "yellow", "purple"},
		Radius:         12, MinSpeed: 40, MaxSpeed: 160,
	}
	s := newTestSim(cfg)
	s.Populate()

	for i := 0; i < 300; i++ {
		s.Advance(1.0 / 60.0)
		s.RebuildIndex()
	}

	s.Live(func(e Entity) bool {
		if e.X-e.Radius < 0 || e.X+e.Radius > cfg.ArenaWidth ||
			e.Y-e.Radius < 0 || e.Y+e.Radius > cfg.ArenaHeight {
			t.Errorf("Entity %d out of bounds at (%v,%v)", e.ID, e.X, e.Y)
		}
		return false
	})
}

// TestInvalidKinematicUpdateRejected verifies that NaN or infinite values
// never corrupt an entity: the prior state is kept.
func TestInvalidKinematicUpdateRejected(t *testing.T) {
	s := newTestSim(Config{ArenaWidth: 800, ArenaHeight: 600})
	id := s.Add(100, 100, math.NaN(), 20, 10, "red", false)

	s.Advance(1)

	e, _ := s.Get(id)
	if e.X != 100 || e.Y != 100 {
		t.Errorf("Expected prior position (100,100) kept, got (%v,%v)", e.X, e.Y)
	}
	if !e.Alive {
		t.Error("Expected entity to continue living after a rejected update")
	}

	inf := math.Inf(1)
	id2 := s.Add(200, 200, 10, inf, 10, "red", false)
	s.Advance(1)
	e2, _ := s.Get(id2)
	if e2.X != 200 || e2.Y != 200 {
		t.Errorf("Expected prior position (200,200) kept, got (%v,%v)", e2.X, e2.Y)
	}
}

// TestKillRemovesFromSimulation verifies dead entities are skipped by
// Advance and excluded from the rebuilt index on the same tick.
func TestKillRemovesFromSimulation(t *testing.T) {
	grid := physics.NewSpatialGrid(800, 600, 80)
	s := New(Config{ArenaWidth: 800, ArenaHeight: 600}, grid)
	id := s.Add(100, 100, 50, 0, 10, "red", true)
	s.RebuildIndex()

	x, y, ok := s.Kill(id)
	if !ok || x != 100 || y != 100 {
		t.Fatalf("Expected kill at (100,100), got (%v,%v) ok=%v", x, y, ok)
	}
	grid.Remove(id, x, y)

	if _, hit := grid.QueryPoint(100, 100); hit {
		t.Error("Dead entity must not be queryable on the tick it died")
	}
	if s.LiveCount() != 0 {
		t.Errorf("Expected 0 live entities, got %d", s.LiveCount())
	}
	if s.TargetsLeft() != 0 {
		t.Errorf("Expected 0 targets left, got %d", s.TargetsLeft())
	}

	// Double kill reports failure, not a crash.
	if _, _, ok := s.Kill(id); ok {
		t.Error("Expected second kill of same id to report ok=false")
	}
}

// TestPopulateSplit verifies the target fraction and the even split of
// distractors across the remaining categories.
func TestPopulateSplit(t *testing.T) {
	cfg := Config{
		ArenaWidth: 800, ArenaHeight: 600,
		Count: 100, TargetFraction: 0.25,
		TargetCategory: "blue",
		Categories:     []string{"red", "blue", "green", "yellow"},
		Radius:         10, MinSpeed: 40, MaxSpeed: 120,
	}
	s := newTestSim(cfg)
	s.Populate()

	counts := map[string]int{}
	targets := 0
	s.Live(func(e Entity) bool {
		counts[e.Category]++
		if e.Target {
			targets++
		}
		return false
	})

	if targets != 25 {
		t.Errorf("Expected 25 targets, got %d", targets)
	}
	if counts["blue"] != 25 {
		t.Errorf("Expected 25 blue entities, got %d", counts["blue"])
	}
	for _, cat := range []string{"red", "green", "yellow"} {
		if counts[cat] != 25 {
			t.Errorf("Expected 25 %s entities, got %d", cat, counts[cat])
		}
	}
	if s.LiveCount() != 100 {
		t.Errorf("Expected 100 live entities, got %d", s.LiveCount())
	}
}

// TestPopulateResets verifies a repopulated wave starts from scratch.
func TestPopulateResets(t *testing.T) {
	cfg := Config{
		ArenaWidth: 800, ArenaHeight: 600,
		Count: 10, TargetFraction: 0.5,
		TargetCategory: "red",
		Categories:     []string{"red", "blue"},
		Radius:         10, MinSpeed: 40, MaxSpeed: 120,
	}
	s := newTestSim(cfg)
	s.Populate()
	s.Kill(0)
	s.Populate()

	if s.LiveCount() != 10 {
		t.Errorf("Expected fresh wave of 10, got %d", s.LiveCount())
	}
	if s.TargetsLeft() != 5 {
		t.Errorf("Expected 5 targets after repopulate, got %d", s.TargetsLeft())
	}
}

// TestOverlapResolutionSeparates verifies overlapping entities are pushed
// apart and their closing velocities reversed.
func TestOverlapResolutionSeparates(t *testing.T) {
	grid := physics.NewSpatialGrid(800, 600, 80)
	s := New(Config{ArenaWidth: 800, ArenaHeight: 600, ResolveCollisions: true}, grid)
	a := s.Add(100, 100, 30, 0, 10, "red", false)
	b := s.Add(115, 100, -30, 0, 10, "blue", false)
	s.RebuildIndex()

	s.Advance(0.01)

	ea, _ := s.Get(a)
	eb, _ := s.Get(b)
	dist := physics.Distance(ea.X, ea.Y, eb.X, eb.Y)
	if dist < ea.Radius+eb.Radius-1e-9 {
		t.Errorf("Expected entities separated to >= %v, got %v", ea.Radius+eb.Radius, dist)
	}
	if ea.VX >= 0 {
		t.Errorf("Expected entity a reflected to negative VX, got %v", ea.VX)
	}
	if eb.VX <= 0 {
		t.Errorf("Expected entity b reflected to positive VX, got %v", eb.VX)
	}
}
