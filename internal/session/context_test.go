package session

import (
	"testing"

	"github.com/dotpop-game/dotpop/internal/audio"
	"github.com/dotpop-game/dotpop/internal/effect"
	"github.com/dotpop-game/dotpop/internal/sim"
)

func testConfig() Config {
	return Config{
		ArenaWidth:  800,
		ArenaHeight: 600,
		CellSize:    80,
		Population: sim.Config{
			Count: 20, TargetFraction: 0.25,
			TargetCategory: "red",
			Categories:     []string{"red", "blue", "green", "yellow", "purple"},
			Radius:         12, MinSpeed: 40, MaxSpeed: 120,
		},
		Pools: map[effect.Kind]effect.PoolConfig{
			effect.Explosion: {Capacity: 5, TTL: 0.6},
			effect.Particle:  {Capacity: 20, TTL: 0.8},
			effect.Trail:     {Capacity: 8, TTL: 0.4},
		},
		CacheCapacity:  8,
		ParticleBurst:  4,
		ParticleSpread: 10,
	}
}

// TestTickKeepsQueriesFresh verifies hit-tests after Tick see post-advance
// positions, never stale ones.
func TestTickKeepsQueriesFresh(t *testing.T) {
	cfg := testConfig()
	cfg.Population.Count = 0
	c := New(cfg, nil)
	defer c.Cleanup()

	id, _, _ := addEntity(c, 100, 300, 100, 0, 15)

	c.Tick(1.0)

	if got, ok := c.QueryPoint(200, 300); !ok || got != id {
		t.Errorf("Expected hit at fresh position (200,300), got id=%d ok=%v", got, ok)
	}
	if _, ok := c.QueryPoint(100, 300); ok {
		t.Error("Expected no hit at the stale pre-advance position")
	}
}

// addEntity places a deterministic entity through the context's simulation.
func addEntity(c *Context, x, y, vx, vy, r float64) (int, float64, float64) {
	id := c.sim.Add(x, y, vx, vy, r, "red", true)
	c.sim.RebuildIndex()
	return id, x, y
}

// TestNotifyDestroyed verifies the full destruction path: entity gone from
// queries the same tick, effects spawned, pronunciation requested.
func TestNotifyDestroyed(t *testing.T) {
	cfg := testConfig()
	cfg.Population.Count = 0
	c := New(cfg, nil)
	defer c.Cleanup()

	id, x, y := addEntity(c, 400, 300, 0, 0, 15)

	_, st := c.NotifyDestroyed(id, "Red")
	if st != audio.Miss {
		t.Errorf("Expected Miss on first pronunciation request, got %v", st)
	}

	if _, ok := c.QueryPoint(x, y); ok {
		t.Error("Destroyed entity must not be queryable on the same tick")
	}
	if c.LiveCount() != 0 {
		t.Errorf("Expected 0 live entities, got %d", c.LiveCount())
	}

	if occ, _ := c.PoolOccupancy(effect.Explosion); occ != 1 {
		t.Errorf("Expected 1 explosion spawned, got %d", occ)
	}
	if occ, _ := c.PoolOccupancy(effect.Particle); occ != cfg.ParticleBurst {
		t.Errorf("Expected %d particles spawned, got %d", cfg.ParticleBurst, occ)
	}
	if occ, _ := c.PoolOccupancy(effect.Trail); occ != 1 {
		t.Errorf("Expected 1 trail spawned, got %d", occ)
	}

	// The label was normalized and is now pending.
	if _, st := c.NotifyDestroyed(id, "red"); st != audio.Miss {
		t.Errorf("Expected dead-id no-op to report Miss, got %v", st)
	}
}

// TestPoolExhaustionIsAbsorbed verifies destructions beyond pool capacity
// drop effects silently instead of failing.
func TestPoolExhaustionIsAbsorbed(t *testing.T) {
	cfg := testConfig()
	cfg.Population.Count = 0
	cfg.ParticleBurst = 0
	cfg.Pools[effect.Explosion] = effect.PoolConfig{Capacity: 2, TTL: 10}
	c := New(cfg, nil)
	defer c.Cleanup()

	var ids []int
	for i := 0; i < 4; i++ {
		id := c.sim.Add(float64(100+40*i), 300, 0, 0, 15, "red", true)
		ids = append(ids, id)
	}
	c.sim.RebuildIndex()

	for _, id := range ids {
		c.NotifyDestroyed(id, "red")
	}

	if occ, cap := c.PoolOccupancy(effect.Explosion); occ != 2 || cap != 2 {
		t.Errorf("Expected explosion pool pinned at 2/2, got %d/%d", occ, cap)
	}
	st := c.Stats()
	if st.EffectsDropped == 0 {
		t.Error("Expected dropped effect spawns to be counted")
	}
	if st.Destroyed != 4 {
		t.Errorf("Expected 4 destructions, got %d", st.Destroyed)
	}
}

// TestCleanupIdempotent verifies cleanup twice is safe and leaves nothing.
func TestCleanupIdempotent(t *testing.T) {
	c := New(testConfig(), nil)
	c.Entities(func(e sim.Entity) bool {
		c.NotifyDestroyed(e.ID, e.Category)
		return true // one is enough
	})

	c.Cleanup()
	c.Cleanup()

	if c.LiveCount() != 0 {
		t.Errorf("Expected no live entities after cleanup, got %d", c.LiveCount())
	}
	for range c.Effects() {
		t.Error("Expected no live effects after cleanup")
	}
	if _, ok := c.QueryPoint(400, 300); ok {
		t.Error("Expected empty index after cleanup")
	}

	// Post-cleanup calls are harmless no-ops.
	c.Tick(0.016)
	c.Repopulate()
	if _, st := c.NotifyDestroyed(0, "red"); st != audio.Miss {
		t.Errorf("Expected Miss from cleaned context, got %v", st)
	}
}

// TestSessionIsolation verifies two back-to-back contexts never observe each
// other's entities, effects or cached audio.
func TestSessionIsolation(t *testing.T) {
	cfg := testConfig()
	cfg.Population.Count = 0

	a := New(cfg, nil)
	defer a.Cleanup()
	b := New(cfg, nil)
	defer b.Cleanup()

	idA, x, y := addEntity(a, 400, 300, 0, 0, 15)

	if _, ok := b.QueryPoint(x, y); ok {
		t.Error("Context b must not see context a's entities")
	}

	a.NotifyDestroyed(idA, "red")

	for range b.Effects() {
		t.Error("Context b must not see context a's effects")
	}
	if occ, _ := b.PoolOccupancy(effect.Explosion); occ != 0 {
		t.Errorf("Expected b's explosion pool untouched, got %d occupied", occ)
	}

	// a's pronunciation request is invisible to b.
	if _, st := b.Pronounce("red"); st != audio.Miss {
		t.Errorf("Expected b's cache to miss, got %v", st)
	}

	// Tearing down a leaves b fully functional.
	a.Cleanup()
	idB, _, _ := addEntity(b, 200, 200, 0, 0, 15)
	if _, st := b.NotifyDestroyed(idB, "blue"); st != audio.Miss {
		t.Errorf("Expected b to keep working after a's cleanup, got %v", st)
	}
}

// TestRepopulate verifies wave regeneration restores the configured counts.
func TestRepopulate(t *testing.T) {
	cfg := testConfig()
	c := New(cfg, nil)
	defer c.Cleanup()

	// Destroy every target.
	var targets []int
	c.Entities(func(e sim.Entity) bool {
		if e.Target {
			targets = append(targets, e.ID)
		}
		return false
	})
	for _, id := range targets {
		c.NotifyDestroyed(id, "red")
	}
	if c.TargetsLeft() != 0 {
		t.Fatalf("Expected 0 targets, got %d", c.TargetsLeft())
	}

	c.Repopulate()

	if c.LiveCount() != cfg.Population.Count {
		t.Errorf("Expected %d entities after repopulate, got %d", cfg.Population.Count, c.LiveCount())
	}
	if c.TargetsLeft() != 5 {
		t.Errorf("Expected 5 targets after repopulate, got %d", c.TargetsLeft())
	}
}
