// Package session composes the spatial index, entity simulation, effect
// pools and pronunciation cache into one unit scoped to a single level
// instance. Every resource is private to the context; two sessions are
// isolated by construction, and Cleanup releases everything deterministically
// no matter how the level ends.
package session

import (
	"iter"
	"math/rand"
	"time"

	"github.com/dotpop-game/dotpop/internal/audio"
	"github.com/dotpop-game/dotpop/internal/effect"
	"github.com/dotpop-game/dotpop/internal/physics"
	"github.com/dotpop-game/dotpop/internal/sim"
)

// Config is the resource surface consumed at context creation. Every ceiling
// and fraction is a tunable, never a constant baked into the engine.
type Config struct {
	ArenaWidth  float64
	ArenaHeight float64
	CellSize    float64

	Population sim.Config // arena fields are filled in by New

	Pools         map[effect.Kind]effect.PoolConfig
	CacheCapacity int

	// ParticleBurst is how many particles accompany each explosion when an
	// entity is destroyed.
	ParticleBurst int
	// ParticleSpread is the max offset of burst particles from the center.
	ParticleSpread float64
}

// Stats are lifetime counters for one session, reported at teardown.
type Stats struct {
	Destroyed      int
	EffectsSpawned int
	EffectsDropped int
	CacheHits      uint64
	CacheMisses    uint64
	Uptime         time.Duration
}

// Context owns every transient artifact of one game session.
type Context struct {
	cfg     Config
	grid    *physics.SpatialGrid
	sim     *sim.Simulation
	pools   []*effect.Pool // indexed by effect.Kind
	cache   *audio.Cache
	created time.Time
	cleaned bool

	destroyed      int
	effectsSpawned int
	effectsDropped int
}

// New allocates a fully isolated session: its own index, simulation, pools
// and cache. No package-level state is touched. synth may be nil for hosts
// that fulfill pronunciations themselves.
func New(cfg Config, synth audio.Synthesizer) *Context {
	cfg.Population.ArenaWidth = cfg.ArenaWidth
	cfg.Population.ArenaHeight = cfg.ArenaHeight

	grid := physics.NewSpatialGrid(cfg.ArenaWidth, cfg.ArenaHeight, cfg.CellSize)
	s := sim.New(cfg.Population, grid)
	s.Populate()

	kinds := []effect.Kind{effect.Explosion, effect.Particle, effect.Trail}
	pools := make([]*effect.Pool, len(kinds))
	for _, k := range kinds {
		pc, ok := cfg.Pools[k]
		if !ok {
			pc = effect.PoolConfig{Capacity: 1, TTL: 1}
		}
		pools[k] = effect.NewPool(k, pc)
	}

	c := &Context{
		cfg:     cfg,
		grid:    grid,
		sim:     s,
		pools:   pools,
		cache:   audio.NewCache(cfg.CacheCapacity, synth),
		created: time.Now(),
	}
	s.RebuildIndex()
	return c
}

// Tick advances the session by dt seconds: simulation first, then the index
// rebuild, then pool aging. Hit-tests issued by the host after Tick always
// see fresh positions.
func (c *Context) Tick(dt float64) {
	if c.cleaned {
		return
	}
	c.sim.Advance(dt)
	c.sim.RebuildIndex()
	for _, p := range c.pools {
		p.Update(dt)
	}
}

// QueryPoint returns the id of the entity under (x, y), if any.
// The hit-testing surface for the input collaborator.
func (c *Context) QueryPoint(x, y float64) (int, bool) {
	return c.grid.QueryPoint(x, y)
}

// QueryRadius calls fn for each entity within radius of (x, y).
func (c *Context) QueryRadius(x, y, radius float64, fn func(id int) bool) {
	c.grid.QueryRadius(x, y, radius, fn)
}

// Entity returns a copy of the entity with the given id.
func (c *Context) Entity(id int) (sim.Entity, bool) {
	return c.sim.Get(id)
}

// NotifyDestroyed is the single integration point for gameplay logic when an
// entity is clicked: the entity dies and leaves the index this tick, the
// configured effects spawn at its last position (pool exhaustion is silently
// absorbed), and the pronunciation for label is looked up or requested.
// A dead or unknown id is a no-op reporting Miss.
func (c *Context) NotifyDestroyed(id int, label string) (audio.Clip, audio.Status) {
	if c.cleaned {
		return audio.Clip{}, audio.Miss
	}
	x, y, ok := c.sim.Kill(id)
	if !ok {
		return audio.Clip{}, audio.Miss
	}
	c.grid.Remove(id, x, y)
	c.destroyed++

	c.spawnEffect(effect.Explosion, x, y)
	for i := 0; i < c.cfg.ParticleBurst; i++ {
		ox := (rand.Float64()*2 - 1) * c.cfg.ParticleSpread
		oy := (rand.Float64()*2 - 1) * c.cfg.ParticleSpread
		c.spawnEffect(effect.Particle, x+ox, y+oy)
	}
	c.spawnEffect(effect.Trail, x, y)

	return c.cache.GetOrRequest(label)
}

// Pronounce looks up or requests the pronunciation for label without
// destroying anything. Hosts use it to preload the target word at wave start
// and to retry playback once a pending entry becomes ready.
func (c *Context) Pronounce(label string) (audio.Clip, audio.Status) {
	if c.cleaned {
		return audio.Clip{}, audio.Miss
	}
	return c.cache.GetOrRequest(label)
}

// spawnEffect requests a pooled instance; a dropped effect is never fatal.
func (c *Context) spawnEffect(k effect.Kind, x, y float64) {
	if err := c.pools[k].Spawn(x, y); err != nil {
		c.effectsDropped++
		return
	}
	c.effectsSpawned++
}

// Entities calls fn for every live entity: the render collaborator's view.
func (c *Context) Entities(fn func(e sim.Entity) bool) {
	c.sim.Live(fn)
}

// Effects yields views of every live effect instance across all pools, in
// kind order. The sequence is lazy, finite and restartable.
func (c *Context) Effects() iter.Seq[effect.View] {
	return func(yield func(effect.View) bool) {
		for _, p := range c.pools {
			for v := range p.All() {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// LiveCount returns the number of live entities.
func (c *Context) LiveCount() int {
	return c.sim.LiveCount()
}

// TargetsLeft returns the number of live target entities.
func (c *Context) TargetsLeft() int {
	return c.sim.TargetsLeft()
}

// Repopulate seeds a fresh wave of entities, reusing the session's pools and
// cache. Used when the player clears every target.
func (c *Context) Repopulate() {
	if c.cleaned {
		return
	}
	c.sim.Populate()
	c.sim.RebuildIndex()
}

// PoolOccupancy reports occupied/capacity for the given kind.
func (c *Context) PoolOccupancy(k effect.Kind) (occupied, capacity int) {
	p := c.pools[k]
	return p.Occupied(), p.Capacity()
}

// Stats returns the session's lifetime counters.
func (c *Context) Stats() Stats {
	hits, misses := c.cache.Stats()
	return Stats{
		Destroyed:      c.destroyed,
		EffectsSpawned: c.effectsSpawned,
		EffectsDropped: c.effectsDropped,
		CacheHits:      hits,
		CacheMisses:    misses,
		Uptime:         time.Since(c.created),
	}
}

// Cleanup releases every owned structure: pools reset, cache closed (which
// detaches in-flight synthesis), entities and index cleared. Idempotent, so
// a deferred call on the host's error path is always safe.
func (c *Context) Cleanup() {
	if c.cleaned {
		return
	}
	c.cleaned = true

	for _, p := range c.pools {
		p.Reset()
	}
	c.cache.Close()
	c.sim.Clear()
	c.grid.Clear()
}
