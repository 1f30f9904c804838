// Package effect provides fixed-capacity, reusable stores of transient
// visual artifacts. Every instance lives in exactly one pool slot and walks
// an age-driven lifecycle until its slot is reclaimed for reuse.
package effect

import (
	"errors"
	"iter"
)

// Kind identifies the visual artifact type a pool holds.
type Kind int

const (
	Explosion Kind = iota
	Particle
	Trail
)

// String returns the lowercase kind name used in config and logs.
func (k Kind) String() string {
	switch k {
	case Explosion:
		return "explosion"
	case Particle:
		return "particle"
	case Trail:
		return "trail"
	default:
		return "unknown"
	}
}

// Lifecycle state of one pooled instance. Transitions are driven purely by
// elapsed time against the pool's duration thresholds.
type State int

const (
	Spawning State = iota // first SpawnFrac of TTL
	Active
	Fading // last FadeFrac of TTL
	Dead   // slot free, eligible for reuse
)

// ErrPoolExhausted reports a spawn request that found no free slot and no
// preemptable occupied slot. Dropping a visual effect is never fatal;
// callers absorb this silently.
var ErrPoolExhausted = errors.New("effect: pool exhausted")

// View is a read-only snapshot of one live instance handed to the render
// collaborator.
type View struct {
	Kind  Kind
	X, Y  float64
	State State
	// Age is the normalized lifetime in [0,1): 0 just spawned, 1 expired.
	Age float64
}

// slot is one pool entry. A slot is either free (occupied=false) or holds
// exactly one instance; instances are never shared between slots.
type slot struct {
	occupied bool
	x, y     float64
	age      float64
}

// Pool is a fixed-capacity store of instances of one kind. All slots are
// allocated up front; spawning and reclaiming never allocate.
type Pool struct {
	kind      Kind
	ttl       float64 // seconds an instance lives
	spawnFrac float64 // share of TTL spent Spawning
	fadeFrac  float64 // share of TTL spent Fading
	slots     []slot
	occupied  int
}

// PoolConfig sizes one pool and tunes its lifecycle thresholds.
// Zero fractions fall back to the defaults (10% spawning, 30% fading).
type PoolConfig struct {
	Capacity  int
	TTL       float64
	SpawnFrac float64
	FadeFrac  float64
}

const (
	defaultSpawnFrac = 0.10
	defaultFadeFrac  = 0.30
)

// NewPool creates a pool of the given kind with all slots free.
func NewPool(kind Kind, cfg PoolConfig) *Pool {
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.SpawnFrac <= 0 {
		cfg.SpawnFrac = defaultSpawnFrac
	}
	if cfg.FadeFrac <= 0 {
		cfg.FadeFrac = defaultFadeFrac
	}
	return &Pool{
		kind:      kind,
		ttl:       cfg.TTL,
		spawnFrac: cfg.SpawnFrac,
		fadeFrac:  cfg.FadeFrac,
		slots:     make([]slot, cfg.Capacity),
	}
}

// Kind returns the artifact kind this pool holds.
func (p *Pool) Kind() Kind {
	return p.kind
}

// Capacity returns the configured slot count.
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// Occupied returns the number of live instances. Never exceeds Capacity.
func (p *Pool) Occupied() int {
	return p.occupied
}

// Spawn claims a slot for a new instance at (x, y). When every slot is
// occupied, the oldest-expiring instance that has already reached Fading is
// preempted; if none has, ErrPoolExhausted is returned and the request is
// dropped. Occupancy never exceeds capacity either way.
func (p *Pool) Spawn(x, y float64) error {
	idx := -1
	for i := range p.slots {
		if !p.slots[i].occupied {
			idx = i
			break
		}
	}

	if idx < 0 {
		// Preempt the fading instance closest to expiry, if any.
		bestAge := 0.0
		for i := range p.slots {
			age := p.slots[i].age
			if p.stateFor(age) == Fading && age > bestAge {
				bestAge = age
				idx = i
			}
		}
		if idx < 0 {
			return ErrPoolExhausted
		}
		p.occupied--
	}

	p.slots[idx] = slot{occupied: true, x: x, y: y}
	p.occupied++
	return nil
}

// Update advances every occupied instance's age by dt and reclaims the ones
// whose TTL elapsed. Reclaimed slots are immediately reusable.
func (p *Pool) Update(dt float64) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.occupied {
			continue
		}
		s.age += dt
		if s.age >= p.ttl {
			s.occupied = false
			p.occupied--
		}
	}
}

// All returns a lazy, restartable sequence of views over the live instances.
// Iteration never mutates pool state.
func (p *Pool) All() iter.Seq[View] {
	return func(yield func(View) bool) {
		for i := range p.slots {
			s := &p.slots[i]
			if !s.occupied {
				continue
			}
			v := View{
				Kind:  p.kind,
				X:     s.x,
				Y:     s.y,
				State: p.stateFor(s.age),
				Age:   s.age / p.ttl,
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Reset frees every slot. Used during session teardown.
func (p *Pool) Reset() {
	for i := range p.slots {
		p.slots[i] = slot{}
	}
	p.occupied = 0
}

// stateFor maps an instance age onto the lifecycle state.
func (p *Pool) stateFor(age float64) State {
	switch {
	case age >= p.ttl:
		return Dead
	case age < p.ttl*p.spawnFrac:
		return Spawning
	case age >= p.ttl*(1-p.fadeFrac):
		return Fading
	default:
		return Active
	}
}
