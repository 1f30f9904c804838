package effect

import (
	"errors"
	"testing"
)

// TestSpawnCapacity verifies that six spawns into a capacity-5 pool leave
// exactly five occupied slots and the sixth fails without crashing.
func TestSpawnCapacity(t *testing.T) {
	p := NewPool(Explosion, PoolConfig{Capacity: 5, TTL: 1.0})

	for i := 0; i < 5; i++ {
		if err := p.Spawn(float64(i), 0); err != nil {
			t.Fatalf("Spawn %d failed unexpectedly: %v", i, err)
		}
	}
	if p.Occupied() != 5 {
		t.Errorf("Expected 5 occupied slots, got %d", p.Occupied())
	}

	err := p.Spawn(9, 9)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("Expected ErrPoolExhausted on sixth spawn, got %v", err)
	}
	if p.Occupied() != 5 {
		t.Errorf("Occupancy must stay at capacity, got %d", p.Occupied())
	}
}

// TestOccupiedNeverExceedsCapacity holds across interleaved spawns/updates.
func TestOccupiedNeverExceedsCapacity(t *testing.T) {
	p := NewPool(Particle, PoolConfig{Capacity: 8, TTL: 0.5})

	for step := 0; step < 100; step++ {
		_ = p.Spawn(float64(step), 0)
		if p.Occupied() > p.Capacity() {
			t.Fatalf("Occupied %d exceeds capacity %d after spawn", p.Occupied(), p.Capacity())
		}
		p.Update(0.05)
		if p.Occupied() > p.Capacity() {
			t.Fatalf("Occupied %d exceeds capacity %d after update", p.Occupied(), p.Capacity())
		}
	}
}

// TestLifecycleTransitions walks one instance through
// Spawning -> Active -> Fading -> reclaimed.
func TestLifecycleTransitions(t *testing.T) {
	p := NewPool(Explosion, PoolConfig{Capacity: 1, TTL: 1.0})
	if err := p.Spawn(10, 20); err != nil {
		t.Fatal(err)
	}

	stateOf := func() State {
		for v := range p.All() {
			return v.State
		}
		t.Fatal("Expected a live instance")
		return Dead
	}

	if got := stateOf(); got != Spawning {
		t.Errorf("Expected Spawning at age 0, got %v", got)
	}

	p.Update(0.2) // age 0.2: past the 10% spawn window
	if got := stateOf(); got != Active {
		t.Errorf("Expected Active at age 0.2, got %v", got)
	}

	p.Update(0.55) // age 0.75: inside the last 30%
	if got := stateOf(); got != Fading {
		t.Errorf("Expected Fading at age 0.75, got %v", got)
	}

	p.Update(0.3) // age 1.05: expired and reclaimed
	if p.Occupied() != 0 {
		t.Errorf("Expected slot reclaimed after TTL, got %d occupied", p.Occupied())
	}

	// Reclaimed slot is immediately reusable.
	if err := p.Spawn(0, 0); err != nil {
		t.Errorf("Expected reuse of reclaimed slot, got %v", err)
	}
}

// TestPreemptOldestFading verifies a full pool preempts the fading instance
// closest to expiry rather than dropping the spawn.
func TestPreemptOldestFading(t *testing.T) {
	p := NewPool(Explosion, PoolConfig{Capacity: 2, TTL: 1.0})
	_ = p.Spawn(1, 0)
	p.Update(0.1) // first instance older
	_ = p.Spawn(2, 0)
	p.Update(0.75) // ages 0.85 and 0.75: both Fading

	if err := p.Spawn(3, 0); err != nil {
		t.Fatalf("Expected preemption of a fading slot, got %v", err)
	}
	if p.Occupied() != 2 {
		t.Errorf("Expected occupancy to stay at 2, got %d", p.Occupied())
	}

	// The oldest (age 0.85) must be gone; the age-0.75 one survives.
	var ages []float64
	for v := range p.All() {
		ages = append(ages, v.Age)
	}
	for _, a := range ages {
		if a > 0.8 {
			t.Errorf("Expected the oldest-expiring instance preempted, found age %v", a)
		}
	}
	if len(ages) != 2 {
		t.Errorf("Expected 2 live instances, got %d", len(ages))
	}
}

// TestAllIsRestartable verifies the view sequence can be iterated repeatedly
// without mutating state.
func TestAllIsRestartable(t *testing.T) {
	p := NewPool(Trail, PoolConfig{Capacity: 4, TTL: 1.0})
	_ = p.Spawn(1, 1)
	_ = p.Spawn(2, 2)

	count := func() int {
		n := 0
		for range p.All() {
			n++
		}
		return n
	}

	if count() != 2 || count() != 2 {
		t.Error("Expected restartable iteration yielding 2 views each time")
	}
	if p.Occupied() != 2 {
		t.Errorf("Iteration must not mutate occupancy, got %d", p.Occupied())
	}

	// Early break is allowed.
	for range p.All() {
		break
	}
	if count() != 2 {
		t.Error("Expected full iteration after an early break")
	}
}

// TestViewFields verifies positions and normalized ages in views.
func TestViewFields(t *testing.T) {
	p := NewPool(Explosion, PoolConfig{Capacity: 1, TTL: 2.0})
	_ = p.Spawn(42, 24)
	p.Update(1.0)

	for v := range p.All() {
		if v.Kind != Explosion {
			t.Errorf("Expected kind explosion, got %v", v.Kind)
		}
		if v.X != 42 || v.Y != 24 {
			t.Errorf("Expected position (42,24), got (%v,%v)", v.X, v.Y)
		}
		if v.Age != 0.5 {
			t.Errorf("Expected normalized age 0.5, got %v", v.Age)
		}
	}
}

func TestReset(t *testing.T) {
	p := NewPool(Particle, PoolConfig{Capacity: 3, TTL: 1.0})
	_ = p.Spawn(1, 1)
	_ = p.Spawn(2, 2)
	p.Reset()

	if p.Occupied() != 0 {
		t.Errorf("Expected 0 occupied after reset, got %d", p.Occupied())
	}
	for range p.All() {
		t.Error("Expected no live instances after reset")
	}
}
