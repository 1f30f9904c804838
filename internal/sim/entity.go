package sim

// Entity is one bouncing circle in the arena. Entities are owned exclusively
// by the Simulation; the spatial index and gameplay logic refer to them by ID.
// IDs are unique within a session and double as the index into the
// simulation's entity slice.
type Entity struct {
	ID       int
	X, Y     float64
	VX, VY   float64
	Radius   float64
	Category string
	Target   bool
	Alive    bool
}
