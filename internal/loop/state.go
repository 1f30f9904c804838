package loop

import (
	"time"

	"github.com/dotpop-game/dotpop/internal/input"
	"github.com/dotpop-game/dotpop/internal/session"
)

// Phase represents the current screen of the game.
type Phase int

const (
	PhaseStart   Phase = iota // Title screen
	PhasePlaying              // Active gameplay
)

// State holds everything one running game needs between frames. Each Run
// call owns its own State; nothing is shared between concurrent games.
type State struct {
	Phase   Phase
	Running bool
	Input   input.Input
	Delta   time.Duration

	// Session is the per-level resource context. Nil outside PhasePlaying.
	Session *session.Context

	TargetCategory string
	Score          int
	Wave           int
	Pops           int
	Misses         int

	// Crosshair position in logical (arena) coordinates.
	CrossX, CrossY float64
	popTimer       float64

	// pronounceArmed retries playback of the target word once synthesis
	// catches up with the first pop.
	pronounceArmed bool

	lastActivity time.Time
	idleWarn     bool
}

// NewState creates the initial pre-game state.
func NewState() *State {
	return &State{
		Phase:        PhaseStart,
		Running:      true,
		Wave:         0,
		lastActivity: time.Now(),
	}
}
