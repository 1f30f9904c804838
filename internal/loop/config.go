package loop

// Gameplay tuning for the host loop. Session resource ceilings live in the
// TOML config; these constants only shape the feel of the local game.

// Frame timing
const targetFPS = 60

// Crosshair
const (
	CrosshairSpeed = 360.0 // logical units per second
	CrosshairArm   = 6.0   // half-length of each crosshair arm
	popCooldown    = 0.18  // seconds between pops while space is held
)

// Scoring
const (
	ScoreTargetHit   = 100
	ScoreWrongDot    = -25
	ScoreMissedClick = -5
)

// Effects rendering
const (
	explosionMaxRadius = 45.0 // logical units at full age
	trailRadius        = 4.0
)

// Inactivity (SSH sessions)
const (
	InactivityWarnSeconds       = 90
	InactivityDisconnectSeconds = 120
)
