// Package loop provides the host game loop: it steps one session resource
// context per frame, feeds it input-driven destruction events and hands its
// views to the terminal renderer.
package loop

import (
	"bufio"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dotpop-game/dotpop/internal/audio"
	"github.com/dotpop-game/dotpop/internal/config"
	"github.com/dotpop-game/dotpop/internal/draw"
	"github.com/dotpop-game/dotpop/internal/effect"
	"github.com/dotpop-game/dotpop/internal/input"
	"github.com/dotpop-game/dotpop/internal/physics"
	"github.com/dotpop-game/dotpop/internal/session"
	"github.com/dotpop-game/dotpop/internal/sim"
)

const targetFrameTime = time.Second / targetFPS

// Options wires a Run call to its host: configuration, logging, audio and
// terminal plumbing. Zero-value fields fall back to sensible defaults.
type Options struct {
	Config *config.Config
	Logger *log.Logger

	// Player streams ready pronunciations; nil disables local playback
	// (e.g. over SSH, where the host has no speaker to offer).
	Player *audio.Player
	// Synth is the synthesis collaborator handed to each session's cache.
	Synth audio.Synthesizer

	TermSizeFunc draw.TermSizeFunc
	// IdleTimeout disconnects a game that saw no input for this long.
	// Zero disables the check (local play).
	IdleTimeout time.Duration
}

// Run starts the game loop with the standard Input → Update → Draw cycle.
// The active session's resources are released on every exit path, including
// errors, via the deferred teardown.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}

	state := NewState()
	stream := input.StartStream(r)

	draw.HideCursor(w)
	defer draw.ShowCursor(w)
	defer draw.ResetStyle(w)
	draw.ClearScreen(w)

	// Guaranteed release: whatever ends this loop, the session goes with it.
	defer func() {
		endSession(state, opts.Logger)
	}()

	arena := opts.Config.Arena
	termW, termH, err := opts.TermSizeFunc()
	if err != nil {
		return err
	}
	canvas := draw.NewScaledCanvas(termW, termH, arena.Width, arena.Height)
	cw := draw.NewChunkWriter(w, 0, 0)
	layoutCanvas(canvas, cw, termW, termH, arena.Width, arena.Height)

	lastTime := time.Now()

	for state.Running {
		frameStart := time.Now()
		state.Delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		// ===== INPUT PHASE =====
		processInput(state, stream, opts)

		// ===== UPDATE PHASE =====
		if termW, termH, err = opts.TermSizeFunc(); err == nil {
			layoutCanvas(canvas, cw, termW, termH, arena.Width, arena.Height)
		}

		switch state.Phase {
		case PhaseStart:
			updateStartPhase(state, stream, opts)
		case PhasePlaying:
			updatePlayingPhase(state, stream, opts)
		}

		// ===== DRAW PHASE =====
		if err := drawFrame(state, cw, canvas); err != nil {
			return err
		}

		// ===== FRAME TIMING =====
		elapsed := time.Since(frameStart)
		if elapsed < targetFrameTime {
			time.Sleep(targetFrameTime - elapsed)
		}
	}

	draw.ClearScreen(w)
	return nil
}

// processInput reads pending input and handles global keys.
func processInput(state *State, stream *input.Stream, opts Options) {
	state.Input = input.ReadInput(stream)

	now := time.Now()
	if state.Input.Any() {
		state.lastActivity = now
	} else if opts.IdleTimeout > 0 && now.Sub(state.lastActivity) > opts.IdleTimeout {
		state.Running = false
	}
	state.idleWarn = opts.IdleTimeout > 0 &&
		now.Sub(state.lastActivity) > InactivityWarnSeconds*time.Second

	if state.Input.Quit {
		state.Running = false
	}
}

// updatePlayingPhase advances the session and applies gameplay input.
func updatePlayingPhase(state *State, stream *input.Stream, opts Options) {
	dt := state.Delta.Seconds()
	sess := state.Session
	arena := opts.Config.Arena

	if state.Input.Escape {
		endSession(state, opts.Logger)
		state.Phase = PhaseStart
		input.ResetKeyInput(stream)
		return
	}

	// Crosshair movement, clamped to the arena.
	if state.Input.Left {
		state.CrossX -= CrosshairSpeed * dt
	}
	if state.Input.Right {
		state.CrossX += CrosshairSpeed * dt
	}
	if state.Input.Up {
		state.CrossY -= CrosshairSpeed * dt
	}
	if state.Input.Down {
		state.CrossY += CrosshairSpeed * dt
	}
	state.CrossX = physics.Clamp(state.CrossX, 0, arena.Width)
	state.CrossY = physics.Clamp(state.CrossY, 0, arena.Height)

	sess.Tick(dt)

	if state.popTimer > 0 {
		state.popTimer -= dt
	}
	if state.Input.Space && state.popTimer <= 0 {
		state.popTimer = popCooldown
		pop(state, opts)
	}

	// A pop that found the pronunciation still pending retries here until
	// synthesis catches up.
	if state.pronounceArmed {
		if clip, st := sess.Pronounce(state.TargetCategory); st == audio.Ready {
			state.pronounceArmed = false
			if opts.Player != nil {
				opts.Player.Play(clip)
			}
		}
	}

	if sess.TargetsLeft() == 0 {
		nextWave(state)
	}
}

// pop hit-tests the crosshair and reports a destruction to the session.
func pop(state *State, opts Options) {
	sess := state.Session

	id, ok := sess.QueryPoint(state.CrossX, state.CrossY)
	if !ok {
		state.Misses++
		state.Score += ScoreMissedClick
		return
	}

	e, ok := sess.Entity(id)
	if !ok {
		return
	}
	if !e.Target {
		state.Misses++
		state.Score += ScoreWrongDot
		return
	}

	clip, st := sess.NotifyDestroyed(id, e.Category)
	state.Pops++
	state.Score += ScoreTargetHit

	if st == audio.Ready {
		if opts.Player != nil {
			opts.Player.Play(clip)
		}
	} else {
		state.pronounceArmed = true
	}
}

// startGame creates a fresh, fully isolated session for a new run.
func startGame(state *State, opts Options) {
	endSession(state, opts.Logger) // replace any leftover session

	cfg := opts.Config
	cats := cfg.Population.Categories
	target := cats[rand.Intn(len(cats))]

	state.Session = session.New(sessionConfig(cfg, target), opts.Synth)
	state.TargetCategory = target
	state.Phase = PhasePlaying
	state.Score = 0
	state.Wave = 1
	state.Pops = 0
	state.Misses = 0
	state.CrossX = cfg.Arena.Width / 2
	state.CrossY = cfg.Arena.Height / 2
	state.pronounceArmed = false

	// Warm the cache so the first pop already has its word.
	state.Session.Pronounce(target)
}

// nextWave repopulates the arena once every target has been cleared.
func nextWave(state *State) {
	state.Wave++
	state.Session.Repopulate()
}

// endSession tears down the active session, logging its resource stats.
// Safe to call when no session is active.
func endSession(state *State, logger *log.Logger) {
	if state.Session == nil {
		return
	}
	stats := state.Session.Stats()
	state.Session.Cleanup()
	state.Session = nil

	logger.Info("session ended",
		"score", state.Score,
		"waves", state.Wave,
		"destroyed", stats.Destroyed,
		"effects_spawned", stats.EffectsSpawned,
		"effects_dropped", stats.EffectsDropped,
		"cache_hits", stats.CacheHits,
		"cache_misses", stats.CacheMisses,
		"uptime", stats.Uptime.Round(time.Second),
	)
}

// sessionConfig maps the host TOML config onto a session's resource surface.
func sessionConfig(cfg *config.Config, target string) session.Config {
	return session.Config{
		ArenaWidth:  cfg.Arena.Width,
		ArenaHeight: cfg.Arena.Height,
		CellSize:    cfg.Grid.CellSize,
		Population: sim.Config{
			Count:             cfg.Population.Count,
			TargetFraction:    cfg.Population.TargetFraction,
			TargetCategory:    target,
			Categories:        cfg.Population.Categories,
			Radius:            cfg.Population.Radius,
			MinSpeed:          cfg.Population.MinSpeed,
			MaxSpeed:          cfg.Population.MaxSpeed,
			ResolveCollisions: cfg.Population.ResolveCollisions,
		},
		Pools: map[effect.Kind]effect.PoolConfig{
			effect.Explosion: {Capacity: cfg.Effects.Explosion.Capacity, TTL: cfg.Effects.Explosion.TTL},
			effect.Particle:  {Capacity: cfg.Effects.Particle.Capacity, TTL: cfg.Effects.Particle.TTL},
			effect.Trail:     {Capacity: cfg.Effects.Trail.Capacity, TTL: cfg.Effects.Trail.TTL},
		},
		CacheCapacity:  cfg.Audio.CacheCapacity,
		ParticleBurst:  cfg.Effects.ParticleBurst,
		ParticleSpread: cfg.Effects.ParticleSpread,
	}
}

// layoutCanvas sizes the render area to the arena's aspect ratio and centers
// it in the terminal. Half-block rendering makes a terminal cell roughly two
// sub-pixels tall, so round dots need cols/arenaW == 2*rows/arenaH.
func layoutCanvas(canvas *draw.Canvas, cw *draw.ChunkWriter, termW, termH int, arenaW, arenaH float64) {
	availW := termW - 2 // leave room for the border
	availH := termH - 2
	if availW < 20 || availH < 10 {
		availW, availH = termW, termH
	}

	rows := availH
	cols := int(float64(rows) * 2 * arenaW / arenaH)
	if cols > availW {
		cols = availW
		rows = int(float64(cols) * arenaH / (2 * arenaW))
		if rows < 1 {
			rows = 1
		}
	}

	offCol := (termW - cols) / 2
	offRow := (termH - rows) / 2

	canvas.Resize(cols, rows)
	canvas.SetOffset(offCol, offRow)
	cw.SetOffset(offCol, offRow)
}
