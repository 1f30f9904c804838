package loop

import (
	"fmt"

	"github.com/dotpop-game/dotpop/internal/draw"
	"github.com/dotpop-game/dotpop/internal/effect"
	"github.com/dotpop-game/dotpop/internal/input"
	"github.com/dotpop-game/dotpop/internal/sim"
)

// updateStartPhase handles the title screen.
func updateStartPhase(state *State, stream *input.Stream, opts Options) {
	if state.Input.Space || state.Input.Enter {
		input.ResetKeyInput(stream)
		startGame(state, opts)
	}
}

// drawFrame renders the current phase to the terminal.
func drawFrame(state *State, cw *draw.ChunkWriter, canvas *draw.Canvas) error {
	canvas.Clear()

	switch state.Phase {
	case PhaseStart:
		drawStartScreen(state, cw, canvas)
	case PhasePlaying:
		drawPlayingFrame(state, cw, canvas)
	}

	return cw.Flush()
}

// drawStartScreen draws the title screen.
func drawStartScreen(state *State, cw *draw.ChunkWriter, canvas *draw.Canvas) {
	draw.ClearScreen(cw)
	canvas.RenderBorder(cw)

	centerX := canvas.TerminalWidth() / 2
	centerY := canvas.TerminalHeight() / 2

	title := "D O T P O P"
	cw.WriteColoredAt(centerX-len(title)/2, centerY-3, draw.ColorYellow, title)

	subtitle := "Pop every dot of the called color"
	cw.WriteAt(centerX-len(subtitle)/2, centerY-1, subtitle)

	if state.Score != 0 || state.Pops != 0 {
		last := fmt.Sprintf("Last game: %d points, %d pops, %d misses", state.Score, state.Pops, state.Misses)
		cw.WriteAt(centerX-len(last)/2, centerY+1, last)
	}

	prompt := "Press SPACE to start"
	cw.WriteAt(centerX-len(prompt)/2, centerY+3, prompt)

	controls := "Arrows/WASD to move, SPACE to pop, ESC for menu, Q to quit"
	cw.WriteAt(centerX-len(controls)/2, centerY+5, controls)
}

// drawPlayingFrame renders the arena, effects, crosshair and HUD.
func drawPlayingFrame(state *State, cw *draw.ChunkWriter, canvas *draw.Canvas) {
	sess := state.Session

	sess.Entities(func(e sim.Entity) bool {
		canvas.FillCircle(e.X, e.Y, e.Radius, draw.CategoryColor(e.Category))
		return false
	})

	for v := range sess.Effects() {
		switch v.Kind {
		case effect.Explosion:
			canvas.DrawRing(v.X, v.Y, v.Age*explosionMaxRadius, draw.ColorOrange)
		case effect.Particle:
			canvas.SetFloat(v.X, v.Y, draw.ColorSpark)
		case effect.Trail:
			canvas.FillCircle(v.X, v.Y, trailRadius*(1-v.Age), draw.ColorCyan)
		}
	}

	drawCrosshair(state, canvas)

	draw.ClearScreen(cw)
	canvas.Render(cw)
	canvas.RenderBorder(cw)
	drawPlayingHUD(state, cw, canvas)
}

// drawCrosshair draws a plus shape at the crosshair position.
func drawCrosshair(state *State, canvas *draw.Canvas) {
	for d := -CrosshairArm; d <= CrosshairArm; d++ {
		canvas.SetFloat(state.CrossX+d, state.CrossY, draw.ColorWhite)
		canvas.SetFloat(state.CrossX, state.CrossY+d, draw.ColorWhite)
	}
}

// drawPlayingHUD draws score, wave and remaining-target counters, plus the
// target color callout in its own color.
func drawPlayingHUD(state *State, cw *draw.ChunkWriter, canvas *draw.Canvas) {
	termWidth := canvas.TerminalWidth()

	scoreText := fmt.Sprintf("Score: %d", state.Score)
	cw.WriteAt(2, 1, scoreText)

	callout := fmt.Sprintf("POP %s", state.TargetCategory)
	cw.WriteColoredAt(termWidth/2-len(callout)/2, 1, draw.CategoryColor(state.TargetCategory), callout)

	waveText := fmt.Sprintf("Wave %d  Left: %d", state.Wave, state.Session.TargetsLeft())
	cw.WriteAt(termWidth-len(waveText)-1, 1, waveText)

	if state.idleWarn {
		warn := "Idle - disconnecting soon, press any key"
		cw.WriteColoredAt(termWidth/2-len(warn)/2, canvas.TerminalHeight()-1, draw.ColorRed, warn)
	}
}
