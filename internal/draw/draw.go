package draw

import (
	"fmt"
	"io"
)

// Color is an index into the game palette. Zero means empty/background.
type Color uint8

// Palette entries map onto xterm-256 color codes.
const (
	ColorNone Color = iota
	ColorRed
	ColorBlue
	ColorGreen
	ColorYellow
	ColorPurple
	ColorOrange
	ColorSpark
	ColorCyan
	ColorWhite
	colorCount
)

// ansi256 holds the xterm-256 code for each palette entry.
var ansi256 = [colorCount]uint8{
	ColorNone:   0,
	ColorRed:    196,
	ColorBlue:   33,
	ColorGreen:  46,
	ColorYellow: 226,
	ColorPurple: 129,
	ColorOrange: 208,
	ColorSpark:  220,
	ColorCyan:   45,
	ColorWhite:  15,
}

// categoryColors maps category names from session config onto the palette.
var categoryColors = map[string]Color{
	"red":    ColorRed,
	"blue":   ColorBlue,
	"green":  ColorGreen,
	"yellow": ColorYellow,
	"purple": ColorPurple,
	"orange": ColorOrange,
	"cyan":   ColorCyan,
	"white":  ColorWhite,
}

// CategoryColor returns the palette color for a category name, defaulting to
// white for unknown categories.
func CategoryColor(name string) Color {
	if c, ok := categoryColors[name]; ok {
		return c
	}
	return ColorWhite
}

// Foreground returns the ANSI sequence selecting this color as foreground.
func (c Color) Foreground() string {
	return fmt.Sprintf("\033[38;5;%dm", ansi256[c])
}

// ClearScreen clears the terminal and moves cursor to top-left.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25h")
}

// ResetStyle clears any active color attributes.
func ResetStyle(w io.Writer) {
	fmt.Fprint(w, "\033[0m")
}
