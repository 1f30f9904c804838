package draw

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Canvas is a color drawing buffer with 2x vertical resolution using
// half-block characters. Each sub-pixel holds a palette color; rendering
// pairs the top and bottom sub-pixel of a terminal cell into one glyph with
// foreground and background colors. Supports scaling from logical (arena)
// coordinates to actual terminal pixels.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []Color // Flat slice: [y * termWidth + x], ColorNone if empty

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	// Offset for centering the render area when the terminal is larger than
	// the render resolution. 0-based terminal offsets.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder // Reusable buffer for batching render output
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to
// terminal pixels. logicalWidth/Height define the coordinate space used by
// the session (arena units); termWidth/Height are terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	subPixelHeight := termHeight * 2
	return &Canvas{
		termWidth:      termWidth,
		termHeight:     termHeight,
		subPixelHeight: subPixelHeight,
		pixels:         make([]Color, subPixelHeight*termWidth),
		logicalWidth:   logicalWidth,
		logicalHeight:  logicalHeight,
		scaleX:         float64(termWidth) / logicalWidth,
		scaleY:         float64(subPixelHeight) / logicalHeight,
	}
}

// Resize updates the canvas for new terminal dimensions, keeping the
// logical coordinate space.
func (c *Canvas) Resize(termWidth, termHeight int) {
	subPixelHeight := termHeight * 2

	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]Color, subPixelHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}

	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based: the canvas starts at terminal cell (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// Clear resets all pixels.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// setPixel colors a pixel at terminal sub-pixel coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = col
	}
}

// SetFloat colors a pixel at logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64, col Color) {
	px := int(math.Round(x * c.scaleX))
	py := int(math.Round(y * c.scaleY))
	c.setPixel(px, py, col)
}

// FillCircle fills a circle given in logical coordinates. The radius scales
// with the horizontal axis; the vertical half-block resolution keeps circles
// round on typical terminal fonts.
func (c *Canvas) FillCircle(cx, cy, radius float64, col Color) {
	pcx := cx * c.scaleX
	pcy := cy * c.scaleY
	prx := radius * c.scaleX
	pry := radius * c.scaleY

	if prx < 0.5 || pry < 0.5 {
		c.setPixel(int(math.Round(pcx)), int(math.Round(pcy)), col)
		return
	}

	yStart := int(math.Floor(pcy - pry))
	yEnd := int(math.Ceil(pcy + pry))
	for y := yStart; y <= yEnd; y++ {
		// Horizontal span of the ellipse at this scanline.
		dy := (float64(y) - pcy) / pry
		if dy < -1 || dy > 1 {
			continue
		}
		span := prx * math.Sqrt(1-dy*dy)
		xStart := int(math.Ceil(pcx - span))
		xEnd := int(math.Floor(pcx + span))
		for x := xStart; x <= xEnd; x++ {
			c.setPixel(x, y, col)
		}
	}
}

// DrawRing draws a one-pixel circle outline in logical coordinates.
// Used for expanding explosion fronts.
func (c *Canvas) DrawRing(cx, cy, radius float64, col Color) {
	pcx := cx * c.scaleX
	pcy := cy * c.scaleY
	prx := radius * c.scaleX
	pry := radius * c.scaleY

	// Step small enough that adjacent samples land on neighboring pixels.
	circ := 2 * math.Pi * math.Max(prx, pry)
	steps := int(circ) + 8
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Round(pcx + math.Cos(a)*prx))
		y := int(math.Round(pcy + math.Sin(a)*pry))
		c.setPixel(x, y, col)
	}
}

// maxChunkSize is the maximum bytes to write at once for smooth network
// flow over SSH. 1400 bytes stays under typical MTU.
const maxChunkSize = 1400

// Render outputs the canvas using colored half-block characters. Cells whose
// sub-pixels are both empty are skipped entirely.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 16)

	for row := 0; row < c.termHeight; row++ {
		topOffset := (row * 2) * c.termWidth
		bottomOffset := (row*2 + 1) * c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			var bottom Color
			if row*2+1 < c.subPixelHeight {
				bottom = c.pixels[bottomOffset+col]
			}

			if top == ColorNone && bottom == ColorNone {
				continue
			}

			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH", row+1+c.offsetRow, col+1+c.offsetCol)
			switch {
			case top != ColorNone && bottom != ColorNone:
				fmt.Fprintf(&c.renderBuf, "\033[38;5;%d;48;5;%dm▀", ansi256[top], ansi256[bottom])
			case top != ColorNone:
				fmt.Fprintf(&c.renderBuf, "\033[0m\033[38;5;%dm▀", ansi256[top])
			default:
				fmt.Fprintf(&c.renderBuf, "\033[0m\033[38;5;%dm▄", ansi256[bottom])
			}
		}
	}
	c.renderBuf.WriteString("\033[0m")

	// Write output in chunks for optimal network flow.
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1
	if !hasH && !hasV {
		return
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	buf.Grow((c.termWidth+2)*2 + c.termHeight*2*12)
	buf.WriteString("\033[0m")

	if hasV {
		if hasH {
			fmt.Fprintf(&buf, "\033[%d;%dH┌%s┐", top, left, strings.Repeat("─", c.termWidth))
			fmt.Fprintf(&buf, "\033[%d;%dH└%s┘", bottom, left, strings.Repeat("─", c.termWidth))
		} else {
			fmt.Fprintf(&buf, "\033[%d;%dH%s", top, c.offsetCol+1, strings.Repeat("─", c.termWidth))
			fmt.Fprintf(&buf, "\033[%d;%dH%s", bottom, c.offsetCol+1, strings.Repeat("─", c.termWidth))
		}
	}

	if hasH {
		startRow := top + 1
		endRow := bottom
		if !hasV {
			startRow = c.offsetRow + 1
			endRow = c.offsetRow + c.termHeight + 1
		}
		for row := startRow; row < endRow; row++ {
			fmt.Fprintf(&buf, "\033[%d;%dH│\033[%d;%dH│", row, left, row, right)
		}
	}

	io.WriteString(w, buf.String())
}

// TerminalWidth returns the terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}
