package audio

import "github.com/gopxl/beep"

// Clip is an opaque, renderable pronunciation handle. The cache owns the
// underlying buffer; callers stream from it but never duplicate it.
type Clip struct {
	buf *beep.Buffer
}

// NewClip wraps a decoded or synthesized audio buffer.
func NewClip(buf *beep.Buffer) Clip {
	return Clip{buf: buf}
}

// Empty reports whether the clip holds no audio.
func (c Clip) Empty() bool {
	return c.buf == nil || c.buf.Len() == 0
}

// Format returns the sample format of the underlying buffer.
func (c Clip) Format() beep.Format {
	if c.buf == nil {
		return beep.Format{}
	}
	return c.buf.Format()
}

// Streamer returns a fresh streamer over the whole clip. Each call gives an
// independent playback position, so a clip can play repeatedly.
func (c Clip) Streamer() beep.StreamSeeker {
	if c.buf == nil {
		return nil
	}
	return c.buf.Streamer(0, c.buf.Len())
}
