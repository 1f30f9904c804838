package audio

import (
	"context"
	"math"

	"github.com/gopxl/beep"
)

// ToneSynth is the bundled synthesis collaborator: it renders a label as a
// short melodic sequence, one note per letter, so every label gets a
// distinct, recognizable jingle. Real text-to-speech backends implement the
// same Synthesizer interface and slot in unchanged.
type ToneSynth struct {
	SampleRate beep.SampleRate // defaults to 44100 when zero
	NoteSecs   float64         // per-note duration, defaults to 0.12
}

const (
	defaultSampleRate = beep.SampleRate(44100)
	defaultNoteSecs   = 0.12
	envelopeSecs      = 0.015 // attack and release ramp
)

// Synthesize renders the label into a buffered clip. It checks ctx between
// notes so a torn-down session abandons the work promptly.
func (t *ToneSynth) Synthesize(ctx context.Context, label string) (Clip, error) {
	sr := t.SampleRate
	if sr == 0 {
		sr = defaultSampleRate
	}
	noteSecs := t.NoteSecs
	if noteSecs <= 0 {
		noteSecs = defaultNoteSecs
	}

	format := beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(format)

	for _, r := range Normalize(label) {
		if err := ctx.Err(); err != nil {
			return Clip{}, err
		}
		freq := noteFreq(r)
		if freq == 0 {
			continue // skip spaces and punctuation
		}
		buf.Append(newToneStreamer(sr, freq, noteSecs))
	}

	return NewClip(buf), nil
}

// noteFreq maps a rune onto a pentatonic scale around middle C.
// Non-letter runes are silent.
func noteFreq(r rune) float64 {
	if r < 'a' || r > 'z' {
		return 0
	}
	// C major pentatonic degrees over two octaves.
	pentatonic := []int{0, 2, 4, 7, 9, 12, 14, 16, 19, 21}
	midi := 60 + pentatonic[int(r-'a')%len(pentatonic)]
	return 440.0 * math.Pow(2, (float64(midi)-69.0)/12.0)
}

// toneStreamer generates an enveloped sine wave of fixed length.
type toneStreamer struct {
	total     int
	pos       int
	phaseInc  float64
	phase     float64
	rampSteps int
}

func newToneStreamer(sr beep.SampleRate, freq, secs float64) *toneStreamer {
	return &toneStreamer{
		total:     int(float64(sr) * secs),
		phaseInc:  freq / float64(sr),
		rampSteps: int(float64(sr) * envelopeSecs),
	}
}

func (s *toneStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.total {
		return 0, false
	}
	for i := range samples {
		if s.pos >= s.total {
			break
		}
		v := math.Sin(2 * math.Pi * s.phase)

		// Attack/release envelope keeps note boundaries click-free.
		vol := 1.0
		if s.rampSteps > 0 {
			if s.pos < s.rampSteps {
				vol = float64(s.pos) / float64(s.rampSteps)
			} else if rem := s.total - s.pos; rem < s.rampSteps {
				vol = float64(rem) / float64(s.rampSteps)
			}
		}
		v *= vol * 0.5

		samples[i][0] = v
		samples[i][1] = v

		s.phase += s.phaseInc
		if s.phase >= 1.0 {
			s.phase -= 1.0
		}
		s.pos++
		n++
	}
	return n, true
}

func (s *toneStreamer) Err() error {
	return nil
}
