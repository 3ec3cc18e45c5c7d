package acq

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Generator produces a simulated input signal: a sine wave around an offset with optional noise.
type Generator struct {
	SampleRate int
	Frequency  float64
	Amplitude  float64
	Offset     float64
	Noise      float64

	// Trigger raises the trigger-phase-ended flag once the pre-trigger area of the buffer is filled.
	Trigger bool

	phase      float64
	random     *rand.Rand
	generation uint64
	triggered  bool
}

func NewGenerator(sampleRate int, frequency float64) *Generator {
	return &Generator{
		SampleRate: sampleRate,
		Frequency:  frequency,
		Amplitude:  MaxRaw / 4,
		Offset:     MaxRaw / 2,
		random:     rand.New(rand.NewPCG(1, 2)),
	}
}

// Next returns the next raw sample, clamped to the ADC range.
func (g *Generator) Next() uint16 {
	value := g.Offset + g.Amplitude*math.Sin(g.phase)
	if g.Noise != 0 {
		value += g.Noise * (2*g.random.Float64() - 1)
	}
	g.phase += 2 * math.Pi * g.Frequency / float64(g.SampleRate)
	if g.phase > 2*math.Pi {
		g.phase -= 2 * math.Pi
	}
	return uint16(max(0, min(math.Round(value), MaxRaw)))
}

// Fill appends up to n samples to the buffer and returns the number of samples that were written.
// In min/max mode, each pair of generated samples is condensed into one max and one min sample.
func (g *Generator) Fill(buf *Buffer, n int) int {
	if generation := buf.Generation(); generation != g.generation {
		g.generation = generation
		g.triggered = false
	}

	written := 0
	for range n {
		var ok bool
		if buf.MinMax() {
			a, b := g.Next(), g.Next()
			ok = buf.AppendMinMax(max(a, b), min(a, b))
		} else {
			ok = buf.Append(g.Next())
		}
		if !ok {
			break
		}
		written++

		if g.Trigger && !g.triggered && buf.NextIn() == buf.Layout().PreTriggerSize {
			g.triggered = true
			buf.SetTriggerPhaseJustEnded()
		}
	}
	return written
}

// Run fills the buffer with chunk samples per interval until the context is done.
func (g *Generator) Run(ctx context.Context, buf *Buffer, chunk int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Fill(buf, chunk)
		}
	}
}
