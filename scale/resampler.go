package scale

import (
	"github.com/ftl/touchdso/acq"
)

// Resampler maps samples onto display columns with a signed ratio:
// negative ratios compress, positive ratios expand, 0 maps 1:1.
// -1 and 1 compress and expand by 1.5.
type Resampler struct {
	ratio   int
	counter int
}

func NewResampler(ratio int) *Resampler {
	result := &Resampler{}
	result.Reset(ratio)
	return result
}

// Reset starts a new pass with the given ratio.
func (r *Resampler) Reset(ratio int) {
	r.ratio = ratio
	r.counter = max(ratio, -ratio)
}

func (r *Resampler) Ratio() int {
	return r.ratio
}

// Next returns the display row of the next column that starts at sample pos and the number of samples
// this column consumed. Positions outside of samples read as invisible.
func (r *Resampler) Next(m Mapper, samples []uint16, pos int) (row uint8, consumed int) {
	switch {
	case r.ratio == 0:
		return m.RawToDisplay(sampleAt(samples, pos)), 1
	case r.ratio < -1:
		n := -r.ratio
		return m.AverageOf(window(samples, pos, n)), n
	case r.ratio == -1:
		r.counter--
		if r.counter < 0 {
			r.counter = 1
			return m.AverageOf(window(samples, pos, 2)), 2
		}
		return m.RawToDisplay(sampleAt(samples, pos)), 1
	case r.ratio == 1:
		row = m.RawToDisplay(sampleAt(samples, pos))
		r.counter--
		if r.counter < 0 {
			r.counter = 2
			return row, 0
		}
		return row, 1
	default:
		row = m.RawToDisplay(sampleAt(samples, pos))
		r.counter--
		if r.counter == 0 {
			r.counter = r.ratio
			return row, 1
		}
		return row, 0
	}
}

// Columns returns the number of columns a pass over length samples produces.
func Columns(ratio int, length int) int {
	if length <= 0 {
		return 0
	}
	switch {
	case ratio == 0:
		return length
	case ratio < -1:
		return (length + -ratio - 1) / -ratio
	case ratio == -1:
		return (2*length + 2) / 3
	case ratio == 1:
		return length + length/2
	default:
		return length * ratio
	}
}

func sampleAt(samples []uint16, pos int) uint16 {
	if pos < 0 || pos >= len(samples) {
		return acq.InvisibleRaw
	}
	return samples[pos]
}

func window(samples []uint16, pos int, n int) []uint16 {
	if pos < 0 || pos >= len(samples) {
		return nil
	}
	return samples[pos:min(pos+n, len(samples))]
}
