package acq

import "math"

// RawFromFloat converts an audio sample in [-1, 1] into a raw ADC value, 0 is the center of the ADC range.
func RawFromFloat(v float32) uint16 {
	raw := math.Round((float64(v) + 1) / 2 * MaxRaw)
	return uint16(max(0, min(raw, MaxRaw)))
}

// FloatWriter appends interleaved float samples to the buffer, using the first channel only.
// Samples are dropped while the buffer is full.
type FloatWriter struct {
	buf      *Buffer
	channels int
}

func NewFloatWriter(buf *Buffer, channels int) *FloatWriter {
	return &FloatWriter{
		buf:      buf,
		channels: max(1, channels),
	}
}

func (w *FloatWriter) SetChannelCount(channels int) {
	w.channels = max(1, channels)
}

// Write implements the float32 writer of an audio stream, it always consumes all samples.
func (w *FloatWriter) Write(samples []float32) (int, error) {
	for i := 0; i < len(samples); i += w.channels {
		if !w.buf.Append(RawFromFloat(samples[i])) {
			break
		}
	}
	return len(samples), nil
}
