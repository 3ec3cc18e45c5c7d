package acq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawFromFloat(t *testing.T) {
	tt := []struct {
		value    float32
		expected uint16
	}{
		{-1, 0},
		{-2, 0},
		{0, 2048},
		{1, MaxRaw},
		{1.5, MaxRaw},
	}
	for _, tc := range tt {
		assert.Equal(t, tc.expected, RawFromFloat(tc.value), "%v", tc.value)
	}
}

func TestFloatWriterUsesTheFirstChannel(t *testing.T) {
	buf := NewBuffer(smallLayout())
	w := NewFloatWriter(buf, 2)

	n, err := w.Write([]float32{-1, 1, 1, -1, 0, 1})

	assert.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 3, buf.NextIn())
	assert.Equal(t, []uint16{0, MaxRaw, 2048}, []uint16{buf.Sample(0), buf.Sample(1), buf.Sample(2)})
}

func TestFloatWriterDropsWhenFull(t *testing.T) {
	buf := NewBuffer(smallLayout())
	w := NewFloatWriter(buf, 1)

	n, err := w.Write(make([]float32, 3*buf.Layout().BufferSize))

	assert.NoError(t, err)
	assert.Equal(t, 3*buf.Layout().BufferSize, n)
	assert.True(t, buf.Full())
}
