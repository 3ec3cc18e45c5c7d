package acq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallLayout() Layout {
	return Layout{
		BufferSize:     8,
		PreTriggerSize: 2,
		FFTSize:        4,
		MinOffset:      4,
		DisplayWidth:   6,
	}
}

func TestLayoutPositions(t *testing.T) {
	layout := DefaultLayout()

	assert.Equal(t, 383, layout.DisplayEnd())
	assert.Equal(t, 319, layout.FFTPosition())
}

func TestBufferAppendUntilFull(t *testing.T) {
	buf := NewBuffer(smallLayout())

	for i := range 8 {
		require.True(t, buf.Append(uint16(i)), "sample %d", i)
	}
	assert.True(t, buf.Full())
	assert.False(t, buf.Append(100))
	assert.Equal(t, 8, buf.NextIn())
	assert.Equal(t, uint16(7), buf.Sample(7))
	assert.Equal(t, InvisibleRaw, buf.Sample(8))
	assert.Equal(t, InvisibleRaw, buf.Sample(-1))
}

func TestBufferAppendMinMax(t *testing.T) {
	buf := NewBuffer(smallLayout())
	buf.Rearm(true)

	for i := range 4 {
		require.True(t, buf.AppendMinMax(uint16(100+i), uint16(i)))
	}
	assert.False(t, buf.AppendMinMax(1, 1))
	assert.True(t, buf.Full())
	assert.Equal(t, uint16(101), buf.Sample(1))
	assert.Equal(t, uint16(1), buf.Sample(1+4))
}

func TestBufferSnapshotHidesUnpublishedSamples(t *testing.T) {
	buf := NewBuffer(smallLayout())
	buf.Rearm(true)
	buf.AppendMinMax(10, 5)
	buf.AppendMinMax(11, 6)

	snapshot := buf.Snapshot(nil)

	assert.Equal(t, []uint16{10, 11, InvisibleRaw, InvisibleRaw, 5, 6, InvisibleRaw, InvisibleRaw}, snapshot)
}

func TestBufferRearm(t *testing.T) {
	buf := NewBuffer(smallLayout())
	generation := buf.Generation()
	buf.Append(1)
	buf.Append(2)
	buf.SetNextDraw(2)
	buf.SetTriggerPhaseJustEnded()

	buf.Rearm(false)

	assert.Equal(t, 0, buf.NextIn())
	assert.Equal(t, 0, buf.NextDraw())
	assert.Equal(t, InvisibleRaw, buf.Sample(0))
	assert.False(t, buf.Invalidated())
	assert.Equal(t, generation+1, buf.Generation())
}

func TestBufferSetNextDrawStaysBehindNextIn(t *testing.T) {
	buf := NewBuffer(smallLayout())
	buf.Append(1)
	buf.Append(2)

	buf.SetNextDraw(5)

	assert.Equal(t, 2, buf.NextDraw())
}

func TestBufferFlags(t *testing.T) {
	buf := NewBuffer(smallLayout())
	assert.False(t, buf.Invalidated())

	buf.SetPreTriggerWrapAround()
	assert.True(t, buf.PreTriggerWrapAround())
	assert.True(t, buf.Invalidated())

	buf.Acknowledge()
	assert.False(t, buf.Invalidated())

	buf.SetTriggerPhaseJustEnded()
	assert.True(t, buf.TriggerPhaseJustEnded())
	assert.True(t, buf.Invalidated())
}
