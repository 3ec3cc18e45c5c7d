package acq

import "sync/atomic"

// Layout of the acquisition buffer.
type Layout struct {
	BufferSize     int
	PreTriggerSize int
	FFTSize        int
	MinOffset      int
	DisplayWidth   int
}

func DefaultLayout() Layout {
	return Layout{
		BufferSize:     960,
		PreTriggerSize: 64,
		FFTSize:        256,
		MinOffset:      480,
		DisplayWidth:   320,
	}
}

// DisplayEnd is the last buffer index that is drawn while acquiring.
func (l Layout) DisplayEnd() int {
	return l.PreTriggerSize + l.DisplayWidth - 1
}

// FFTPosition is the buffer index at which the first FFT window is complete.
func (l Layout) FFTPosition() int {
	return l.PreTriggerSize + l.FFTSize - 1
}

// Buffer is the sample storage shared between one producer and the renderer.
// The producer writes a sample first and publishes it by advancing the next-in cursor,
// the renderer never reads at or beyond the published next-in cursor.
type Buffer struct {
	layout  Layout
	samples []uint16
	minMax  atomic.Bool

	nextIn atomic.Int64
	limit  atomic.Int64

	nextDraw     int
	displayStart int

	triggerPhaseJustEnded atomic.Bool
	preTriggerWrapAround  atomic.Bool
	generation            atomic.Uint64
}

func NewBuffer(layout Layout) *Buffer {
	result := &Buffer{
		layout:  layout,
		samples: make([]uint16, layout.BufferSize),
	}
	result.Rearm(false)
	return result
}

func (b *Buffer) Layout() Layout {
	return b.layout
}

// Rearm clears the buffer for the next acquisition. It must only be called when the producer is idle,
// i.e. before it is started or after the buffer is full. The limit is loaded before the next-in cursor
// on the producer side, so a producer that is still polling a full buffer never writes into the cleared one
// with a stale cursor.
func (b *Buffer) Rearm(minMax bool) {
	b.limit.Store(0)
	for i := range b.samples {
		b.samples[i] = InvisibleRaw
	}
	b.minMax.Store(minMax)
	b.nextDraw = b.displayStart
	b.triggerPhaseJustEnded.Store(false)
	b.preTriggerWrapAround.Store(false)
	b.generation.Add(1)
	b.nextIn.Store(0)
	if minMax {
		b.limit.Store(int64(min(b.layout.MinOffset, b.layout.BufferSize-b.layout.MinOffset)))
	} else {
		b.limit.Store(int64(b.layout.BufferSize))
	}
}

func (b *Buffer) MinMax() bool {
	return b.minMax.Load()
}

func (b *Buffer) Generation() uint64 {
	return b.generation.Load()
}

// Append one sample. Returns false if the buffer is full and the sample was dropped.
func (b *Buffer) Append(raw uint16) bool {
	limit := b.limit.Load()
	n := b.nextIn.Load()
	if n >= limit {
		return false
	}
	b.samples[n] = raw
	b.nextIn.Store(n + 1)
	return true
}

// AppendMinMax appends a pair of maximum and minimum samples, the minimum is stored at the min offset.
func (b *Buffer) AppendMinMax(maxRaw, minRaw uint16) bool {
	limit := b.limit.Load()
	n := b.nextIn.Load()
	if n >= limit {
		return false
	}
	b.samples[n] = maxRaw
	b.samples[n+int64(b.layout.MinOffset)] = minRaw
	b.nextIn.Store(n + 1)
	return true
}

// NextIn is one past the last published sample.
func (b *Buffer) NextIn() int {
	return int(b.nextIn.Load())
}

func (b *Buffer) Full() bool {
	return b.nextIn.Load() >= b.limit.Load()
}

func (b *Buffer) NextDraw() int {
	return b.nextDraw
}

func (b *Buffer) SetNextDraw(index int) {
	b.nextDraw = max(b.displayStart, min(index, b.NextIn()))
}

func (b *Buffer) Advance() {
	b.nextDraw++
}

func (b *Buffer) DisplayStart() int {
	return b.displayStart
}

// Sample at the given index, InvisibleRaw outside of the buffer.
func (b *Buffer) Sample(index int) uint16 {
	if index < 0 || index >= len(b.samples) {
		return InvisibleRaw
	}
	return b.samples[index]
}

// Snapshot copies all published samples into dst, unpublished positions are invisible.
func (b *Buffer) Snapshot(dst []uint16) []uint16 {
	n := b.NextIn()
	if cap(dst) < len(b.samples) {
		dst = make([]uint16, len(b.samples))
	}
	dst = dst[:len(b.samples)]
	for i := range dst {
		dst[i] = InvisibleRaw
	}
	copy(dst[:n], b.samples[:n])
	if b.minMax.Load() {
		offset := b.layout.MinOffset
		copy(dst[offset:offset+n], b.samples[offset:offset+n])
	}
	return dst
}

func (b *Buffer) SetTriggerPhaseJustEnded() {
	b.triggerPhaseJustEnded.Store(true)
}

func (b *Buffer) TriggerPhaseJustEnded() bool {
	return b.triggerPhaseJustEnded.Load()
}

func (b *Buffer) SetPreTriggerWrapAround() {
	b.preTriggerWrapAround.Store(true)
}

func (b *Buffer) PreTriggerWrapAround() bool {
	return b.preTriggerWrapAround.Load()
}

// Invalidated indicates that positional assumptions about the published samples do not hold anymore.
func (b *Buffer) Invalidated() bool {
	return b.triggerPhaseJustEnded.Load() || b.preTriggerWrapAround.Load()
}

// Acknowledge resets the trigger and wrap-around flags after the renderer resynchronized.
func (b *Buffer) Acknowledge() {
	b.triggerPhaseJustEnded.Store(false)
	b.preTriggerWrapAround.Store(false)
}
