// Package screen keeps track of what is currently drawn on the display and provides the surfaces to draw on.
package screen

// Invisible is the row of a column where nothing is drawn.
const Invisible uint8 = 0xFF

type Trace int

const (
	Primary Trace = iota
	Secondary
	TriggerLine
	traceCount
)

func (t Trace) String() string {
	switch t {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case TriggerLine:
		return "trigger"
	default:
		return "unknown"
	}
}

// Buffer holds the row last drawn at each column, per trace.
// It is allocated once with a fixed width and overwritten in place.
type Buffer struct {
	width  int
	traces [traceCount][]uint8
}

func NewBuffer(width int) *Buffer {
	result := &Buffer{width: width}
	for i := range result.traces {
		result.traces[i] = make([]uint8, width)
	}
	result.Reset()
	return result
}

func (b *Buffer) Width() int {
	return b.width
}

// Row returns the row stored for the given column, Invisible outside of the buffer.
func (b *Buffer) Row(trace Trace, x int) uint8 {
	if x < 0 || x >= b.width {
		return Invisible
	}
	return b.traces[trace][x]
}

func (b *Buffer) SetRow(trace Trace, x int, row uint8) {
	if x < 0 || x >= b.width {
		return
	}
	b.traces[trace][x] = row
}

// Rows returns a copy of the given trace.
func (b *Buffer) Rows(trace Trace) []uint8 {
	result := make([]uint8, b.width)
	copy(result, b.traces[trace])
	return result
}

func (b *Buffer) ResetTrace(trace Trace) {
	rows := b.traces[trace]
	for i := range rows {
		rows[i] = Invisible
	}
}

func (b *Buffer) Reset() {
	for trace := range traceCount {
		b.ResetTrace(trace)
	}
}
