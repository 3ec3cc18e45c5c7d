package render

import (
	"image/color"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/screen"
)

// StreamingRenderer draws the samples of a running acquisition, one column per sample, as soon as they
// are published. The column wraps around at the display width.
type StreamingRenderer struct {
	canvas        *Canvas
	column        int
	onFFTPosition func()
}

func NewStreamingRenderer(canvas *Canvas) *StreamingRenderer {
	return &StreamingRenderer{
		canvas: canvas,
	}
}

// OnFFTPosition registers a callback that is raised when the sample that completes the first FFT window is drawn.
func (r *StreamingRenderer) OnFFTPosition(callback func()) {
	r.onFFTPosition = callback
}

// Reset starts the next sweep at column 0.
func (r *StreamingRenderer) Reset() {
	r.column = 0
}

// Column is the column of the next sample.
func (r *StreamingRenderer) Column() int {
	return r.column
}

func (r *StreamingRenderer) SetColumn(x int) {
	r.column = x
}

// Drain draws all published samples that are not drawn yet, but not more than the display region of the buffer.
// It stops immediately if the buffer is invalidated by a trigger or a wrap-around of the pre-trigger area.
// Returns the number of drawn samples.
func (r *StreamingRenderer) Drain(m *acq.Measurement, buf *acq.Buffer, drawColor color.RGBA) int {
	c := r.canvas
	layout := buf.Layout()
	width := c.Layout.Width
	mapper := c.Mapper(m)
	minMax := m.MinMaxMode
	eraseColor := c.Palette.Background

	drained := 0
	for buf.NextDraw() < buf.NextIn() && buf.NextDraw() <= layout.DisplayEnd() && !buf.Invalidated() {
		index := buf.NextDraw()
		if index == layout.FFTPosition() && r.onFFTPosition != nil {
			r.onFFTPosition()
		}

		x := r.column
		if x >= width {
			x = 0
		}
		r.column = x + 1

		r.erase(x, screen.Primary, eraseColor)
		if minMax {
			r.erase(x, screen.Secondary, eraseColor)
		}

		row := mapper.RawToDisplay(buf.Sample(index))
		c.Screen.SetRow(screen.Primary, x, row)
		r.draw(x, screen.Primary, row, drawColor)
		if minMax {
			minRow := mapper.RawToDisplay(buf.Sample(index + layout.MinOffset))
			c.Screen.SetRow(screen.Secondary, x, minRow)
			r.draw(x, screen.Secondary, minRow, drawColor)
		}

		c.tracer.Trace(traceContext, "stream index=%d x=%d row=%d\n", index, x, row)
		buf.Advance()
		drained++
	}
	return drained
}

func (r *StreamingRenderer) erase(x int, trace screen.Trace, eraseColor color.RGBA) {
	c := r.canvas
	old := c.Screen.Row(trace, x)

	if c.Options.PixelMode {
		if visible(old) {
			c.Surface.DrawPixel(x, int(old), c.pixelEraseColor(x, eraseColor))
		}
		return
	}

	next := screen.Invisible
	if x < c.Layout.Width-1 {
		next = c.Screen.Row(trace, x+1)
		c.eraseAhead(x, old, next, eraseColor)
	}
	if visible(old) && !visible(next) {
		c.Surface.DrawPixel(x, int(old), eraseColor)
	}
}

func (r *StreamingRenderer) draw(x int, trace screen.Trace, row uint8, drawColor color.RGBA) {
	if !visible(row) {
		return
	}
	c := r.canvas
	if c.Options.PixelMode || x == 0 {
		c.Surface.DrawPixel(x, int(row), drawColor)
		return
	}
	last := c.Screen.Row(trace, x-1)
	if visible(last) {
		c.Surface.DrawLine(x-1, int(last), x, int(row), drawColor)
	} else {
		c.Surface.DrawPixel(x, int(row), drawColor)
	}
}
