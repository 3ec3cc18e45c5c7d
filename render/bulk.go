package render

import (
	"image/color"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/scale"
	"github.com/ftl/touchdso/screen"
)

type DrawMode int

const (
	// DrawRegular draws the trace, it erases only if an erase color is given.
	DrawRegular DrawMode = iota
	// DrawClearOld erases the stored primary trace while drawing the new one.
	DrawClearOld
	// DrawClearOldMin erases the stored min trace while drawing the new min trace.
	DrawClearOldMin
)

func (m DrawMode) String() string {
	switch m {
	case DrawRegular:
		return "regular"
	case DrawClearOld:
		return "clear old"
	case DrawClearOldMin:
		return "clear old min"
	default:
		return "unknown"
	}
}

// BulkRenderer draws complete sample arrays.
type BulkRenderer struct {
	canvas    *Canvas
	minOffset int
	resampler *scale.Resampler
}

func NewBulkRenderer(canvas *Canvas, layout acq.Layout) *BulkRenderer {
	return &BulkRenderer{
		canvas:    canvas,
		minOffset: layout.MinOffset,
		resampler: scale.NewResampler(0),
	}
}

// Render draws the first length samples, resampled with the x scale of the canvas options.
// The min samples are taken from the min offset of the samples.
// Returns the number of columns drawn by the primary pass.
func (r *BulkRenderer) Render(m *acq.Measurement, samples []uint16, length int, drawColor, eraseColor color.RGBA, mode DrawMode, alsoMin bool) int {
	return r.RenderAt(r.canvas.Options.XScale, m, samples, length, drawColor, eraseColor, mode, alsoMin)
}

// RenderAt is Render with the given resampling ratio instead of the x scale of the canvas options.
func (r *BulkRenderer) RenderAt(ratio int, m *acq.Measurement, samples []uint16, length int, drawColor, eraseColor color.RGBA, mode DrawMode, alsoMin bool) int {
	erasing := eraseColor != NoColor || mode != DrawRegular
	if eraseColor == NoColor {
		eraseColor = r.canvas.Palette.Background
	}
	mapper := r.canvas.Mapper(m)
	p := pass{
		ratio:      ratio,
		mapper:     mapper,
		drawColor:  drawColor,
		eraseColor: eraseColor,
		erasing:    erasing,
	}

	if mode == DrawClearOldMin {
		p.trace = screen.Secondary
		return r.pass(p, minSamples(samples, r.minOffset), length)
	}

	p.trace = screen.Primary
	if r.canvas.Options.TriggerInfoLine {
		p.triggerInfo = true
		p.triggerRow = mapper.RawToDisplay(m.TriggerLevel)
	}
	columns := r.pass(p, samples, length)

	if alsoMin {
		p.trace = screen.Secondary
		p.triggerInfo = false
		r.pass(p, minSamples(samples, r.minOffset), length)
	}
	return columns
}

type pass struct {
	ratio       int
	mapper      scale.Mapper
	trace       screen.Trace
	drawColor   color.RGBA
	eraseColor  color.RGBA
	erasing     bool
	triggerInfo bool
	triggerRow  uint8
}

func (r *BulkRenderer) pass(p pass, samples []uint16, length int) int {
	c := r.canvas
	s := c.Surface
	width := c.Layout.Width
	length = max(0, min(length, len(samples)))
	samples = samples[:length]
	r.resampler.Reset(p.ratio)

	last := screen.Invisible
	lastOld := screen.Invisible
	pos := 0
	x := 0
	for ; x < width && pos < length; x++ {
		row, consumed := r.resampler.Next(p.mapper, samples, pos)
		pos += consumed
		old := c.Screen.Row(p.trace, x)

		if p.triggerInfo {
			r.drawTriggerInfo(p, x, row)
		}

		if c.Options.PixelMode || x == 0 {
			if p.erasing {
				if visible(old) {
					s.DrawPixel(x, int(old), c.pixelEraseColor(x, p.eraseColor))
				}
				if !c.Options.PixelMode {
					lastOld = c.Screen.Row(p.trace, 1)
					c.eraseAhead(0, old, lastOld, p.eraseColor)
				}
			}
			if visible(row) {
				s.DrawPixel(x, int(row), p.drawColor)
			}
		} else {
			if p.erasing && x < width-1 {
				nextOld := c.Screen.Row(p.trace, x+1)
				c.eraseAhead(x, lastOld, nextOld, p.eraseColor)
				lastOld = nextOld
			}
			if visible(row) {
				if visible(last) {
					lineColor := p.drawColor
					if last == row && (int(row) == c.Layout.ZeroRow || row == 0) {
						lineColor = c.Palette.Clipping
					}
					s.DrawLine(x-1, int(last), x, int(row), lineColor)
				} else {
					s.DrawPixel(x, int(row), p.drawColor)
				}
			}
		}

		last = row
		c.Screen.SetRow(p.trace, x, row)
	}

	c.tracer.Trace(traceContext, "bulk %s ratio=%d samples=%d columns=%d\n", p.trace, r.resampler.Ratio(), pos, x)
	return x
}

func (r *BulkRenderer) drawTriggerInfo(p pass, x int, row uint8) {
	c := r.canvas
	old := c.Screen.Row(screen.TriggerLine, x)
	if p.erasing && visible(old) {
		c.Surface.DrawPixel(x, int(old), p.eraseColor)
	}

	marker := screen.Invisible
	if visible(row) && visible(p.triggerRow) && row > p.triggerRow {
		marker = uint8(max(0, int(p.triggerRow)-c.Layout.TriggerHighOffset))
		c.Surface.DrawPixel(x, int(marker), c.Palette.TriggerData)
	}
	c.Screen.SetRow(screen.TriggerLine, x, marker)
}

func minSamples(samples []uint16, minOffset int) []uint16 {
	if minOffset >= len(samples) {
		return nil
	}
	return samples[minOffset:]
}
