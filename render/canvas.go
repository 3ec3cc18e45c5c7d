// Package render draws the traces and the spectrum of the oscilloscope. All renderers only erase what
// they have drawn before, the screen buffer of the canvas keeps track of that.
package render

import (
	"image/color"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/scale"
	"github.com/ftl/touchdso/screen"
	"github.com/ftl/touchdso/trace"
)

const traceContext = "render"

// Layout of the display.
type Layout struct {
	Width      int
	Height     int
	ZeroRow    int
	GridWidth  int
	GridHeight int

	// TriggerHighOffset is the distance of the trigger info line above the trigger level.
	TriggerHighOffset int
}

func DefaultLayout() Layout {
	return Layout{
		Width:             320,
		Height:            240,
		ZeroRow:           239,
		GridWidth:         32,
		GridHeight:        30,
		TriggerHighOffset: 7,
	}
}

type Palette struct {
	Background    color.RGBA
	Grid          color.RGBA
	DataRun       color.RGBA
	DataHold      color.RGBA
	Clipping      color.RGBA
	TriggerData   color.RGBA
	TriggerLine   color.RGBA
	FFT           color.RGBA
	Label         color.RGBA
	LabelNegative color.RGBA
	MinMaxLines   color.RGBA
	ChartAxes     color.RGBA
	ChartGrid     color.RGBA
}

func DefaultPalette() Palette {
	return Palette{
		Background:    color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Grid:          color.RGBA{R: 0x00, G: 0x98, B: 0x00, A: 0xff},
		DataRun:       color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff},
		DataHold:      color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
		Clipping:      color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff},
		TriggerData:   color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff},
		TriggerLine:   color.RGBA{R: 0xc0, G: 0x00, B: 0xc0, A: 0xff},
		FFT:           color.RGBA{R: 0x40, G: 0x40, B: 0xc0, A: 0xff},
		Label:         color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff},
		LabelNegative: color.RGBA{R: 0xc0, G: 0x00, B: 0x00, A: 0xff},
		MinMaxLines:   color.RGBA{R: 0xff, G: 0xc0, B: 0x00, A: 0xff},
		ChartAxes:     color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff},
		ChartGrid:     color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	}
}

// NoColor is the unset erase color.
var NoColor = color.RGBA{}

type Options struct {
	// PixelMode draws isolated points instead of connected lines.
	PixelMode bool
	// TriggerInfoLine draws the digital view of the trace above the trigger level.
	TriggerInfoLine bool
	// XScale is the resampling ratio of bulk redraws.
	XScale int
}

// Canvas is the surface together with the screen buffer that remembers what was drawn on it.
type Canvas struct {
	Surface screen.Surface
	Layout  Layout
	Palette Palette
	Options Options
	Screen  *screen.Buffer

	tracer trace.Tracer
}

func NewCanvas(surface screen.Surface, layout Layout, palette Palette) *Canvas {
	return &Canvas{
		Surface: surface,
		Layout:  layout,
		Palette: palette,
		Screen:  screen.NewBuffer(layout.Width),
		tracer:  new(trace.NoTracer),
	}
}

func (c *Canvas) SetTracer(tracer trace.Tracer) {
	if tracer == nil {
		tracer = new(trace.NoTracer)
	}
	c.tracer = tracer
}

func (c *Canvas) Mapper(m *acq.Measurement) scale.Mapper {
	return scale.NewMapper(m.Range, c.Layout.ZeroRow)
}

// Clear the whole display and forget all traces.
func (c *Canvas) Clear() {
	screen.Clear(c.Surface, c.Palette.Background)
	c.Screen.Reset()
}

// DataColor of the traces, depending on the running state.
func (c *Canvas) DataColor(m *acq.Measurement) color.RGBA {
	if m.Running {
		return c.Palette.DataRun
	}
	return c.Palette.DataHold
}

// pixelEraseColor restores the timing grid when erasing a pixel on a grid column.
func (c *Canvas) pixelEraseColor(x int, eraseColor color.RGBA) color.RGBA {
	if c.Layout.GridWidth > 0 && x%c.Layout.GridWidth == c.Layout.GridWidth-1 {
		return c.Palette.Grid
	}
	return eraseColor
}

// eraseAhead erases the segment between column x and x+1 as it was drawn with the old rows.
func (c *Canvas) eraseAhead(x int, oldRow, nextOldRow uint8, eraseColor color.RGBA) {
	if nextOldRow == screen.Invisible {
		return
	}
	if oldRow == screen.Invisible {
		c.Surface.DrawPixel(x+1, int(nextOldRow), eraseColor)
		return
	}
	c.Surface.DrawLine(x, int(oldRow), x+1, int(nextOldRow), eraseColor)
}

// textSurface returns the surface of the canvas, text is dropped if the surface cannot draw text.
func (c *Canvas) textSurface() screen.TextSurface {
	if s, ok := c.Surface.(screen.TextSurface); ok {
		return s
	}
	return noText{c.Surface}
}

type noText struct {
	screen.Surface
}

func (noText) DrawText(int, int, string, color.RGBA) {}
func (noText) TextSize(string) (int, int)            { return 0, 0 }

func visible(row uint8) bool {
	return row != screen.Invisible
}
