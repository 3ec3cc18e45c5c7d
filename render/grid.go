package render

import (
	"fmt"
	"image/color"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/screen"
)

// labelEpsilon avoids labels like -0.00 for the zero line.
const labelEpsilon = 0.0001

type labelBox struct {
	x0, y0, x1, y1 int
}

// Grid draws the timing and voltage grid with its labels and the horizontal overlay lines.
type Grid struct {
	canvas *Canvas
	labels []labelBox
}

func NewGrid(canvas *Canvas) *Grid {
	return &Grid{
		canvas: canvas,
	}
}

// DrawGrid draws the vertical timing lines, the horizontal voltage lines with their labels and the trigger line.
// Labels of a previous call are cleared first, so that a change of the range or the offset leaves no text behind.
func (g *Grid) DrawGrid(m *acq.Measurement, gridColor color.RGBA) {
	c := g.canvas
	s := c.textSurface()
	width := c.Layout.Width

	for _, box := range g.labels {
		s.FillRect(box.x0, box.y0, box.x1, box.y1, c.Palette.Background)
	}
	g.labels = g.labels[:0]

	if c.Layout.GridWidth > 0 {
		for x := c.Layout.GridWidth - 1; x < width; x += c.Layout.GridWidth {
			s.DrawLine(x, 0, x, c.Layout.ZeroRow, gridColor)
		}
	}
	if c.Layout.GridHeight <= 0 {
		g.DrawTriggerLine(m)
		return
	}

	r := m.Range
	value := float64(r.RawOffset)*r.VoltPerCount + labelEpsilon
	for y := c.Layout.ZeroRow; y > 0; y -= c.Layout.GridHeight {
		s.DrawLine(0, y, width-1, y, gridColor)

		text := fmt.Sprintf("%0.*f", r.Precision, value)
		textWidth, textHeight := s.TextSize(text)
		if textWidth > 0 && y-1-textHeight >= 0 {
			box := labelBox{x0: width - textWidth - 2, y0: y - 1 - textHeight, x1: width - 2, y1: y}
			s.FillRect(box.x0, box.y0, box.x1, box.y1, c.Palette.Background)
			labelColor := c.Palette.Label
			if value < 0 {
				labelColor = c.Palette.LabelNegative
			}
			s.DrawText(box.x0, y-1, text, labelColor)
			g.labels = append(g.labels, box)
		}
		value += r.VoltsPerDiv
	}

	g.DrawTriggerLine(m)
}

// DrawTriggerLine draws the trigger level, unless the trigger is off or the level is above the display.
func (g *Grid) DrawTriggerLine(m *acq.Measurement) {
	if m.TriggerMode == acq.TriggerOff {
		return
	}
	c := g.canvas
	row := c.Mapper(m).RawToDisplay(m.TriggerLevel)
	if row == 0 || !visible(row) {
		return
	}
	c.Surface.DrawLine(0, int(row), c.Layout.Width-1, int(row), c.Palette.TriggerLine)
}

// ClearTriggerLine removes the trigger line at the given row. The grid is restored and, while the acquisition
// is on hold, also the pixels of the traces on that row.
func (g *Grid) ClearTriggerLine(m *acq.Measurement, row uint8) {
	if !visible(row) {
		return
	}
	c := g.canvas
	y := int(row)
	width := c.Layout.Width

	if c.Layout.GridHeight > 0 && y <= c.Layout.ZeroRow && (c.Layout.ZeroRow-y)%c.Layout.GridHeight == 0 {
		c.Surface.DrawLine(0, y, width-1, y, c.Palette.Grid)
	} else {
		c.Surface.DrawLine(0, y, width-1, y, c.Palette.Background)
		if c.Layout.GridWidth > 0 {
			for x := c.Layout.GridWidth - 1; x < width; x += c.Layout.GridWidth {
				c.Surface.DrawPixel(x, y, c.Palette.Grid)
			}
		}
	}

	if m.Running {
		return
	}
	for _, trace := range []screen.Trace{screen.Primary, screen.Secondary} {
		for x := range width {
			if c.Screen.Row(trace, x) == row {
				c.Surface.DrawPixel(x, y, c.Palette.DataHold)
			}
		}
	}
}

// DrawMinMaxLines marks the rows of the raw minimum and maximum, unless they are clipped.
func (g *Grid) DrawMinMaxLines(m *acq.Measurement) {
	c := g.canvas
	mapper := c.Mapper(m)
	width := c.Layout.Width

	maxRow := mapper.RawToDisplay(m.RawMax)
	if maxRow != 0 && visible(maxRow) {
		c.Surface.DrawLine(0, int(maxRow), width-1, int(maxRow), c.Palette.MinMaxLines)
	}
	minRow := mapper.RawToDisplay(m.RawMin)
	if int(minRow) != c.Layout.ZeroRow && visible(minRow) {
		c.Surface.DrawLine(0, int(minRow), width-1, int(minRow), c.Palette.MinMaxLines)
	}
}
