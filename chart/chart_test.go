package chart

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ftl/touchdso/screen"
)

var testColors = Colors{
	Data:       color.RGBA{R: 1, A: 0xff},
	Axes:       color.RGBA{R: 2, A: 0xff},
	Grid:       color.RGBA{R: 3, A: 0xff},
	Label:      color.RGBA{R: 4, A: 0xff},
	Background: color.RGBA{R: 5, A: 0xff},
}

func newTestChart() (*Chart, *screen.Recorder) {
	recorder := screen.NewRecorder(320, 240)
	c := New(recorder, 28, 216, 256, 160)
	c.XScale = 2
	c.Colors = testColors
	return c, recorder
}

func TestDrawAxesAndGrid(t *testing.T) {
	c, recorder := newTestChart()

	c.DrawAxesAndGrid()

	axes := recorder.WithColor(testColors.Axes)
	assert.Equal(t, []screen.Call{
		{Op: screen.OpFill, X0: 26, Y0: 216, X1: 284, Y1: 218, Color: testColors.Axes},
		{Op: screen.OpFill, X0: 26, Y0: 56, X1: 28, Y1: 216, Color: testColors.Axes},
	}, axes)

	grid := recorder.WithColor(testColors.Grid)
	// 3 vertical lines at 64, 128, 192 and 5 horizontal lines every 32 pixel up to the top
	assert.Len(t, grid, 8)
	assert.Equal(t, screen.Call{Op: screen.OpLine, X0: 92, Y0: 56, X1: 92, Y1: 215, Color: testColors.Grid}, grid[0])
	assert.Equal(t, screen.Call{Op: screen.OpLine, X0: 28, Y0: 56, X1: 283, Y1: 56, Color: testColors.Grid}, grid[7])
}

func TestDrawLabels(t *testing.T) {
	c, recorder := newTestChart()

	c.DrawXLabels(func(i int) string { return fmt.Sprintf("%d", i*32) })
	c.DrawYLabels(func(i int) string { return fmt.Sprintf("%0.1f", float64(i)*0.2) })

	texts := recorder.Filter(func(call screen.Call) bool { return call.Op == screen.OpText })
	assert.Len(t, texts, 5+6)
	assert.Equal(t, "0", texts[0].Text)
	assert.Equal(t, 28-3, texts[0].X0)
	assert.Equal(t, 216+2+8+1, texts[0].Y0)
	assert.Equal(t, "128", texts[4].Text)
	assert.Equal(t, "0.0", texts[5].Text)
	assert.Equal(t, 28-2-1-18, texts[5].X0)
	assert.Equal(t, "1.0", texts[10].Text)
	assert.Equal(t, 216-160+4, texts[10].Y0)
}

func TestDrawArea(t *testing.T) {
	c, recorder := newTestChart()

	c.DrawArea([]float64{0, 0.5, 2}, 1)

	assert.Equal(t, []screen.Call{
		{Op: screen.OpLine, X0: 30, Y0: 215, X1: 30, Y1: 136, Color: testColors.Data},
		{Op: screen.OpLine, X0: 31, Y0: 215, X1: 31, Y1: 136, Color: testColors.Data},
		{Op: screen.OpLine, X0: 32, Y0: 215, X1: 32, Y1: 56, Color: testColors.Data},
		{Op: screen.OpLine, X0: 33, Y0: 215, X1: 33, Y1: 56, Color: testColors.Data},
	}, recorder.Calls)
}

func TestDrawAreaStopsAtTheRightBorder(t *testing.T) {
	recorder := screen.NewRecorder(100, 100)
	c := New(recorder, 10, 90, 4, 50)
	c.XScale = 3

	c.DrawArea([]float64{1, 1, 1}, 1)

	assert.Len(t, recorder.Calls, 4)
}

func TestDrawXTitle(t *testing.T) {
	c, recorder := newTestChart()

	c.DrawXTitle("kHz")

	assert.Equal(t, []screen.Call{{Op: screen.OpText, X0: 28 + 256 - 18, Y0: 214, Color: testColors.Label, Text: "kHz"}}, recorder.Calls)
}
