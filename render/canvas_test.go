package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/screen"
)

// testRange maps raw values 1:1 to rows, raw 0 is the zero row.
func testRange(rawOffset int) acq.Range {
	return acq.Range{
		RawOffset:    rawOffset,
		ScaleFactor:  1 << acq.ScaleShift,
		VoltPerCount: 0.001,
		VoltsPerDiv:  0.5,
		Precision:    1,
	}
}

func testMeasurement() *acq.Measurement {
	return &acq.Measurement{
		Range:      testRange(0),
		Running:    true,
		SampleRate: 10000,
	}
}

func newTestCanvas(layout Layout) (*Canvas, *screen.Recorder) {
	recorder := screen.NewRecorder(layout.Width, layout.Height)
	return NewCanvas(recorder, layout, DefaultPalette()), recorder
}

func constant(n int, value uint16) []uint16 {
	result := make([]uint16, n)
	for i := range result {
		result[i] = value
	}
	return result
}

func ramp(n int, start, step int) []uint16 {
	result := make([]uint16, n)
	for i := range result {
		result[i] = uint16(start + i*step)
	}
	return result
}

func TestCanvasDataColor(t *testing.T) {
	c, _ := newTestCanvas(DefaultLayout())
	m := testMeasurement()

	assert.Equal(t, c.Palette.DataRun, c.DataColor(m))
	m.Running = false
	assert.Equal(t, c.Palette.DataHold, c.DataColor(m))
}

func TestCanvasClear(t *testing.T) {
	c, recorder := newTestCanvas(DefaultLayout())
	c.Screen.SetRow(screen.Primary, 3, 100)

	c.Clear()

	assert.Equal(t, []screen.Call{{Op: screen.OpFill, X0: 0, Y0: 0, X1: 320, Y1: 240, Color: c.Palette.Background}}, recorder.Calls)
	assert.Equal(t, screen.Invisible, c.Screen.Row(screen.Primary, 3))
}

func TestCanvasEraseAhead(t *testing.T) {
	tt := []struct {
		desc     string
		old      uint8
		nextOld  uint8
		expected []screen.Call
	}{
		{"both visible", 10, 20, []screen.Call{{Op: screen.OpLine, X0: 4, Y0: 10, X1: 5, Y1: 20}}},
		{"only next visible", screen.Invisible, 20, []screen.Call{{Op: screen.OpPixel, X0: 5, Y0: 20, X1: 5, Y1: 20}}},
		{"next invisible", 10, screen.Invisible, nil},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			c, recorder := newTestCanvas(DefaultLayout())

			c.eraseAhead(4, tc.old, tc.nextOld, NoColor)

			assert.Equal(t, tc.expected, recorder.Calls)
		})
	}
}
