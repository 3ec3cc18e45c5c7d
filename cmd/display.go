package cmd

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/dso"
	"github.com/ftl/touchdso/dsp"
	"github.com/ftl/touchdso/render"
	"github.com/ftl/touchdso/scope"
	"github.com/ftl/touchdso/screen"
	"github.com/ftl/touchdso/trace"
	"github.com/ftl/touchdso/viewer"
)

type displaySettings struct {
	rangeIndex   int
	gridOffset   int
	ac           bool
	xScale       int
	pixelMode    bool
	minMax       bool
	triggerInfo  bool
	triggerLevel float64
	triggerMode  string
	fft          bool
	minMaxLines  bool
	zoom         int
	stepsPerTick int
}

func bindDisplayFlags(cmd *cobra.Command, s *displaySettings) {
	cmd.Flags().IntVar(&s.rangeIndex, "range", 6, "index of the display range (0 = 10mV/div)")
	cmd.Flags().IntVar(&s.gridOffset, "offset", 0, "move the baseline by this number of divisions")
	cmd.Flags().BoolVar(&s.ac, "ac", false, "AC coupling")
	cmd.Flags().IntVar(&s.xScale, "xscale", 0, "resampling ratio of redraws on hold: 0 = 1:1, -1 = 1.5x compression, <-1 = average n samples, 1 = 1.5x expansion, >1 = repeat n times")
	cmd.Flags().BoolVar(&s.pixelMode, "pixel", false, "draw isolated points instead of lines")
	cmd.Flags().BoolVar(&s.minMax, "minmax", false, "acquire min/max pairs")
	cmd.Flags().BoolVar(&s.triggerInfo, "trigger-info", false, "draw the trigger info line")
	cmd.Flags().Float64Var(&s.triggerLevel, "trigger-level", 1.65, "trigger level in V")
	cmd.Flags().StringVar(&s.triggerMode, "trigger", "rising", "trigger mode: off | rising | falling")
	cmd.Flags().BoolVar(&s.fft, "fft", false, "show the spectrum bars below the traces")
	cmd.Flags().BoolVar(&s.minMaxLines, "minmax-lines", false, "mark the raw minimum and maximum of each acquisition")
	cmd.Flags().IntVar(&s.zoom, "zoom", 2, "zoom factor of the window")
	cmd.Flags().IntVar(&s.stepsPerTick, "steps", 1, "display loop steps per frame")
}

func (s *displaySettings) parseTriggerMode() (acq.TriggerMode, error) {
	switch s.triggerMode {
	case "off":
		return acq.TriggerOff, nil
	case "rising":
		return acq.TriggerRising, nil
	case "falling":
		return acq.TriggerFalling, nil
	default:
		return acq.TriggerOff, fmt.Errorf("unknown trigger mode %q", s.triggerMode)
	}
}

func (s *displaySettings) measurement(table *acq.Table, sampleRate int) (acq.Measurement, error) {
	triggerMode, err := s.parseTriggerMode()
	if err != nil {
		return acq.Measurement{}, err
	}
	r := table.RangeForGridCount(s.rangeIndex, s.ac, s.gridOffset)
	return acq.Measurement{
		Range:        r,
		TriggerMode:  triggerMode,
		TriggerLevel: rawFromVolts(r, s.triggerLevel),
		MinMaxMode:   s.minMax,
		Running:      true,
		SampleRate:   sampleRate,
	}, nil
}

func (s *displaySettings) config() dso.Config {
	config := dso.DefaultConfig()
	config.Options = render.Options{
		PixelMode:       s.pixelMode,
		TriggerInfoLine: s.triggerInfo,
		XScale:          s.xScale,
	}
	config.ShowFFT = s.fft
	config.MinMaxLines = s.minMaxLines
	return config
}

func rawFromVolts(r acq.Range, volts float64) uint16 {
	raw := int(volts / r.VoltPerCount)
	if r.AC {
		raw += r.ACZero
	}
	return uint16(max(0, min(raw, acq.MaxRaw)))
}

// newOscilloscope creates the oscilloscope that draws on the given surface.
func newOscilloscope(buf *acq.Buffer, surface screen.Surface, table *acq.Table, settings *displaySettings, sampleRate int, s scope.Scope, tracer trace.Tracer) (*dso.Oscilloscope, error) {
	m, err := settings.measurement(table, sampleRate)
	if err != nil {
		return nil, err
	}
	buf.Rearm(m.MinMaxMode)

	osc := dso.New(buf, surface, m, settings.config(), dsp.NewSpectrumAnalyzer(buf.Layout().FFTSize))
	osc.SetScope(s)
	osc.SetTracer(tracer)
	osc.Start()
	return osc, nil
}

// controls are the key bindings of the oscilloscope window.
type controls struct {
	osc   *dso.Oscilloscope
	table *acq.Table
	chart bool
}

func (c *controls) bind(w *viewer.Window) {
	w.OnKey(ebiten.KeySpace, c.toggleRunning)
	w.OnKey(ebiten.KeyF, c.toggleChart)
	w.OnKey(ebiten.KeyM, c.toggleMinMax)
	w.OnKey(ebiten.KeyUp, func() { c.moveRange(1) })
	w.OnKey(ebiten.KeyDown, func() { c.moveRange(-1) })
}

func (c *controls) toggleRunning() {
	m := c.osc.Measurement()
	m.Running = !m.Running
	c.osc.SetMeasurement(m)
	log.Printf("running: %t", m.Running)
}

func (c *controls) toggleChart() {
	c.chart = !c.chart
	if c.chart {
		c.osc.ShowChart()
	} else {
		c.osc.Start()
	}
}

func (c *controls) toggleMinMax() {
	m := c.osc.Measurement()
	m.MinMaxMode = !m.MinMaxMode
	c.osc.SetMeasurement(m)
}

func (c *controls) moveRange(delta int) {
	m := c.osc.Measurement()
	index := max(0, min(m.Range.Index+delta, c.table.Len()-1))
	if index == m.Range.Index {
		return
	}
	m.Range = c.table.Range(index, m.Range.AC, m.Range.RawOffset)
	c.osc.SetMeasurement(m)
	log.Printf("range: %gV/div", m.Range.VoltsPerDiv)
}

func showWindow(w *viewer.Window, osc *dso.Oscilloscope, table *acq.Table, title string, zoom int) error {
	c := &controls{osc: osc, table: table}
	c.bind(w)
	return viewer.Run(w, title, zoom)
}

func writePNG(filename string, img image.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", filename, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("cannot encode %s: %w", filename, err)
	}
	return nil
}
