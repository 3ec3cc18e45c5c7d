// Package dso ties the acquisition buffer and the renderers together to a running oscilloscope display.
package dso

import (
	"time"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/render"
	"github.com/ftl/touchdso/scale"
	"github.com/ftl/touchdso/scope"
	"github.com/ftl/touchdso/screen"
	"github.com/ftl/touchdso/trace"
)

const (
	TraceStream    scope.StreamID = "trace"
	SpectrumStream scope.StreamID = "spectrum"

	MaxChannel scope.ChannelID = "max"
	MinChannel scope.ChannelID = "min"

	PeakMarker scope.MarkerID = "peak"

	traceContext = "dso"
)

type Config struct {
	Layout  render.Layout
	Palette render.Palette
	Options render.Options

	// ShowFFT draws the spectrum bars of the FFT window below the traces.
	ShowFFT bool
	// MinMaxLines marks the raw minimum and maximum of a completed acquisition.
	MinMaxLines bool
}

func DefaultConfig() Config {
	return Config{
		Layout:  render.DefaultLayout(),
		Palette: render.DefaultPalette(),
	}
}

type mode int

const (
	traceMode mode = iota
	chartMode
)

// Oscilloscope drives the display from the acquisition buffer. Step must be called cyclically
// from a single goroutine, the producer may fill the buffer concurrently.
type Oscilloscope struct {
	buf         *acq.Buffer
	measurement acq.Measurement
	config      Config
	scope       scope.Scope
	tracer      trace.Tracer
	now         func() time.Time

	canvas   *render.Canvas
	grid     *render.Grid
	bulk     *render.BulkRenderer
	stream   *render.StreamingRenderer
	spectrum *render.SpectrumRenderer

	mode       mode
	minMax     bool
	redraw     bool
	generation uint64
	completed  bool
	snapshot   []uint16
	window     []uint16
	peak       render.Peak
	triggerRow uint8
}

func New(buf *acq.Buffer, surface screen.Surface, measurement acq.Measurement, config Config, transformer render.Transformer) *Oscilloscope {
	canvas := render.NewCanvas(surface, config.Layout, config.Palette)
	canvas.Options = config.Options

	result := &Oscilloscope{
		buf:         buf,
		measurement: measurement,
		config:      config,
		scope:       new(scope.NullScope),
		tracer:      new(trace.NoTracer),
		now:         time.Now,
		canvas:      canvas,
		grid:        render.NewGrid(canvas),
		bulk:        render.NewBulkRenderer(canvas, buf.Layout()),
		stream:      render.NewStreamingRenderer(canvas),
		spectrum:    render.NewSpectrumRenderer(canvas, transformer),
		generation:  buf.Generation(),
		window:      make([]uint16, buf.Layout().FFTSize),
		triggerRow:  screen.Invisible,
	}
	result.minMax = measurement.MinMaxMode
	result.measurement.MinMaxMode = buf.MinMax()
	result.stream.OnFFTPosition(result.onFFTPosition)
	return result
}

func (o *Oscilloscope) SetScope(s scope.Scope) {
	if s == nil {
		s = new(scope.NullScope)
	}
	o.scope = s
}

func (o *Oscilloscope) SetTracer(tracer trace.Tracer) {
	if tracer == nil {
		tracer = new(trace.NoTracer)
	}
	o.tracer = tracer
	o.canvas.SetTracer(tracer)
}

func (o *Oscilloscope) Canvas() *render.Canvas {
	return o.canvas
}

func (o *Oscilloscope) Measurement() acq.Measurement {
	return o.measurement
}

// Peak of the last drawn spectrum.
func (o *Oscilloscope) Peak() render.Peak {
	return o.peak
}

// Start clears the display and draws the grid. The traces are redrawn with the next step.
func (o *Oscilloscope) Start() {
	o.mode = traceMode
	o.canvas.Clear()
	o.spectrum.ClearBars()
	o.grid.DrawGrid(&o.measurement, o.config.Palette.Grid)
	o.triggerRow = o.currentTriggerRow()
	o.redraw = true
}

// ShowChart replaces the traces with the full spectrum chart of the FFT window.
func (o *Oscilloscope) ShowChart() {
	o.mode = chartMode
	o.fillWindow()
	o.peak = o.spectrum.RenderFullChart(&o.measurement, o.window)
	o.showSpectralFrame()
}

// SetMeasurement applies a new range, offset or trigger setting. A change of the min/max mode
// takes effect with the next acquisition.
func (o *Oscilloscope) SetMeasurement(m acq.Measurement) {
	o.minMax = m.MinMaxMode
	m.MinMaxMode = o.buf.MinMax()
	o.measurement = m
	if o.mode == chartMode {
		o.ShowChart()
		return
	}
	o.Start()
}

// Step runs one cycle of the display loop.
func (o *Oscilloscope) Step() {
	if generation := o.buf.Generation(); generation != o.generation {
		o.generation = generation
		o.tracer.Trace(traceContext, "generation=%d minmax=%t\n", generation, o.buf.MinMax())
		o.completed = false
		o.stream.Reset()
		if minMax := o.buf.MinMax(); minMax != o.measurement.MinMaxMode {
			o.measurement.MinMaxMode = minMax
			if o.mode == traceMode {
				o.Start()
			}
		}
	}
	if o.buf.Invalidated() {
		o.tracer.Trace(traceContext, "invalidated next_in=%d\n", o.buf.NextIn())
		o.buf.Acknowledge()
		o.redraw = true
		return
	}
	if o.mode == chartMode {
		o.rearmIfComplete()
		return
	}

	m := &o.measurement
	if o.redraw {
		o.redraw = false
		o.Redraw()
	} else {
		o.stream.Drain(m, o.buf, o.canvas.DataColor(m))
	}

	if o.buf.Full() && !o.completed {
		o.complete()
	}
	o.rearmIfComplete()
}

// Redraw draws all published samples at once and continues streaming behind them.
// The x scale of the options only applies to a complete acquisition on hold, streaming always draws
// one sample per column.
func (o *Oscilloscope) Redraw() {
	m := &o.measurement
	o.snapshot = o.buf.Snapshot(o.snapshot)
	start := o.buf.DisplayStart()
	length := o.buf.NextIn() - start

	columns := o.bulk.RenderAt(o.redrawRatio(), m, o.snapshot[start:], length, o.canvas.DataColor(m), render.NoColor, render.DrawClearOld, m.MinMaxMode)
	o.grid.DrawTriggerLine(m)

	o.stream.SetColumn(columns % o.config.Layout.Width)
	o.buf.SetNextDraw(start + length)
}

func (o *Oscilloscope) redrawRatio() int {
	if o.measurement.Running || !o.buf.Full() {
		return 0
	}
	return o.config.Options.XScale
}

// complete finishes an acquisition: final redraw, raw min/max, spectrum and the frames for the scope.
func (o *Oscilloscope) complete() {
	o.completed = true
	o.Redraw()

	m := &o.measurement
	m.RawMin, m.RawMax = o.rawMinMax()
	o.tracer.Trace(traceContext, "complete generation=%d raw_min=%d raw_max=%d\n", o.generation, m.RawMin, m.RawMax)
	if o.config.MinMaxLines {
		o.grid.DrawMinMaxLines(m)
	}
	if o.config.ShowFFT {
		o.renderBars()
	}
	o.showTraceFrame()
}

func (o *Oscilloscope) rearmIfComplete() {
	if !o.buf.Full() || !o.measurement.Running {
		return
	}
	if o.mode == traceMode && !o.completed {
		return
	}
	o.buf.Rearm(o.minMax)
}

func (o *Oscilloscope) onFFTPosition() {
	if !o.config.ShowFFT || o.mode != traceMode {
		return
	}
	o.renderBars()
}

func (o *Oscilloscope) renderBars() {
	o.fillWindow()
	o.peak = o.spectrum.RenderBars(&o.measurement, o.window, o.config.Palette.FFT)
	o.showSpectralFrame()
}

// fillWindow copies the FFT window that begins right after the pre-trigger area.
func (o *Oscilloscope) fillWindow() {
	start := o.buf.Layout().PreTriggerSize
	for i := range o.window {
		if start+i < o.buf.NextIn() {
			o.window[i] = o.buf.Sample(start + i)
		} else {
			o.window[i] = acq.InvisibleRaw
		}
	}
}

func (o *Oscilloscope) currentTriggerRow() uint8 {
	if o.measurement.TriggerMode == acq.TriggerOff {
		return screen.Invisible
	}
	return o.canvas.Mapper(&o.measurement).RawToDisplay(o.measurement.TriggerLevel)
}

// MoveTriggerLine removes the trigger line from its current row and draws it at the current trigger level.
func (o *Oscilloscope) MoveTriggerLine(level uint16) {
	o.grid.ClearTriggerLine(&o.measurement, o.triggerRow)
	o.measurement.TriggerLevel = level
	o.triggerRow = o.currentTriggerRow()
	o.grid.DrawTriggerLine(&o.measurement)
}

func (o *Oscilloscope) showTraceFrame() {
	mapper := o.canvas.Mapper(&o.measurement)
	values := map[scope.ChannelID][]float64{
		MaxChannel: voltages(mapper, o.canvas.Screen.Rows(screen.Primary)),
	}
	if o.measurement.MinMaxMode {
		values[MinChannel] = voltages(mapper, o.canvas.Screen.Rows(screen.Secondary))
	}
	o.scope.ShowTraceFrame(&scope.TraceFrame{
		Frame: scope.Frame{
			Stream:    TraceStream,
			Timestamp: o.now(),
		},
		Values: values,
	})
}

func (o *Oscilloscope) showSpectralFrame() {
	spectrum := o.spectrum.Spectrum()
	values := make([]float64, spectrum.Magnitudes.Size())
	copy(values, spectrum.Magnitudes)
	o.scope.ShowSpectralFrame(&scope.SpectralFrame{
		Frame: scope.Frame{
			Stream:    SpectrumStream,
			Timestamp: o.now(),
		},
		FromFrequency: 0,
		ToFrequency:   float64(o.measurement.SampleRate) / 2,
		Values:        values,
		FrequencyMarkers: map[scope.MarkerID]float64{
			PeakMarker: o.peak.Frequency,
		},
		MagnitudeMarkers: map[scope.MarkerID]float64{
			PeakMarker: o.peak.Value,
		},
	})
}

func voltages(mapper scale.Mapper, rows []uint8) []float64 {
	result := make([]float64, len(rows))
	for i, row := range rows {
		result[i] = mapper.DisplayToVoltage(row)
	}
	return result
}

// rawMinMax of the published samples of the last snapshot, including the min samples in min/max mode.
func (o *Oscilloscope) rawMinMax() (uint16, uint16) {
	start, end := o.buf.DisplayStart(), o.buf.NextIn()
	samples := o.snapshot[start:end]
	if o.measurement.MinMaxMode {
		offset := o.buf.Layout().MinOffset
		samples = append(samples[:len(samples):len(samples)], o.snapshot[start+offset:end+offset]...)
	}

	lowest, highest := uint16(acq.MaxRaw), uint16(0)
	found := false
	for _, sample := range samples {
		if sample == acq.InvisibleRaw {
			continue
		}
		found = true
		lowest = min(lowest, sample)
		highest = max(highest, sample)
	}
	if !found {
		return acq.InvisibleRaw, acq.InvisibleRaw
	}
	return lowest, highest
}
