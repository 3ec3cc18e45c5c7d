package dso

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/dsp"
	"github.com/ftl/touchdso/render"
	"github.com/ftl/touchdso/scope"
	"github.com/ftl/touchdso/screen"
)

type fakeTransformer struct {
	size    int
	windows [][]uint16
}

func (f *fakeTransformer) Size() int {
	return f.size
}

func (f *fakeTransformer) Transform(window []uint16) dsp.Spectrum {
	f.windows = append(f.windows, append([]uint16{}, window...))
	return dsp.Spectrum{
		Magnitudes: make(dsp.Block[float64], f.size/2),
	}
}

type recordingScope struct {
	traceFrames    []*scope.TraceFrame
	spectralFrames []*scope.SpectralFrame
}

func (s *recordingScope) ShowTraceFrame(frame *scope.TraceFrame) {
	s.traceFrames = append(s.traceFrames, frame)
}

func (s *recordingScope) ShowSpectralFrame(frame *scope.SpectralFrame) {
	s.spectralFrames = append(s.spectralFrames, frame)
}

type recordingTracer struct {
	records map[string][]string
}

func (t *recordingTracer) Start() {}
func (t *recordingTracer) Stop()  {}

func (t *recordingTracer) Trace(context string, format string, args ...any) {
	if t.records == nil {
		t.records = make(map[string][]string)
	}
	t.records[context] = append(t.records[context], fmt.Sprintf(format, args...))
}

func smallConfig() Config {
	config := DefaultConfig()
	config.Layout = render.Layout{
		Width:             8,
		Height:            240,
		ZeroRow:           239,
		GridWidth:         4,
		GridHeight:        30,
		TriggerHighOffset: 7,
	}
	return config
}

func smallBufferLayout() acq.Layout {
	return acq.Layout{
		BufferSize:     24,
		PreTriggerSize: 2,
		FFTSize:        4,
		MinOffset:      12,
		DisplayWidth:   8,
	}
}

func testMeasurement(running bool) acq.Measurement {
	return acq.Measurement{
		Range: acq.Range{
			ScaleFactor:  1 << acq.ScaleShift,
			VoltPerCount: 0.001,
			VoltsPerDiv:  0.03,
			Precision:    2,
		},
		Running:    running,
		SampleRate: 1000,
	}
}

type fixture struct {
	buf         *acq.Buffer
	recorder    *screen.Recorder
	scope       *recordingScope
	transformer *fakeTransformer
	osc         *Oscilloscope
}

func newFixture(config Config, m acq.Measurement) *fixture {
	result := &fixture{
		buf:         acq.NewBuffer(smallBufferLayout()),
		recorder:    screen.NewRecorder(config.Layout.Width, config.Layout.Height),
		scope:       &recordingScope{},
		transformer: &fakeTransformer{size: 4},
	}
	result.osc = New(result.buf, result.recorder, m, config, result.transformer)
	result.osc.SetScope(result.scope)
	result.osc.Start()
	return result
}

func (f *fixture) append(samples ...uint16) {
	for _, sample := range samples {
		f.buf.Append(sample)
	}
}

func TestStepRedrawsThenStreams(t *testing.T) {
	f := newFixture(smallConfig(), testMeasurement(true))
	f.append(100, 100, 100, 100, 100)

	f.osc.Step()
	assert.Equal(t, 5, f.buf.NextDraw())
	assert.Equal(t, 5, f.osc.stream.Column())

	f.append(110, 120)
	f.osc.Step()

	assert.Equal(t, 7, f.buf.NextDraw())
	assert.Equal(t, []uint8{139, 139, 139, 139, 139, 129, 119, screen.Invisible}, f.osc.Canvas().Screen.Rows(screen.Primary))
}

func TestStepAbstainsWhenInvalidated(t *testing.T) {
	f := newFixture(smallConfig(), testMeasurement(true))
	f.osc.Step()
	f.append(100, 100, 100)
	f.buf.SetTriggerPhaseJustEnded()
	f.recorder.Reset()

	f.osc.Step()

	assert.Empty(t, f.recorder.Calls)
	assert.False(t, f.buf.Invalidated())
	assert.Equal(t, 0, f.buf.NextDraw())

	f.osc.Step()

	assert.Equal(t, 3, f.buf.NextDraw())
	assert.Equal(t, uint8(139), f.osc.Canvas().Screen.Row(screen.Primary, 2))
}

func TestCompletedAcquisitionIsRearmedWhileRunning(t *testing.T) {
	f := newFixture(smallConfig(), testMeasurement(true))
	generation := f.buf.Generation()
	for i := range 24 {
		f.append(uint16(20 + i*5))
	}

	f.osc.Step()

	assert.Equal(t, generation+1, f.buf.Generation())
	assert.Equal(t, 0, f.buf.NextIn())
	m := f.osc.Measurement()
	assert.Equal(t, uint16(20), m.RawMin)
	assert.Equal(t, uint16(135), m.RawMax)

	require.Len(t, f.scope.traceFrames, 1)
	frame := f.scope.traceFrames[0]
	assert.Equal(t, TraceStream, frame.Stream)
	require.Len(t, frame.Values[MaxChannel], 8)
	assert.InDelta(t, 0.020, frame.Values[MaxChannel][0], 0.0001)
	assert.InDelta(t, 0.055, frame.Values[MaxChannel][7], 0.0001)
	assert.NotContains(t, frame.Values, MinChannel)
}

func TestCompletedAcquisitionIsKeptOnHold(t *testing.T) {
	config := smallConfig()
	config.MinMaxLines = true
	f := newFixture(config, testMeasurement(false))
	generation := f.buf.Generation()
	for i := range 24 {
		f.append(uint16(20 + i*5))
	}

	f.osc.Step()
	f.osc.Step()

	assert.Equal(t, generation, f.buf.Generation())
	assert.True(t, f.buf.Full())
	assert.Len(t, f.scope.traceFrames, 1)
	minMaxLines := f.recorder.WithColor(config.Palette.MinMaxLines)
	require.Len(t, minMaxLines, 2)
	assert.Equal(t, 239-135, minMaxLines[0].Y0)
	assert.Equal(t, 239-20, minMaxLines[1].Y0)
}

func TestFFTPositionRendersTheSpectrum(t *testing.T) {
	config := smallConfig()
	config.ShowFFT = true
	f := newFixture(config, testMeasurement(true))
	f.osc.Step()

	f.append(10, 11, 12, 13, 14, 15, 16, 17, 18, 19)
	f.osc.Step()

	require.Len(t, f.transformer.windows, 1)
	assert.Equal(t, []uint16{12, 13, 14, 15}, f.transformer.windows[0])
	require.Len(t, f.scope.spectralFrames, 1)
	assert.Equal(t, SpectrumStream, f.scope.spectralFrames[0].Stream)
	assert.Equal(t, 500.0, f.scope.spectralFrames[0].ToFrequency)
}

func TestMinMaxModeChangesWithTheNextAcquisition(t *testing.T) {
	f := newFixture(smallConfig(), testMeasurement(true))
	m := f.osc.Measurement()
	m.MinMaxMode = true
	f.osc.SetMeasurement(m)
	assert.False(t, f.osc.Measurement().MinMaxMode)

	for range 24 {
		f.append(100)
	}
	f.osc.Step()
	assert.True(t, f.buf.MinMax())
	assert.False(t, f.osc.Measurement().MinMaxMode)

	f.osc.Step()
	assert.True(t, f.osc.Measurement().MinMaxMode)

	for range 12 {
		f.buf.AppendMinMax(150, 50)
	}
	f.osc.Step()
	require.Len(t, f.scope.traceFrames, 2)
	assert.Len(t, f.scope.traceFrames[1].Values[MinChannel], 8)
}

func TestShowChart(t *testing.T) {
	f := newFixture(smallConfig(), testMeasurement(true))
	f.append(10, 11, 12, 13, 14, 15)
	f.recorder.Reset()

	f.osc.ShowChart()

	require.NotEmpty(t, f.recorder.Calls)
	assert.Equal(t, screen.OpFill, f.recorder.Calls[0].Op)
	require.Len(t, f.transformer.windows, 1)
	assert.Equal(t, []uint16{12, 13, 14, 15}, f.transformer.windows[0])

	f.recorder.Reset()
	f.osc.Step()
	assert.Empty(t, f.recorder.Calls, "the chart is not drawn per step")
}

func TestMoveTriggerLine(t *testing.T) {
	m := testMeasurement(true)
	m.TriggerMode = acq.TriggerRising
	m.TriggerLevel = 100
	f := newFixture(smallConfig(), m)
	f.recorder.Reset()

	f.osc.MoveTriggerLine(50)

	palette := render.DefaultPalette()
	assert.Equal(t, screen.Call{Op: screen.OpLine, X0: 0, Y0: 139, X1: 7, Y1: 139, Color: palette.Background}, f.recorder.Calls[0])
	assert.Equal(t, screen.Call{Op: screen.OpLine, X0: 0, Y0: 189, X1: 7, Y1: 189, Color: palette.TriggerLine}, f.recorder.Calls[len(f.recorder.Calls)-1])
	assert.Equal(t, uint16(50), f.osc.Measurement().TriggerLevel)
}

func TestGeneratorDrivesTheDisplay(t *testing.T) {
	defer goleak.VerifyNone(t)

	config := DefaultConfig()
	config.ShowFFT = true
	layout := acq.DefaultLayout()
	buf := acq.NewBuffer(layout)
	surface := screen.NewImageSurface(config.Layout.Width, config.Layout.Height)
	m := acq.Measurement{
		Range:      acq.DefaultTable().Range(7, false, 0),
		Running:    true,
		SampleRate: 10000,
	}
	osc := New(buf, surface, m, config, dsp.NewSpectrumAnalyzer(layout.FFTSize))
	osc.Start()

	generator := acq.NewGenerator(m.SampleRate, 1000)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		generator.Run(ctx, buf, 64, time.Millisecond)
	}()

	generation := buf.Generation()
	deadline := time.Now().Add(5 * time.Second)
	for buf.Generation() < generation+3 && time.Now().Before(deadline) {
		osc.Step()
		time.Sleep(100 * time.Microsecond)
	}
	cancel()
	<-done

	assert.GreaterOrEqual(t, buf.Generation(), generation+3)
	assert.InDelta(t, 1000, osc.Peak().Frequency, 50)
	visible := 0
	for _, row := range osc.Canvas().Screen.Rows(screen.Primary) {
		if row != screen.Invisible {
			visible++
		}
	}
	assert.Positive(t, visible)
}

func TestStepTracesTheAcquisitionCycle(t *testing.T) {
	f := newFixture(smallConfig(), testMeasurement(true))
	tracer := &recordingTracer{}
	f.osc.SetTracer(tracer)

	samples := make([]uint16, f.buf.Layout().BufferSize)
	for i := range samples {
		samples[i] = 100
	}
	f.append(samples...)
	f.osc.Step()
	f.osc.Step()

	require.Len(t, tracer.records["dso"], 2)
	assert.True(t, strings.HasPrefix(tracer.records["dso"][0], "complete generation="), tracer.records["dso"][0])
	assert.True(t, strings.HasPrefix(tracer.records["dso"][1], "generation="), tracer.records["dso"][1])
	assert.NotEmpty(t, tracer.records["render"])
}

func TestStreamingContinuesTheRedrawColumns(t *testing.T) {
	config := smallConfig()
	config.Options.XScale = 1
	f := newFixture(config, testMeasurement(true))

	f.append(100, 110)
	f.osc.Step()
	f.append(120, 130)
	f.osc.Step()
	streamed := f.osc.Canvas().Screen.Rows(screen.Primary)

	f.buf.SetTriggerPhaseJustEnded()
	f.osc.Step()
	f.osc.Step()
	redrawn := f.osc.Canvas().Screen.Rows(screen.Primary)

	assert.Equal(t, []uint8{139, 129, 119, 109, screen.Invisible, screen.Invisible, screen.Invisible, screen.Invisible}, streamed)
	assert.Equal(t, streamed, redrawn)
	assert.Equal(t, 4, f.osc.stream.Column())
}

func TestRedrawRatio(t *testing.T) {
	tt := []struct {
		desc     string
		running  bool
		samples  int
		expected []uint8
	}{
		{"running", true, 23, []uint8{239, 229, 219, 209, 199, 189, 179, 169}},
		{"hold incomplete", false, 23, []uint8{239, 229, 219, 209, 199, 189, 179, 169}},
		{"hold complete", false, 24, []uint8{234, 214, 194, 174, 154, 134, 114, 94}},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			config := smallConfig()
			config.Options.XScale = -2
			f := newFixture(config, testMeasurement(tc.running))
			for i := range tc.samples {
				f.append(uint16(i * 10))
			}

			f.osc.Step()

			assert.Equal(t, tc.expected, f.osc.Canvas().Screen.Rows(screen.Primary))
		})
	}
}
