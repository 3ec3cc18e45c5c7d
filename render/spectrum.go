package render

import (
	"fmt"
	"image/color"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/chart"
	"github.com/ftl/touchdso/dsp"
)

// Transformer computes the spectrum of a window of raw samples.
type Transformer interface {
	Size() int
	Transform(window []uint16) dsp.Spectrum
}

const (
	barDistance = 3
	barWidth    = 2
)

// Peak is the strongest bin of a spectrum, without the DC bin.
type Peak struct {
	Bin        int
	Value      float64
	Frequency  float64
	Correction dsp.BinLocation
}

// SpectrumRenderer draws the spectrum of the FFT window either as bars at the bottom of the trace display
// or as a full chart.
type SpectrumRenderer struct {
	canvas      *Canvas
	transformer Transformer
	bars        []int
	last        dsp.Spectrum
}

func NewSpectrumRenderer(canvas *Canvas, transformer Transformer) *SpectrumRenderer {
	result := &SpectrumRenderer{
		canvas:      canvas,
		transformer: transformer,
		bars:        make([]int, (canvas.Layout.Width+barDistance-1)/barDistance),
	}
	result.resetBars()
	return result
}

func (r *SpectrumRenderer) resetBars() {
	for i := range r.bars {
		r.bars[i] = r.canvas.Layout.Height
	}
}

// Bars returns the top rows of the currently drawn bars.
func (r *SpectrumRenderer) Bars() []int {
	result := make([]int, len(r.bars))
	copy(result, r.bars)
	return result
}

// Spectrum returns the spectrum that was drawn last.
func (r *SpectrumRenderer) Spectrum() dsp.Spectrum {
	return r.last
}

// RenderBars draws the spectrum of the window as bars. The largest bin is scaled to the grid height.
// Only the difference to the previously drawn bars is painted.
func (r *SpectrumRenderer) RenderBars(m *acq.Measurement, window []uint16, barColor color.RGBA) Peak {
	c := r.canvas
	spectrum := r.transformer.Transform(window)
	r.last = spectrum

	scale := 0.0
	if spectrum.MaxValue > 0 {
		scale = float64(c.Layout.GridHeight) / spectrum.MaxValue
	}

	count := min(len(r.bars), spectrum.Magnitudes.Size())
	for i := range count {
		x := i * barDistance
		row := c.Layout.Height - int(scale*spectrum.Magnitudes[i])
		row = max(c.Layout.Height-c.Layout.GridHeight, min(row, c.Layout.Height))
		old := r.bars[i]
		switch {
		case row < old:
			c.Surface.FillRect(x, row, x+barWidth, old, barColor)
		case row > old:
			c.Surface.FillRect(x, old, x+barWidth, row, c.Palette.Background)
		}
		r.bars[i] = row
	}

	peak := r.peak(m, spectrum)
	c.tracer.Trace(traceContext, "bars count=%d max=%f peak=%d %fHz\n", count, spectrum.MaxValue, peak.Bin, peak.Frequency)
	return peak
}

// ClearBars removes the bars from the display.
func (r *SpectrumRenderer) ClearBars() {
	c := r.canvas
	c.Surface.FillRect(0, c.Layout.Height-c.Layout.GridHeight, c.Layout.Width, c.Layout.Height, c.Palette.Background)
	r.resetBars()
}

func (r *SpectrumRenderer) peak(m *acq.Measurement, spectrum dsp.Spectrum) Peak {
	mapping := dsp.NewRealFrequencyMapping[float64](m.SampleRate, r.transformer.Size())
	correction := spectrum.PeakCorrection()
	return Peak{
		Bin:        spectrum.MaxIndex,
		Value:      spectrum.MaxValue,
		Frequency:  mapping.BinToFrequency(spectrum.MaxIndex, correction),
		Correction: correction,
	}
}

const (
	chartX          = 28
	chartBottomGap  = 24
	chartWidth      = 256
	chartHeight     = 160
	chartXScale     = 2
	chartLabelBins  = 32
	peakTextX       = 140
	peakTextY       = 66
	peakBinTextY    = 81
	kiloHertz       = 1000
	peakKiloHertzAt = 10000
)

// RenderFullChart clears the display and draws the spectrum of the window as an area chart
// with frequency axis and the frequency of the peak.
func (r *SpectrumRenderer) RenderFullChart(m *acq.Measurement, window []uint16) Peak {
	c := r.canvas
	c.Clear()
	r.resetBars()

	spectrum := r.transformer.Transform(window)
	r.last = spectrum
	mapping := dsp.NewRealFrequencyMapping[float64](m.SampleRate, r.transformer.Size())

	ch := chart.New(c.textSurface(), chartX, c.Layout.Height-chartBottomGap, chartWidth, chartHeight)
	ch.XScale = chartXScale
	ch.GridXSpacing = chartLabelBins * chartXScale
	ch.Colors = chart.Colors{
		Data:       c.Palette.FFT,
		Axes:       c.Palette.ChartAxes,
		Grid:       c.Palette.ChartGrid,
		Label:      c.Palette.Label,
		Background: c.Palette.Background,
	}

	ch.DrawAxesAndGrid()
	inKiloHertz := mapping.BinToFrequency(chartLabelBins, dsp.BinCenter) >= kiloHertz
	ch.DrawXLabels(func(i int) string {
		frequency := mapping.BinToFrequency(i*chartLabelBins, dsp.BinCenter)
		if inKiloHertz {
			frequency /= kiloHertz
		}
		return fmt.Sprintf("%d", int(frequency))
	})
	ch.DrawYLabels(func(i int) string {
		return fmt.Sprintf("%0.1f", float64(i)*0.2)
	})
	if inKiloHertz {
		ch.DrawXTitle("kHz")
	} else {
		ch.DrawXTitle("Hz")
	}

	if spectrum.MaxValue > 0 {
		ch.DrawArea(spectrum.Magnitudes, 1/spectrum.MaxValue)
	}

	peak := r.peak(m, spectrum)
	frequency, halfBin, unit := peak.Frequency, mapping.BinSize()/2, "Hz"
	if frequency >= peakKiloHertzAt {
		frequency, halfBin, unit = frequency/kiloHertz, halfBin/kiloHertz, "kHz"
	}
	ch.DrawText(peakTextX, peakTextY, fmt.Sprintf("%0.2f%s", frequency, unit), c.Palette.Label)
	ch.DrawText(peakTextX, peakBinTextY, fmt.Sprintf("[±%0.2f%s]", halfBin, unit), c.Palette.Label)

	c.tracer.Trace(traceContext, "chart bins=%d peak=%d %fHz\n", spectrum.Magnitudes.Size(), peak.Bin, peak.Frequency)
	return peak
}
