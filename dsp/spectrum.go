package dsp

import (
	"math"

	"github.com/ftl/touchdso/acq"
)

// Spectrum holds the magnitude bins of one sample window, from 0Hz to half of the sample rate.
type Spectrum struct {
	Magnitudes Block[float64]
	MaxValue   float64
	MaxIndex   int
}

// PeakCorrection returns the interpolated location of the peak within its bin.
func (s Spectrum) PeakCorrection() BinLocation {
	return PeakCenterCorrection(s.MaxIndex, s.Magnitudes)
}

// SpectrumAnalyzer computes the spectrum of windows of raw samples.
type SpectrumAnalyzer struct {
	size    int
	fft     *FFT[float64]
	samples Block[float64]
}

func NewSpectrumAnalyzer(size int) *SpectrumAnalyzer {
	return &SpectrumAnalyzer{
		size:    size,
		fft:     NewFFT[float64](),
		samples: make(Block[float64], size),
	}
}

func (a *SpectrumAnalyzer) Size() int {
	return a.size
}

// Transform the first size samples of the window. Invisible and missing samples are replaced by the last visible
// sample before them. The DC component is removed before the transformation, the maximum is searched beginning at bin 1.
func (a *SpectrumAnalyzer) Transform(window []uint16) Spectrum {
	last := firstVisible(window)
	for i := range a.samples {
		sample := acq.InvisibleRaw
		if i < len(window) {
			sample = window[i]
		}
		if sample != acq.InvisibleRaw {
			last = sample
		}
		a.samples[i] = float64(last)
	}

	mean := a.samples.Mean(0, a.size-1)
	for i := range a.samples {
		a.samples[i] -= mean
	}

	result := Spectrum{
		Magnitudes: make(Block[float64], a.size/2),
	}
	a.fft.RealToSpectrum(result.Magnitudes, a.samples, Amplitude[float64])
	result.MaxValue, result.MaxIndex = result.Magnitudes.Max(1, result.Magnitudes.Size()-1)

	return result
}

func firstVisible(window []uint16) uint16 {
	for _, sample := range window {
		if sample != acq.InvisibleRaw {
			return sample
		}
	}
	return 0
}

func PeakCenterCorrection[T Number](bin int, spectrum Block[T]) BinLocation {
	// see https://dspguru.com/dsp/howtos/how-to-interpolate-fft-peak/
	if bin <= 0 || bin >= spectrum.Size()-1 {
		return 0
	}

	value := func(i int) float64 {
		return math.Abs(float64(spectrum[i]))
	}

	// quadratic interpolation
	y1 := value(bin - 1)
	y2 := value(bin)
	y3 := value(bin + 1)
	denominator := 2 * (2*y2 - y1 - y3)
	if denominator == 0 {
		return 0
	}

	return BinLocation((y3 - y1) / denominator)
}
