package dsp

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// FFT transforms blocks of real valued samples.
type FFT[T Number] struct {
	samples []float64
}

func NewFFT[T Number]() *FFT[T] {
	return &FFT[T]{}
}

// RealToSpectrum fills the spectrum with the projection of the lower half of the FFT's result,
// i.e. the bins from 0Hz to half of the sample rate.
func (f *FFT[T]) RealToSpectrum(spectrum []T, samples []T, projection func(complex128, int) T) {
	f.setSamples(samples)

	fftResult := fft.FFTReal(f.samples)
	blockSize := len(fftResult)
	if len(spectrum) != blockSize/2 {
		panic(fmt.Sprintf("the spectrum slice must have half the length of the FFT's result: %d", blockSize/2))
	}

	for i := range spectrum {
		spectrum[i] = projection(fftResult[i], blockSize)
	}
}

func (f *FFT[T]) setSamples(samples []T) {
	if len(f.samples) != len(samples) {
		f.samples = make([]float64, len(samples))
	}
	for i, sample := range samples {
		f.samples[i] = float64(sample)
	}
}

func psd(fftValue complex128) float64 {
	return math.Pow(real(fftValue), 2) + math.Pow(imag(fftValue), 2)
}

// Amplitude is the magnitude normalized to the amplitude of a sine wave in the time domain.
func Amplitude[T Number](fftValue complex128, blockSize int) T {
	return T(2 * math.Sqrt(psd(fftValue)) / float64(blockSize))
}

type BinLocation float64

const (
	BinFrom   BinLocation = -0.5
	BinCenter BinLocation = 0
	BinTo     BinLocation = 0.5
)

type FrequencyMapping[F Number] struct {
	sampleRate int
	blockSize  int
	binSize    float64

	centerFrequency int
	fromFrequency   int
}

func NewFrequencyMapping[F Number](sampleRate int, blockSize int, centerFrequency F) *FrequencyMapping[F] {
	result := &FrequencyMapping[F]{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		binSize:    float64(sampleRate) / float64(blockSize),
	}
	result.setCenterFrequency(centerFrequency)

	return result
}

// NewRealFrequencyMapping maps the bins of a real valued FFT, bin 0 is 0Hz.
func NewRealFrequencyMapping[F Number](sampleRate int, blockSize int) *FrequencyMapping[F] {
	return NewFrequencyMapping(sampleRate, blockSize, F(sampleRate/2))
}

func (m *FrequencyMapping[F]) String() string {
	return fmt.Sprintf("[%v - %v - %v]", m.fromFrequency, m.centerFrequency, m.BinToFrequency(m.blockSize-1, BinTo))
}

func (m *FrequencyMapping[F]) setCenterFrequency(frequency F) {
	m.centerFrequency = int(frequency)
	m.fromFrequency = m.centerFrequency - m.sampleRate/2
}

// BinSize in Hz.
func (m *FrequencyMapping[F]) BinSize() float64 {
	return m.binSize
}

func (m *FrequencyMapping[F]) BinToFrequency(bin int, location BinLocation) F {
	locationDelta := m.binSize * float64(location)

	return F(float64(m.fromFrequency) + float64(bin)*m.binSize + locationDelta)
}
