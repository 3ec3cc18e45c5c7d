// Package scope provides a visualisation of the inner workings of the oscilloscope in form of
// trace and spectral plots that are streamed to remote clients.
package scope

import (
	"errors"
	"time"
)

var ErrAlreadyStarted = errors.New("scope was already started")

type StreamID string
type ChannelID string
type MarkerID string

type Frame struct {
	Stream    StreamID
	Timestamp time.Time
}

// TraceFrame holds the voltage of each display column, per trace channel.
// Columns without a visible value are NaN.
type TraceFrame struct {
	Frame
	Values map[ChannelID][]float64
}

type SpectralFrame struct {
	Frame
	FromFrequency    float64
	ToFrequency      float64
	Values           []float64
	FrequencyMarkers map[MarkerID]float64
	MagnitudeMarkers map[MarkerID]float64
}

// Scope shows frames.
type Scope interface {
	ShowTraceFrame(*TraceFrame)
	ShowSpectralFrame(*SpectralFrame)
}

// NullScope drops all frames.
type NullScope struct{}

func (s *NullScope) ShowTraceFrame(*TraceFrame)       {}
func (s *NullScope) ShowSpectralFrame(*SpectralFrame) {}
