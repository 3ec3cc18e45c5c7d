// Package acq holds the acquisition side the display core reads from: measurement
// ranges, the shared sample buffer with its cursors, and a simulated sample producer.
package acq

import "math"

const (
	ADCBits = 12
	MaxRaw  = 1<<ADCBits - 1

	// InvisibleRaw marks a sample that must not be drawn.
	InvisibleRaw uint16 = 0xFFFF

	// ScaleShift is the fixed point shift of Range.ScaleFactor.
	ScaleShift = 18
)

// Range is the conversion configuration of one display range.
// Use Table.Range to get one, so that the scale factor and the raw offset always fit together.
type Range struct {
	Index        int
	AC           bool
	ACZero       int
	RawOffset    int
	ScaleFactor  int
	VoltPerCount float64
	VoltsPerDiv  float64
	Precision    int
}

// Table describes the available display ranges of the input channel.
type Table struct {
	GridHeight   int
	VoltPerCount float64
	ACZero       int
	VoltsPerDiv  []float64
}

// DefaultTable returns the ranges of a 3.3V reference with a 12 bit ADC, drawn on a grid of 30 pixels per division.
func DefaultTable() *Table {
	return &Table{
		GridHeight:   30,
		VoltPerCount: 3.3 / (MaxRaw + 1),
		ACZero:       (MaxRaw + 1) / 2,
		VoltsPerDiv:  []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 20, 50},
	}
}

func (t *Table) Len() int {
	return len(t.VoltsPerDiv)
}

func (t *Table) clampIndex(index int) int {
	return max(0, min(index, len(t.VoltsPerDiv)-1))
}

// ScaleFactor of the given range: display pixels per raw count, shifted by ScaleShift.
func (t *Table) ScaleFactor(index int) int {
	index = t.clampIndex(index)
	return int(math.Round(float64(t.GridHeight) * (1 << ScaleShift) * t.VoltPerCount / t.VoltsPerDiv[index]))
}

// RawOffsetForGridCount returns the raw offset that moves the baseline of the given range by gridCount divisions.
func (t *Table) RawOffsetForGridCount(index int, gridCount int) int {
	return ((gridCount * t.GridHeight) << ScaleShift) / t.ScaleFactor(index)
}

func (t *Table) Range(index int, ac bool, rawOffset int) Range {
	index = t.clampIndex(index)
	voltsPerDiv := t.VoltsPerDiv[index]
	return Range{
		Index:        index,
		AC:           ac,
		ACZero:       t.ACZero,
		RawOffset:    rawOffset,
		ScaleFactor:  t.ScaleFactor(index),
		VoltPerCount: t.VoltPerCount,
		VoltsPerDiv:  voltsPerDiv,
		Precision:    precision(voltsPerDiv),
	}
}

func (t *Table) RangeForGridCount(index int, ac bool, gridCount int) Range {
	return t.Range(index, ac, t.RawOffsetForGridCount(index, gridCount))
}

func precision(voltsPerDiv float64) int {
	switch {
	case voltsPerDiv < 0.1:
		return 2
	case voltsPerDiv < 1:
		return 1
	default:
		return 0
	}
}

type TriggerMode int

const (
	TriggerOff TriggerMode = iota
	TriggerRising
	TriggerFalling
)

// Measurement is the state of the measurement subsystem, lent read-only to the renderers each cycle.
type Measurement struct {
	Range        Range
	TriggerMode  TriggerMode
	TriggerLevel uint16
	MinMaxMode   bool
	Running      bool
	RawMin       uint16
	RawMax       uint16
	SampleRate   int
}
