// Package scale converts between raw ADC samples, display rows and voltages, and maps
// acquisition samples onto display columns.
package scale

import (
	"math"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/screen"
)

// Mapper converts values for one range configuration. The display axis is inverted,
// ZeroRow is the row of zero volts at the bottom of the chart.
type Mapper struct {
	Range   acq.Range
	ZeroRow int
}

func NewMapper(r acq.Range, zeroRow int) Mapper {
	return Mapper{
		Range:   r,
		ZeroRow: zeroRow,
	}
}

func (m Mapper) unshifted(raw uint16) int {
	value := int(raw)
	if m.Range.AC {
		value -= m.Range.ACZero
	}
	return value - m.Range.RawOffset
}

// RawToDisplay returns the display row of the given raw sample.
// Values below the range are clipped to the zero row, values above the range to row 0.
func (m Mapper) RawToDisplay(raw uint16) uint8 {
	if raw == acq.InvisibleRaw {
		return screen.Invisible
	}
	value := m.unshifted(raw)
	if value < 0 {
		return uint8(m.ZeroRow)
	}
	delta := (value * m.Range.ScaleFactor) >> acq.ScaleShift
	if delta > m.ZeroRow {
		return 0
	}
	return uint8(m.ZeroRow - delta)
}

// DisplayToRaw returns the smallest raw value that is displayed at the given row.
func (m Mapper) DisplayToRaw(row uint8) uint16 {
	if row == screen.Invisible {
		return acq.InvisibleRaw
	}
	delta := m.ZeroRow - int(row)
	raw := ceilDiv(delta<<acq.ScaleShift, m.Range.ScaleFactor) + m.Range.RawOffset
	if m.Range.AC {
		raw += m.Range.ACZero
	}
	return uint16(max(0, min(raw, acq.MaxRaw)))
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return n / d
	}
	return (n + d - 1) / d
}

func (m Mapper) RawToVoltage(raw uint16) float64 {
	if raw == acq.InvisibleRaw {
		return math.NaN()
	}
	value := int(raw)
	if m.Range.AC {
		value -= m.Range.ACZero
	}
	return float64(value) * m.Range.VoltPerCount
}

func (m Mapper) DisplayToVoltage(row uint8) float64 {
	return m.RawToVoltage(m.DisplayToRaw(row))
}

// AverageOf returns the display row of the mean of the visible samples, invisible samples are skipped.
func (m Mapper) AverageOf(samples []uint16) uint8 {
	sum := 0
	count := 0
	for _, sample := range samples {
		if sample == acq.InvisibleRaw {
			continue
		}
		sum += int(sample)
		count++
	}
	if count == 0 {
		return screen.Invisible
	}
	return m.RawToDisplay(uint16(sum / count))
}
