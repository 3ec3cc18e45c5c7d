package cmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/touchdso/acq"
)

func TestRawFromVolts(t *testing.T) {
	table := acq.DefaultTable()
	tt := []struct {
		desc     string
		ac       bool
		volts    float64
		expected uint16
	}{
		{"zero", false, 0, 0},
		{"half", false, 1.65, 2048},
		{"above range", false, 5, acq.MaxRaw},
		{"ac zero", true, 0, 2048},
		{"ac below range", true, -2, 0},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			r := table.Range(6, tc.ac, 0)
			assert.Equal(t, tc.expected, rawFromVolts(r, tc.volts))
		})
	}
}

func TestDisplaySettingsMeasurement(t *testing.T) {
	settings := &displaySettings{
		rangeIndex:   3,
		triggerMode:  "falling",
		triggerLevel: 1.65,
		minMax:       true,
	}

	m, err := settings.measurement(acq.DefaultTable(), 48000)

	require.NoError(t, err)
	assert.Equal(t, 3, m.Range.Index)
	assert.Equal(t, 0.1, m.Range.VoltsPerDiv)
	assert.Equal(t, acq.TriggerFalling, m.TriggerMode)
	assert.Equal(t, uint16(2048), m.TriggerLevel)
	assert.True(t, m.MinMaxMode)
	assert.True(t, m.Running)
	assert.Equal(t, 48000, m.SampleRate)
}

func TestDisplaySettingsUnknownTriggerMode(t *testing.T) {
	settings := &displaySettings{triggerMode: "sideways"}

	_, err := settings.measurement(acq.DefaultTable(), 48000)

	assert.Error(t, err)
}

func TestDisplaySettingsConfig(t *testing.T) {
	settings := &displaySettings{pixelMode: true, fft: true}

	config := settings.config()

	assert.Equal(t, 0, config.Options.XScale)
	assert.True(t, config.Options.PixelMode)
	assert.True(t, config.ShowFFT)
	assert.False(t, config.MinMaxLines)
}

func TestDisplaySettingsPassesTheXScaleThrough(t *testing.T) {
	for _, xScale := range []int{-2, -1, 0, 1, 3} {
		t.Run(fmt.Sprint(xScale), func(t *testing.T) {
			settings := &displaySettings{xScale: xScale}

			assert.Equal(t, xScale, settings.config().Options.XScale)
		})
	}
}
