package scope

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	kindKey             = "kind"
	streamKey           = "stream"
	timestampKey        = "timestamp"
	valuesKey           = "values"
	fromFrequencyKey    = "from_frequency"
	toFrequencyKey      = "to_frequency"
	frequencyMarkersKey = "frequency_markers"
	magnitudeMarkersKey = "magnitude_markers"

	traceKind    = "trace"
	spectralKind = "spectral"
)

func encodeTraceFrame(traceFrame *TraceFrame) (*structpb.Struct, error) {
	values := make(map[string]any, len(traceFrame.Values))
	for channel, columns := range traceFrame.Values {
		values[string(channel)] = floatList(columns)
	}
	return structpb.NewStruct(map[string]any{
		kindKey:      traceKind,
		streamKey:    string(traceFrame.Stream),
		timestampKey: traceFrame.Timestamp.Format(time.RFC3339Nano),
		valuesKey:    values,
	})
}

func encodeSpectralFrame(spectralFrame *SpectralFrame) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		kindKey:             spectralKind,
		streamKey:           string(spectralFrame.Stream),
		timestampKey:        spectralFrame.Timestamp.Format(time.RFC3339Nano),
		fromFrequencyKey:    spectralFrame.FromFrequency,
		toFrequencyKey:      spectralFrame.ToFrequency,
		valuesKey:           floatList(spectralFrame.Values),
		frequencyMarkersKey: markerMap(spectralFrame.FrequencyMarkers),
		magnitudeMarkersKey: markerMap(spectralFrame.MagnitudeMarkers),
	})
}

func floatList(values []float64) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}

func markerMap(markers map[MarkerID]float64) map[string]any {
	result := make(map[string]any, len(markers))
	for marker, v := range markers {
		result[string(marker)] = v
	}
	return result
}

// decodeFrame returns either a *TraceFrame or a *SpectralFrame.
func decodeFrame(msg *structpb.Struct) (any, error) {
	fields := msg.GetFields()
	frame := Frame{
		Stream: StreamID(fields[streamKey].GetStringValue()),
	}
	if timestamp := fields[timestampKey].GetStringValue(); timestamp != "" {
		var err error
		frame.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", timestamp, err)
		}
	}

	switch kind := fields[kindKey].GetStringValue(); kind {
	case traceKind:
		result := &TraceFrame{
			Frame:  frame,
			Values: make(map[ChannelID][]float64),
		}
		for channel, columns := range fields[valuesKey].GetStructValue().GetFields() {
			result.Values[ChannelID(channel)] = readFloatList(columns)
		}
		return result, nil
	case spectralKind:
		return &SpectralFrame{
			Frame:            frame,
			FromFrequency:    fields[fromFrequencyKey].GetNumberValue(),
			ToFrequency:      fields[toFrequencyKey].GetNumberValue(),
			Values:           readFloatList(fields[valuesKey]),
			FrequencyMarkers: readMarkerMap(fields[frequencyMarkersKey]),
			MagnitudeMarkers: readMarkerMap(fields[magnitudeMarkersKey]),
		}, nil
	default:
		return nil, fmt.Errorf("unknown frame kind %q", kind)
	}
}

func readFloatList(value *structpb.Value) []float64 {
	list := value.GetListValue().GetValues()
	result := make([]float64, len(list))
	for i, v := range list {
		result[i] = v.GetNumberValue()
	}
	return result
}

func readMarkerMap(value *structpb.Value) map[MarkerID]float64 {
	fields := value.GetStructValue().GetFields()
	result := make(map[MarkerID]float64, len(fields))
	for marker, v := range fields {
		result[MarkerID(marker)] = v.GetNumberValue()
	}
	return result
}
