package cmd

import (
	"context"
	"log"

	"github.com/jfreymuth/pulse"
	"github.com/spf13/cobra"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/scope"
	"github.com/ftl/touchdso/screen"
	"github.com/ftl/touchdso/trace"
	"github.com/ftl/touchdso/viewer"
)

var pulseFlags = struct {
	display displaySettings
	source  string
}{}

var pulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: "show the signal of a Pulseaudio source",
	Run:   runWithCtx(runPulse),
}

func init() {
	rootCmd.AddCommand(pulseCmd)

	bindDisplayFlags(pulseCmd, &pulseFlags.display)
	pulseCmd.Flags().StringVar(&pulseFlags.source, "source", "", "Pulseaudio source ID to use")
}

func runPulse(ctx context.Context, s scope.Scope, tracer trace.Tracer, cmd *cobra.Command, args []string) {
	client, err := pulse.NewClient(pulse.ClientApplicationName("TouchDSO"))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	var source *pulse.Source
	if pulseFlags.source == "" {
		source, err = client.DefaultSource()
	} else {
		source, err = client.SourceByID(pulseFlags.source)
	}
	if err != nil {
		log.Fatal(err)
	}

	table := acq.DefaultTable()
	buf := acq.NewBuffer(acq.DefaultLayout())
	surface := screen.NewImageSurface(320, 240)

	// the audio stream is not triggered, an acquisition completes when the buffer is full
	pulseFlags.display.triggerMode = "off"
	pulseFlags.display.ac = true
	osc, err := newOscilloscope(buf, surface, table, &pulseFlags.display, source.SampleRate(), s, tracer)
	if err != nil {
		log.Fatal(err)
	}

	writer := acq.NewFloatWriter(buf, 1)
	stream, err := client.NewRecord(pulse.Float32Writer(writer.Write), pulse.RecordSource(source))
	if err != nil {
		log.Fatal(err)
	}
	writer.SetChannelCount(stream.Channels())

	stream.Start()
	defer stream.Stop()

	w := viewer.NewWindow(ctx, osc, surface, pulseFlags.display.stepsPerTick)
	err = showWindow(w, osc, table, "TouchDSO "+source.ID(), pulseFlags.display.zoom)
	if err != nil {
		log.Fatal(err)
	}
}
