package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/ftl/touchdso/acq"
	"github.com/ftl/touchdso/scope"
	"github.com/ftl/touchdso/screen"
	"github.com/ftl/touchdso/trace"
	"github.com/ftl/touchdso/viewer"
)

var simFlags = struct {
	display displaySettings

	sampleRate int
	frequency  float64
	amplitude  float64
	offset     float64
	noise      float64
	interval   time.Duration

	png          string
	acquisitions int
	displayer    bool
}{}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "show a simulated input signal",
	Run:   runWithCtx(runSim),
}

func init() {
	rootCmd.AddCommand(simCmd)

	bindDisplayFlags(simCmd, &simFlags.display)
	simCmd.Flags().IntVar(&simFlags.sampleRate, "samplerate", 10000, "sample rate in Hz")
	simCmd.Flags().Float64Var(&simFlags.frequency, "frequency", 1000, "frequency of the signal in Hz")
	simCmd.Flags().Float64Var(&simFlags.amplitude, "amplitude", 0.8, "amplitude of the signal in V")
	simCmd.Flags().Float64Var(&simFlags.offset, "dc", 1.65, "DC offset of the signal in V")
	simCmd.Flags().Float64Var(&simFlags.noise, "noise", 0, "noise amplitude in V")
	simCmd.Flags().DurationVar(&simFlags.interval, "interval", 10*time.Millisecond, "interval between sample chunks")

	simCmd.Flags().StringVar(&simFlags.png, "png", "", "render headless and write the final display into this PNG file")
	simCmd.Flags().IntVar(&simFlags.acquisitions, "acquisitions", 3, "number of acquisitions to render headless")
	simCmd.Flags().BoolVar(&simFlags.displayer, "displayer", false, "render headless through a RGB565 display driver")
}

func runSim(ctx context.Context, s scope.Scope, tracer trace.Tracer, cmd *cobra.Command, args []string) {
	table := acq.DefaultTable()
	buf := acq.NewBuffer(acq.DefaultLayout())

	generator := acq.NewGenerator(simFlags.sampleRate, simFlags.frequency)
	generator.Amplitude = simFlags.amplitude / table.VoltPerCount
	generator.Offset = simFlags.offset / table.VoltPerCount
	generator.Noise = simFlags.noise / table.VoltPerCount
	generator.Trigger = simFlags.display.triggerMode != "off"

	if simFlags.png != "" {
		err := renderHeadless(ctx, buf, generator, table, s, tracer)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	surface := screen.NewImageSurface(320, 240)
	osc, err := newOscilloscope(buf, surface, table, &simFlags.display, simFlags.sampleRate, s, tracer)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	chunk := max(1, int(float64(simFlags.sampleRate)*simFlags.interval.Seconds()))
	go generator.Run(ctx, buf, chunk, simFlags.interval)

	w := viewer.NewWindow(ctx, osc, surface, simFlags.display.stepsPerTick)
	err = showWindow(w, osc, table, "TouchDSO Simulation", simFlags.display.zoom)
	if err != nil {
		log.Fatal(err)
	}
}

// renderHeadless runs the display loop synchronously until the given number of acquisitions is completed.
func renderHeadless(ctx context.Context, buf *acq.Buffer, generator *acq.Generator, table *acq.Table, s scope.Scope, tracer trace.Tracer) error {
	var surface screen.Surface
	var snapshot func() error
	if simFlags.displayer {
		framebuffer := screen.NewFramebuffer565(320, 240)
		displayer := screen.NewDefaultDisplayerSurface(framebuffer)
		surface = displayer
		snapshot = func() error {
			if err := displayer.Display(); err != nil {
				return err
			}
			return writePNG(simFlags.png, framebuffer.Image())
		}
	} else {
		image := screen.NewImageSurface(320, 240)
		surface = image
		snapshot = func() error {
			return writePNG(simFlags.png, image.Image())
		}
	}

	osc, err := newOscilloscope(buf, surface, table, &simFlags.display, simFlags.sampleRate, s, tracer)
	if err != nil {
		return err
	}

	start := buf.Generation()
	for buf.Generation()-start < uint64(simFlags.acquisitions) && ctx.Err() == nil {
		generator.Fill(buf, 64)
		osc.Step()
	}
	log.Printf("peak: %v", osc.Peak())

	return snapshot()
}
