// Package viewer shows an image surface in a desktop window and steps the display loop with every tick.
package viewer

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ftl/touchdso/screen"
)

// Stepper runs one cycle of the display loop.
type Stepper interface {
	Step()
}

// Window is the ebiten game that presents the surface.
type Window struct {
	ctx          context.Context
	stepper      Stepper
	surface      *screen.ImageSurface
	stepsPerTick int

	frame *ebiten.Image
	keys  map[ebiten.Key]func()
}

func NewWindow(ctx context.Context, stepper Stepper, surface *screen.ImageSurface, stepsPerTick int) *Window {
	return &Window{
		ctx:          ctx,
		stepper:      stepper,
		surface:      surface,
		stepsPerTick: max(1, stepsPerTick),
		keys:         make(map[ebiten.Key]func()),
	}
}

// OnKey registers a handler that is called when the given key was pressed.
func (w *Window) OnKey(key ebiten.Key, handler func()) {
	w.keys[key] = handler
}

func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}
	for key, handler := range w.keys {
		if inpututil.IsKeyJustPressed(key) {
			handler()
		}
	}
	for range w.stepsPerTick {
		w.stepper.Step()
	}
	return nil
}

func (w *Window) Draw(target *ebiten.Image) {
	width, height := w.surface.Size()
	if w.frame == nil {
		w.frame = ebiten.NewImage(width, height)
	}
	w.frame.WritePixels(w.surface.Image().Pix)
	target.DrawImage(w.frame, nil)
}

func (w *Window) Layout(int, int) (int, int) {
	return w.surface.Size()
}

// Run opens the window and blocks until it is closed or the context of the window is done.
func Run(w *Window, title string, zoom int) error {
	width, height := w.surface.Size()
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width*max(1, zoom), height*max(1, zoom))
	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
