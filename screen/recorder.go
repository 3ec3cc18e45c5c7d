package screen

import (
	"fmt"
	"image/color"
)

type Op string

const (
	OpPixel Op = "pixel"
	OpLine  Op = "line"
	OpFill  Op = "fill"
	OpText  Op = "text"
)

// Call is one recorded draw call.
type Call struct {
	Op     Op
	X0, Y0 int
	X1, Y1 int
	Color  color.RGBA
	Text   string
}

func (c Call) String() string {
	switch c.Op {
	case OpPixel:
		return fmt.Sprintf("pixel(%d,%d %v)", c.X0, c.Y0, c.Color)
	case OpText:
		return fmt.Sprintf("text(%d,%d %q %v)", c.X0, c.Y0, c.Text, c.Color)
	default:
		return fmt.Sprintf("%s(%d,%d-%d,%d %v)", c.Op, c.X0, c.Y0, c.X1, c.Y1, c.Color)
	}
}

// Recorder is a TextSurface that only records the draw calls.
type Recorder struct {
	Width  int
	Height int
	Calls  []Call
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Size() (int, int) {
	return r.Width, r.Height
}

func (r *Recorder) DrawPixel(x, y int, c color.RGBA) {
	r.Calls = append(r.Calls, Call{Op: OpPixel, X0: x, Y0: y, X1: x, Y1: y, Color: c})
}

func (r *Recorder) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	r.Calls = append(r.Calls, Call{Op: OpLine, X0: x0, Y0: y0, X1: x1, Y1: y1, Color: c})
}

func (r *Recorder) FillRect(x0, y0, x1, y1 int, c color.RGBA) {
	r.Calls = append(r.Calls, Call{Op: OpFill, X0: x0, Y0: y0, X1: x1, Y1: y1, Color: c})
}

func (r *Recorder) DrawText(x, y int, text string, c color.RGBA) {
	r.Calls = append(r.Calls, Call{Op: OpText, X0: x, Y0: y, Color: c, Text: text})
}

// TextSize assumes a fixed 6x8 font.
func (r *Recorder) TextSize(text string) (int, int) {
	return 6 * len(text), 8
}

func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

// Filter returns all recorded calls that satisfy the given predicate.
func (r *Recorder) Filter(predicate func(Call) bool) []Call {
	var result []Call
	for _, call := range r.Calls {
		if predicate(call) {
			result = append(result, call)
		}
	}
	return result
}

func (r *Recorder) WithColor(c color.RGBA) []Call {
	return r.Filter(func(call Call) bool { return call.Color == c })
}
