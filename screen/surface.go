package screen

import "image/color"

// Surface is the display the renderers draw on. All coordinates are pixels, rectangles are half-open.
type Surface interface {
	Size() (width, height int)
	DrawPixel(x, y int, c color.RGBA)
	DrawLine(x0, y0, x1, y1 int, c color.RGBA)
	FillRect(x0, y0, x1, y1 int, c color.RGBA)
}

// TextSurface is a Surface that is also able to render text. y is the baseline of the text.
type TextSurface interface {
	Surface
	DrawText(x, y int, text string, c color.RGBA)
	TextSize(text string) (width, height int)
}

// Clear fills the whole surface with the given color.
func Clear(s Surface, c color.RGBA) {
	width, height := s.Size()
	s.FillRect(0, 0, width, height, c)
}

// Line calls plot for every pixel on the line from (x0, y0) to (x1, y1), both ends included.
func Line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
