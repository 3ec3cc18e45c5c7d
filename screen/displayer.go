package screen

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

type rectangleFiller interface {
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// DisplayerSurface draws on a TinyGo display driver.
type DisplayerSurface struct {
	display    drivers.Displayer
	font       tinyfont.Fonter
	fontHeight int
}

func NewDisplayerSurface(display drivers.Displayer, font tinyfont.Fonter, fontHeight int) *DisplayerSurface {
	return &DisplayerSurface{
		display:    display,
		font:       font,
		fontHeight: fontHeight,
	}
}

// NewDefaultDisplayerSurface uses the TomThumb font, which fits the small labels of the grid.
func NewDefaultDisplayerSurface(display drivers.Displayer) *DisplayerSurface {
	return NewDisplayerSurface(display, &tinyfont.TomThumb, 6)
}

func (s *DisplayerSurface) Size() (int, int) {
	width, height := s.display.Size()
	return int(width), int(height)
}

func (s *DisplayerSurface) DrawPixel(x, y int, c color.RGBA) {
	s.display.SetPixel(int16(x), int16(y), c)
}

func (s *DisplayerSurface) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	Line(x0, y0, x1, y1, func(x, y int) {
		s.display.SetPixel(int16(x), int16(y), c)
	})
}

func (s *DisplayerSurface) FillRect(x0, y0, x1, y1 int, c color.RGBA) {
	if x0 >= x1 || y0 >= y1 {
		return
	}
	if filler, ok := s.display.(rectangleFiller); ok {
		err := filler.FillRectangle(int16(x0), int16(y0), int16(x1-x0), int16(y1-y0), c)
		if err == nil {
			return
		}
		// drivers reject rectangles they cannot address, the pixels are clipped one by one
		log.Printf("cannot fill rectangle (%d,%d)-(%d,%d), falling back to pixels: %v", x0, y0, x1, y1, err)
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.display.SetPixel(int16(x), int16(y), c)
		}
	}
}

func (s *DisplayerSurface) DrawText(x, y int, text string, c color.RGBA) {
	tinyfont.WriteLine(s.display, s.font, int16(x), int16(y), text, c)
}

func (s *DisplayerSurface) TextSize(text string) (int, int) {
	_, outboxWidth := tinyfont.LineWidth(s.font, text)
	return int(outboxWidth), s.fontHeight
}

// Display transfers the drawn pixels to the physical display.
func (s *DisplayerSurface) Display() error {
	if err := s.display.Display(); err != nil {
		return fmt.Errorf("cannot update the display: %w", err)
	}
	return nil
}

// Framebuffer565 is an in-memory RGB565 display, the pixel format of the usual SPI TFT panels.
type Framebuffer565 struct {
	width  int
	height int
	pixels []uint16
}

func NewFramebuffer565(width, height int) *Framebuffer565 {
	return &Framebuffer565{
		width:  width,
		height: height,
		pixels: make([]uint16, width*height),
	}
}

func (f *Framebuffer565) Size() (x, y int16) {
	return int16(f.width), int16(f.height)
}

func (f *Framebuffer565) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= f.width || iy < 0 || iy >= f.height {
		return
	}
	f.pixels[iy*f.width+ix] = rgb565From888(c.R, c.G, c.B)
}

func (f *Framebuffer565) Display() error {
	return nil
}

func (f *Framebuffer565) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := max(0, min(int(x), f.width))
	y0 := max(0, min(int(y), f.height))
	x1 := max(0, min(int(x)+int(width), f.width))
	y1 := max(0, min(int(y)+int(height), f.height))
	pixel := rgb565From888(c.R, c.G, c.B)
	for py := y0; py < y1; py++ {
		row := f.pixels[py*f.width : (py+1)*f.width]
		for px := x0; px < x1; px++ {
			row[px] = pixel
		}
	}
	return nil
}

// Pixel returns the color at the given position, expanded to 8 bits per channel.
func (f *Framebuffer565) Pixel(x, y int) color.RGBA {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return color.RGBA{}
	}
	r, g, b := rgb888From565(f.pixels[y*f.width+x])
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func (f *Framebuffer565) Image() *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := range f.height {
		for x := range f.width {
			result.SetRGBA(x, y, f.Pixel(x, y))
		}
	}
	return result
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

func rgb888From565(pixel uint16) (r, g, b uint8) {
	r5 := uint8(pixel >> 11 & 0x1f)
	g6 := uint8(pixel >> 5 & 0x3f)
	b5 := uint8(pixel & 0x1f)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}
