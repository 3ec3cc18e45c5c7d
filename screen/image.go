package screen

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageSurface draws into an in-memory RGBA image.
type ImageSurface struct {
	img  *image.RGBA
	face font.Face
}

func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: basicfont.Face7x13,
	}
}

func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

func (s *ImageSurface) Size() (int, int) {
	bounds := s.img.Bounds()
	return bounds.Dx(), bounds.Dy()
}

func (s *ImageSurface) DrawPixel(x, y int, c color.RGBA) {
	s.img.SetRGBA(x, y, c)
}

func (s *ImageSurface) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	Line(x0, y0, x1, y1, func(x, y int) {
		s.img.SetRGBA(x, y, c)
	})
}

func (s *ImageSurface) FillRect(x0, y0, x1, y1 int, c color.RGBA) {
	draw.Draw(s.img, image.Rect(x0, y0, x1, y1), image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *ImageSurface) DrawText(x, y int, text string, c color.RGBA) {
	drawer := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

func (s *ImageSurface) TextSize(text string) (int, int) {
	width := font.MeasureString(s.face, text).Ceil()
	height := s.face.Metrics().Ascent.Ceil()
	return width, height
}
