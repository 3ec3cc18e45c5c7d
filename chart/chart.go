// Package chart draws simple charts with axes, grid and labels on a text surface.
package chart

import (
	"image/color"

	"github.com/ftl/touchdso/screen"
)

type Colors struct {
	Data       color.RGBA
	Axes       color.RGBA
	Grid       color.RGBA
	Label      color.RGBA
	Background color.RGBA
}

// Chart is placed with its origin, the lower left corner of the data area.
// The axes are drawn outside of the data area.
type Chart struct {
	surface screen.TextSurface

	x, y          int
	width, height int

	AxesSize     int
	XScale       int
	GridXSpacing int
	GridYSpacing int
	Colors       Colors
}

func New(surface screen.TextSurface, x, y, width, height int) *Chart {
	return &Chart{
		surface:      surface,
		x:            x,
		y:            y,
		width:        width,
		height:       height,
		AxesSize:     2,
		XScale:       1,
		GridXSpacing: 64,
		GridYSpacing: 32,
	}
}

// Bounds of the data area, half-open.
func (c *Chart) Bounds() (x0, y0, x1, y1 int) {
	return c.x, c.y - c.height, c.x + c.width, c.y
}

func (c *Chart) DrawAxesAndGrid() {
	c.surface.FillRect(c.x-c.AxesSize, c.y, c.x+c.width, c.y+c.AxesSize, c.Colors.Axes)
	c.surface.FillRect(c.x-c.AxesSize, c.y-c.height, c.x, c.y, c.Colors.Axes)

	if c.GridXSpacing > 0 {
		for gx := c.x + c.GridXSpacing; gx < c.x+c.width; gx += c.GridXSpacing {
			c.surface.DrawLine(gx, c.y-c.height, gx, c.y-1, c.Colors.Grid)
		}
	}
	if c.GridYSpacing > 0 {
		for gy := c.y - c.GridYSpacing; gy >= c.y-c.height; gy -= c.GridYSpacing {
			c.surface.DrawLine(c.x, gy, c.x+c.width-1, gy, c.Colors.Grid)
		}
	}
}

// DrawXLabels draws one label per vertical grid line, centered below the x axis.
func (c *Chart) DrawXLabels(label func(i int) string) {
	if c.GridXSpacing <= 0 {
		return
	}
	for i := 0; i*c.GridXSpacing <= c.width; i++ {
		text := label(i)
		textWidth, textHeight := c.surface.TextSize(text)
		tx := c.x + i*c.GridXSpacing - textWidth/2
		c.surface.DrawText(tx, c.y+c.AxesSize+textHeight+1, text, c.Colors.Label)
	}
}

// DrawYLabels draws one label per horizontal grid line, right aligned left of the y axis.
func (c *Chart) DrawYLabels(label func(i int) string) {
	if c.GridYSpacing <= 0 {
		return
	}
	for i := 0; i*c.GridYSpacing <= c.height; i++ {
		text := label(i)
		textWidth, textHeight := c.surface.TextSize(text)
		tx := c.x - c.AxesSize - 1 - textWidth
		c.surface.DrawText(tx, c.y-i*c.GridYSpacing+textHeight/2, text, c.Colors.Label)
	}
}

// DrawXTitle draws the title right aligned above the end of the x axis.
func (c *Chart) DrawXTitle(title string) {
	textWidth, _ := c.surface.TextSize(title)
	c.surface.DrawText(c.x+c.width-textWidth, c.y-c.AxesSize, title, c.Colors.Label)
}

// DrawArea draws the values as area chart, XScale pixel per value. A value of 1 / yFactor fills the chart height.
func (c *Chart) DrawArea(values []float64, yFactor float64) {
	for i, value := range values {
		height := max(0, min(int(value*yFactor*float64(c.height)), c.height))
		if height == 0 {
			continue
		}
		for dx := range c.XScale {
			px := c.x + i*c.XScale + dx
			if px >= c.x+c.width {
				return
			}
			c.surface.DrawLine(px, c.y-1, px, c.y-height, c.Colors.Data)
		}
	}
}

func (c *Chart) DrawText(x, y int, text string, col color.RGBA) {
	c.surface.DrawText(x, y, text, col)
}
