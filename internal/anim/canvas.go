// Package anim rasterizes the drawing and the playback into images, and
// encodes the playback as an animated GIF.
package anim

import (
	"image"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"pose-planner/internal/render"
)

// DefaultSize is the pixel width and height of a canvas.
const DefaultSize = 480

var (
	background  = color.White
	pathColor   = color.RGBA{R: 220, A: 255}
	traceColor  = color.RGBA{G: 160, A: 255}
	arrowColor  = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	markerColor = color.Black
)

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func labelFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, errors.Wrap(fontErr, "parsing label font")
	}
	return truetype.NewFace(fontTTF, &truetype.Options{Size: size}), nil
}

type marker struct {
	at    orb.Point
	label string
}

// Canvas is a render.Surface drawing into an RGBA image. Each Flush renders
// the current drawing into a fresh image.
type Canvas struct {
	width, height int

	view    orb.Bound
	markers []marker
	arrows  []render.Shape
	path    orb.LineString
	trace   orb.LineString

	img *image.RGBA
}

var _ render.Surface = (*Canvas)(nil)

// NewCanvas returns a canvas of the given pixel size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height, view: render.InitialView(20)}
}

// Clear implements render.Surface.
func (c *Canvas) Clear() {
	c.markers, c.arrows, c.path, c.trace = nil, nil, nil, nil
}

// SetView implements render.Surface.
func (c *Canvas) SetView(view orb.Bound) {
	c.view = view
}

// Marker implements render.Surface.
func (c *Canvas) Marker(p orb.Point, label string) {
	c.markers = append(c.markers, marker{at: p, label: label})
}

// Arrow implements render.Surface.
func (c *Canvas) Arrow(p orb.Point, yaw float64, style render.ArrowStyle) {
	c.arrows = append(c.arrows, render.ArrowShape(p, yaw, style))
}

// Path implements render.Surface.
func (c *Canvas) Path(ls orb.LineString) {
	c.path = ls.Clone()
}

// Trace implements render.Surface.
func (c *Canvas) Trace(ls orb.LineString) {
	c.trace = ls
}

// Flush implements render.Surface.
func (c *Canvas) Flush() error {
	dc := gg.NewContext(c.width, c.height)
	dc.SetColor(background)
	dc.Clear()

	c.stroke(dc, c.path, pathColor, 1.5)
	c.stroke(dc, c.trace, traceColor, 3)
	for _, a := range c.arrows {
		c.stroke(dc, a.Shaft, arrowColor, 2)
		c.moveThrough(dc, orb.LineString(a.Head))
		dc.ClosePath()
		dc.SetColor(arrowColor)
		dc.Fill()
	}

	face, err := labelFace(12)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	for _, m := range c.markers {
		x, y := c.toPixel(m.at)
		dc.SetColor(markerColor)
		dc.DrawRectangle(x-4, y-4, 8, 8)
		dc.Fill()
		dc.DrawString(m.label, x+7, y-7)
	}

	c.img = imageRGBA(dc.Image())
	return nil
}

// Image returns the image rendered by the last Flush, or nil.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// toPixel maps a world point into the image; y grows downwards in pixels.
func (c *Canvas) toPixel(p orb.Point) (float64, float64) {
	w := c.view.Max.X() - c.view.Min.X()
	h := c.view.Max.Y() - c.view.Min.Y()
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	x := (p.X() - c.view.Min.X()) / w * float64(c.width)
	y := (c.view.Max.Y() - p.Y()) / h * float64(c.height)
	return x, y
}

func (c *Canvas) moveThrough(dc *gg.Context, ls orb.LineString) {
	for i, p := range ls {
		x, y := c.toPixel(p)
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, y)
	}
}

func (c *Canvas) stroke(dc *gg.Context, ls orb.LineString, col color.Color, width float64) {
	if len(ls) < 2 {
		return
	}
	c.moveThrough(dc, ls)
	dc.SetColor(col)
	dc.SetLineWidth(width)
	dc.Stroke()
}

func imageRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}
