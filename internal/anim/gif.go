package anim

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"

	"pose-planner/internal/playback"
)

// GIFOptions bounds the size of an encoded playback.
type GIFOptions struct {
	// MaxFrames caps the frames kept; frames are skipped evenly to fit.
	MaxFrames int
	// Interval is the playback delay between consecutive animation frames.
	Interval time.Duration
}

// FrameIndices returns the animation frames to keep out of total so that at
// most max remain. The first and last frame are always kept.
func FrameIndices(total, max int) []int {
	if total <= 0 {
		return nil
	}
	if max < 2 {
		max = 2
	}
	stride := 1
	if total > max {
		stride = int(math.Ceil(float64(total-1) / float64(max-1)))
	}
	var idx []int
	for i := 0; i < total-1; i += stride {
		idx = append(idx, i)
	}
	return append(idx, total-1)
}

// EncodeGIF plays anim on c, whose static drawing must already be in place,
// and writes the frames to w as a looping GIF.
func EncodeGIF(w io.Writer, c *Canvas, anim *playback.Animation, opts GIFOptions) error {
	indices := FrameIndices(anim.Frames(), opts.MaxFrames)
	stride := 1
	if len(indices) > 1 {
		stride = indices[1] - indices[0]
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = playback.DefaultInterval
	}
	// GIF delays are in hundredths of a second
	delay := int(math.Max(1, math.Round(float64(interval*time.Duration(stride))/float64(10*time.Millisecond))))

	out := &gif.GIF{LoopCount: 0}
	cache := make(map[color.RGBA]uint8)
	for _, i := range indices {
		c.Trace(anim.Frame(i))
		if err := c.Flush(); err != nil {
			return errors.Wrapf(err, "rendering frame %d", i)
		}
		out.Image = append(out.Image, toPaletted(c.Image(), palette.Plan9, cache))
		out.Delay = append(out.Delay, delay)
	}
	if len(out.Image) == 0 {
		return errors.New("no frames to encode")
	}
	return errors.Wrap(gif.EncodeAll(w, out), "encoding gif")
}

// toPaletted maps src onto pal. Frames share few distinct colors, so nearest
// palette lookups are cached across frames.
func toPaletted(src *image.RGBA, pal color.Palette, cache map[color.RGBA]uint8) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(b, pal)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			idx, ok := cache[c]
			if !ok {
				idx = uint8(pal.Index(c))
				cache[c] = idx
			}
			dst.SetColorIndex(x, y, idx)
		}
	}
	return dst
}
