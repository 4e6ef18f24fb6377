// Implements a raster preview of resolved shapes,
// by wrapping rasterx. Each shape is drawn as a marble: an ellipse
// filling its --pos-x/--pos-y/--width/--height box, with its opacity.
package shaperaster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/marbles/shape"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	"golang.org/x/image/math/fixed"
)

var (
	// ErrNotNumeric is returned for a shape whose values are not plain numbers.
	ErrNotNumeric = errors.New("shape value is not numeric")
	// ErrEmptyCanvas is returned when the canvas size can't be deduced.
	ErrEmptyCanvas = errors.New("nothing to draw")
	// ErrCanvasTooLarge is returned when the canvas exceeds Options.MaxSize.
	ErrCanvasTooLarge = errors.New("canvas too large")
)

const (
	// DefaultMaxSize is the canvas side limit used when Options.MaxSize is zero.
	DefaultMaxSize = 8192

	// maxCoordinate keeps every box (and the canvas extent) within
	// the range of fixed.Int26_6.
	maxCoordinate = 1 << 22
)

type (
	// Marble is the numeric geometry of a resolved shape, in pixels.
	Marble struct {
		ID         string
		X, Y, W, H float64
		Opacity    float64
	}

	// Options controls the preview.
	Options struct {
		// Width and Height of the canvas. When zero, the canvas
		// is sized to contain every marble plus Padding.
		Width, Height int
		Padding       float64
		// MaxSize bounds both sides of the canvas, DefaultMaxSize if zero.
		MaxSize int

		Fill       color.Color // black if nil
		Background color.Color // transparent if nil

		Logger *zap.Logger
	}

	// Renderer fills marbles into an image.
	Renderer struct {
		filler *rasterx.Filler
	}
)

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = fixed.Int26_6(x * 64)
	p.Y = fixed.Int26_6(y * 64)
	return
}

// parsePixels accepts a number, optionally followed by "px".
// NaN is rejected, and so is a value larger than `limit` in absolute value.
func parsePixels(v string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) > limit {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v)
	}
	return f, nil
}

// NewMarble converts a resolved style to numbers. Positions and sizes
// must be within ±4194304 pixels. Opacity is clamped
// to [0, 1], as a browser does.
func NewMarble(e shape.Entry) (Marble, error) {
	m := Marble{ID: e.ID}
	var err error
	for _, field := range [...]struct {
		v     string
		out   *float64
		limit float64
	}{
		{e.Style.PosX, &m.X, maxCoordinate},
		{e.Style.PosY, &m.Y, maxCoordinate},
		{e.Style.Width, &m.W, maxCoordinate},
		{e.Style.Height, &m.H, maxCoordinate},
		{e.Style.Opacity, &m.Opacity, math.Inf(1)},
	} {
		*field.out, err = parsePixels(field.v, field.limit)
		if err != nil {
			return m, fmt.Errorf("element %s: %w", e.ID, err)
		}
	}
	if m.Opacity < 0 {
		m.Opacity = 0
	} else if m.Opacity > 1 {
		m.Opacity = 1
	}
	return m, nil
}

// visible is false for empty or negative boxes
func (m Marble) visible() bool { return m.W > 0 && m.H > 0 }

// Bounds returns the box of the marble.
func (m Marble) Bounds() fixed.Rectangle26_6 {
	return fixed.Rectangle26_6{Min: toFixedP(m.X, m.Y), Max: toFixedP(m.X+m.W, m.Y+m.H)}
}

// ParseColor parses a hex color such as "#3c78d8".
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}

// NewRenderer returns a renderer drawing into img.
func NewRenderer(img draw.Image) *Renderer {
	b := img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b)
	return &Renderer{filler: rasterx.NewFiller(b.Dx(), b.Dy(), scanner)}
}

// Draw fills the marble with `fill`, applying the marble opacity.
func (rd *Renderer) Draw(m Marble, fill color.Color) {
	if !m.visible() {
		return
	}
	rd.filler.Clear()
	rd.filler.SetColor(rasterx.ApplyOpacity(fill, m.Opacity))
	rasterx.AddEllipse(m.X+m.W/2, m.Y+m.H/2, m.W/2, m.H/2, 0, rd.filler)
	rd.filler.Draw()
}

// Marbles converts the entries, skipping (and logging) the ones which
// are not numeric: a browser ignores such values as well.
func Marbles(entries []shape.Entry, logger *zap.Logger) []Marble {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]Marble, 0, len(entries))
	for _, e := range entries {
		m, err := NewMarble(e)
		if err != nil {
			logger.Warn("shape not drawn", zap.String("element", e.ID), zap.Error(err))
			continue
		}
		out = append(out, m)
	}
	return out
}

// canvasSize returns the size needed to show all the marbles.
func canvasSize(marbles []Marble, padding float64) (w, h int) {
	var ext fixed.Rectangle26_6
	for _, m := range marbles {
		if m.visible() {
			ext = ext.Union(m.Bounds())
		}
	}
	if ext.Empty() {
		return 0, 0
	}
	pad := fixed.Int26_6(padding * 64)
	return (ext.Max.X + pad).Ceil(), (ext.Max.Y + pad).Ceil()
}

// Raster draws the entries, in order, into a new image.
func Raster(entries []shape.Entry, opts Options) (*image.RGBA, error) {
	if math.IsNaN(opts.Padding) || math.Abs(opts.Padding) > maxCoordinate {
		return nil, fmt.Errorf("invalid padding %g", opts.Padding)
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	marbles := Marbles(entries, opts.Logger)
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		fw, fh := canvasSize(marbles, opts.Padding)
		if w <= 0 {
			w = fw
		}
		if h <= 0 {
			h = fh
		}
	}
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyCanvas
	}
	if w > maxSize || h > maxSize {
		return nil, fmt.Errorf("%w: %dx%d (limit %d)", ErrCanvasTooLarge, w, h, maxSize)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if opts.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}
	fill := opts.Fill
	if fill == nil {
		fill = color.Black
	}
	rd := NewRenderer(img)
	for _, m := range marbles {
		rd.Draw(m, fill)
	}
	return img, nil
}
