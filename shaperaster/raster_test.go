package shaperaster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/benoitkugler/marbles/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, size, x, y, opacity string) shape.Entry {
	return shape.Entry{ID: id, Style: shape.Style{Width: size, Height: size, PosX: x, PosY: y, Opacity: opacity}}
}

func toPngBytes(m image.Image) ([]byte, error) {
	var b bytes.Buffer
	err := png.Encode(&b, m)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func TestNewMarble(t *testing.T) {
	m, err := NewMarble(shape.Entry{ID: "a", Style: shape.Style{Width: "40", Height: "60", PosX: "10", PosY: "20", Opacity: "0.5"}})
	require.NoError(t, err)
	assert.Equal(t, Marble{ID: "a", X: 10, Y: 20, W: 40, H: 60, Opacity: 0.5}, m)

	m, err = NewMarble(entry("b", "3px", "0", "0", "7"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.W)
	assert.Equal(t, 1.0, m.Opacity)

	_, err = NewMarble(entry("c", "abc", "0", "0", "1"))
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestRasterAutoSize(t *testing.T) {
	img, err := Raster([]shape.Entry{
		entry("a", "20", "0", "0", "1"),
		entry("b", "10", "30", "40", "0.5"),
		entry("c", "abc", "500", "500", "1"), // skipped
	}, Options{Padding: 5})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 45, 55), img.Bounds())

	// center of the opaque marble
	_, _, _, a := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	// half transparent marble
	_, _, _, a = img.At(35, 45).RGBA()
	assert.InDelta(t, 0x7fff, a, 0x0800)
	// outside the ellipse, in the corner of its box
	_, _, _, a = img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), a)

	b, err := toPngBytes(img)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestRasterColors(t *testing.T) {
	fill, err := ParseColor("#ff0000")
	require.NoError(t, err)
	bg, err := ParseColor("#ffffff")
	require.NoError(t, err)

	img, err := Raster([]shape.Entry{entry("a", "10", "5", "5", "1")}, Options{Width: 20, Height: 20, Fill: fill, Background: bg})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0xff, 0, 0, 0xff}, img.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(1, 1))

	_, err = ParseColor("blue")
	assert.Error(t, err)
}

func TestRasterEmpty(t *testing.T) {
	_, err := Raster(nil, Options{})
	assert.ErrorIs(t, err, ErrEmptyCanvas)

	_, err = Raster([]shape.Entry{entry("a", "0", "5", "5", "1")}, Options{})
	assert.ErrorIs(t, err, ErrEmptyCanvas)

	img, err := Raster(nil, Options{Width: 4, Height: 3})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestNewMarbleOutOfRange(t *testing.T) {
	for _, v := range []string{"Inf", "-Inf", "NaN", "1e12", "40000000", "-5000000px"} {
		_, err := NewMarble(entry("a", v, "0", "0", "1"))
		assert.ErrorIs(t, err, ErrNotNumeric, v)
		_, err = NewMarble(entry("a", "10", v, "0", "1"))
		assert.ErrorIs(t, err, ErrNotNumeric, v)
	}

	m, err := NewMarble(entry("a", "10", "0", "0", "Inf"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Opacity)
	_, err = NewMarble(entry("a", "10", "0", "0", "NaN"))
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestRasterTooLarge(t *testing.T) {
	// skipped, the other marble is still drawn
	img, err := Raster([]shape.Entry{entry("a", "1e12", "0", "0", "1"), entry("b", "10", "0", "0", "1")}, Options{})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())

	_, err = Raster([]shape.Entry{entry("a", "200000", "0", "0", "1")}, Options{})
	assert.ErrorIs(t, err, ErrCanvasTooLarge)

	_, err = Raster(nil, Options{Width: 10000, Height: 10})
	assert.ErrorIs(t, err, ErrCanvasTooLarge)

	img, err = Raster(nil, Options{Width: 10000, Height: 10, MaxSize: 10000})
	require.NoError(t, err)
	assert.Equal(t, 10000, img.Bounds().Dx())

	_, err = Raster([]shape.Entry{entry("a", "10", "0", "0", "1")}, Options{Padding: math.Inf(1)})
	assert.Error(t, err)
}
