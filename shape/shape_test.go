package shape

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolveCompoundSize(t *testing.T) {
	st, err := Resolve(Map{
		"data-size":       "40x60",
		"data-position-x": "10",
		"data-position-y": "20",
		"opacity":         "0.5",
	}, DefaultNames)
	require.NoError(t, err)
	assert.Equal(t, "--width: 40px; --height: 60px; --pos-x: 10px; --pos-y: 20px; --opacity: 0.5;", st.String())
}

func TestResolveDefaults(t *testing.T) {
	st, err := Resolve(Map{"data-size": "30"}, DefaultNames)
	require.NoError(t, err)
	assert.Equal(t, Style{Width: "30", Height: "30", PosX: "0", PosY: "0", Opacity: "1"}, st)
	assert.Equal(t, []Property{
		{PropWidth, "30px"},
		{PropHeight, "30px"},
		{PropPosX, "0px"},
		{PropPosY, "0px"},
		{PropOpacity, "1"},
	}, st.Properties())
}

func TestResolvePassThrough(t *testing.T) {
	for _, tc := range []struct {
		size, width, height string
	}{
		{"abc", "abc", "abc"},
		{"", "", ""},
		{"x60", "", "60"},
		{"40x", "40", ""},
		{"1x2x3", "1", "2"},
		{"40X60", "40X60", "40X60"}, // the separator is lower case only
		{"12.5x3em", "12.5", "3em"},
	} {
		st, err := Resolve(Map{"data-size": tc.size}, DefaultNames)
		require.NoError(t, err, tc.size)
		assert.Equal(t, tc.width, st.Width, tc.size)
		assert.Equal(t, tc.height, st.Height, tc.size)
	}

	st, err := Resolve(Map{"data-size": "", "data-position-y": "-4"}, DefaultNames)
	require.NoError(t, err)
	assert.Equal(t, "px", st.Properties()[0].Value)
	assert.Equal(t, "-4px", st.Properties()[3].Value)
}

func TestResolveEmptyAttributesUseDefaults(t *testing.T) {
	st, err := Resolve(Map{"data-size": "5", "data-position-x": "", "opacity": ""}, DefaultNames)
	require.NoError(t, err)
	assert.Equal(t, "0", st.PosX)
	assert.Equal(t, "1", st.Opacity)
}

func TestResolveMissingSize(t *testing.T) {
	_, err := Resolve(Map{"data-position-x": "3"}, DefaultNames)
	assert.ErrorIs(t, err, ErrMissingSize)
}

func TestCustomNames(t *testing.T) {
	names := Names{Size: "size", Opacity: "data-opacity"}
	st, err := Resolve(Map{"size": "8x9", "data-opacity": "0.2", "opacity": "0.9"}, names)
	require.NoError(t, err)
	assert.Equal(t, Style{Width: "8", Height: "9", PosX: "0", PosY: "0", Opacity: "0.2"}, st)
	assert.Equal(t, []string{"size", "data-position-x", "data-position-y", "data-opacity"}, names.List())
}

func elements() []Element {
	return []Element{
		{ID: "a", Attrs: Map{"data-size": "10"}},
		{ID: "b", Attrs: Map{"opacity": "0.3"}},
		{ID: "c", Attrs: Map{"data-size": "1x2"}},
	}
}

func TestResolveAllModes(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	entries, err := ResolveAll(elements(), Options{ErrorMode: WarnErrorMode, Logger: zap.New(core)})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, 0, entries[0].Index)
	assert.Equal(t, "c", entries[1].ID)
	assert.Equal(t, 2, entries[1].Index)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "b", logs.All()[0].ContextMap()["element"])

	core, logs = observer.New(zapcore.DebugLevel)
	entries, err = ResolveAll(elements(), Options{ErrorMode: IgnoreErrorMode, Logger: zap.New(core)})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 0, logs.FilterLevelExact(zapcore.WarnLevel).Len())

	entries, err = ResolveAll(elements(), Options{ErrorMode: StrictErrorMode})
	assert.Nil(t, entries)
	assert.True(t, errors.Is(err, ErrMissingSize))
	assert.Contains(t, err.Error(), "element b")
}

func TestErrorModeText(t *testing.T) {
	for _, m := range []ErrorMode{WarnErrorMode, IgnoreErrorMode, StrictErrorMode} {
		text, err := m.MarshalText()
		require.NoError(t, err)
		var back ErrorMode
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, m, back)
	}
	m, err := ParseErrorMode(" STRICT ")
	require.NoError(t, err)
	assert.Equal(t, StrictErrorMode, m)
	_, err = ParseErrorMode("loud")
	assert.Error(t, err)
	assert.Equal(t, "ErrorMode(9)", ErrorMode(9).String())
}

func TestElementID(t *testing.T) {
	assert.Equal(t, "hero", ElementID("hero", 3))
	assert.Equal(t, "shape[3]", ElementID("", 3))
}
