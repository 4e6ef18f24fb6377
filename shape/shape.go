// Derives the presentation variables of marble shapes
// (size, position and opacity) from their markup attributes.
// The package knows nothing about the document model: elements
// are seen through the Attributes interface, so the same rules
// serve parsed HTML files and live browser pages.
package shape

import (
	"errors"
	"strings"
)

// Custom properties written on each shape element.
const (
	PropWidth   = "--width"
	PropHeight  = "--height"
	PropPosX    = "--pos-x"
	PropPosY    = "--pos-y"
	PropOpacity = "--opacity"
)

const (
	// DefaultPosition is used for a missing or empty position attribute.
	DefaultPosition = "0"
	// DefaultOpacity is used for a missing or empty opacity attribute.
	DefaultOpacity = "1"

	sizeSeparator = "x"
	pixelUnit     = "px"
)

// ErrMissingSize is returned when an element has no size attribute.
var ErrMissingSize = errors.New("shape has no size attribute")

type (
	// Attributes gives read access to the markup attributes of an element.
	Attributes interface {
		// Attr returns the value of the named attribute and
		// false when the element does not carry it.
		Attr(name string) (string, bool)
	}

	// Map is an Attributes backed by a plain map.
	Map map[string]string

	// Names are the attribute names read on each element.
	// Note that the opacity attribute has no "data-" prefix in the
	// markup this package was written for.
	Names struct {
		Size, PositionX, PositionY, Opacity string
	}

	// Style holds the derived values of one element, as raw tokens
	// (without the pixel unit). Tokens are never validated.
	Style struct {
		Width, Height string
		PosX, PosY    string
		Opacity       string
	}

	// Property is a custom property ready to be set on an element.
	Property struct {
		Name, Value string
	}
)

// DefaultNames matches the attributes used by the marble markup.
var DefaultNames = Names{
	Size:      "data-size",
	PositionX: "data-position-x",
	PositionY: "data-position-y",
	Opacity:   "opacity",
}

func (m Map) Attr(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// orDefault fills the empty names from DefaultNames
func (n Names) orDefault() Names {
	if n.Size == "" {
		n.Size = DefaultNames.Size
	}
	if n.PositionX == "" {
		n.PositionX = DefaultNames.PositionX
	}
	if n.PositionY == "" {
		n.PositionY = DefaultNames.PositionY
	}
	if n.Opacity == "" {
		n.Opacity = DefaultNames.Opacity
	}
	return n
}

// List returns the attribute names, in reading order.
func (n Names) List() []string {
	n = n.orDefault()
	return []string{n.Size, n.PositionX, n.PositionY, n.Opacity}
}

// attrOr returns the attribute value, or `def` when it is absent or empty.
func attrOr(attrs Attributes, name, def string) string {
	if v, ok := attrs.Attr(name); ok && v != "" {
		return v
	}
	return def
}

// Resolve computes the style of one element.
// A size containing the separator 'x' is split into width and height,
// any other value is used for both. Missing positions default to "0" and
// a missing opacity to "1".
// The only error is ErrMissingSize.
func Resolve(attrs Attributes, names Names) (Style, error) {
	names = names.orDefault()
	size, ok := attrs.Attr(names.Size)
	if !ok {
		return Style{}, ErrMissingSize
	}
	var st Style
	if strings.Contains(size, sizeSeparator) {
		// extra pieces, as in "1x2x3", are dropped
		parts := strings.Split(size, sizeSeparator)
		st.Width, st.Height = parts[0], parts[1]
	} else {
		st.Width, st.Height = size, size
	}
	st.PosX = attrOr(attrs, names.PositionX, DefaultPosition)
	st.PosY = attrOr(attrs, names.PositionY, DefaultPosition)
	st.Opacity = attrOr(attrs, names.Opacity, DefaultOpacity)
	return st, nil
}

// Properties returns the five custom properties, in a fixed order.
// Dimensions and positions get the pixel unit, opacity is unitless.
func (s Style) Properties() []Property {
	return []Property{
		{PropWidth, s.Width + pixelUnit},
		{PropHeight, s.Height + pixelUnit},
		{PropPosX, s.PosX + pixelUnit},
		{PropPosY, s.PosY + pixelUnit},
		{PropOpacity, s.Opacity},
	}
}

// String formats the properties as an inline style declaration list,
// such as "--width: 40px; --height: 60px; ...".
func (s Style) String() string {
	props := s.Properties()
	chunks := make([]string, len(props))
	for i, p := range props {
		chunks[i] = p.String()
	}
	return strings.Join(chunks, " ")
}

func (p Property) String() string {
	return p.Name + ": " + p.Value + ";"
}
