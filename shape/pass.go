package shape

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrorMode decides what happens to an element whose style
// can't be resolved (that is, one without size attribute).
type ErrorMode uint8

const (
	// WarnErrorMode skips the element and logs a warning.
	WarnErrorMode ErrorMode = iota
	// IgnoreErrorMode silently skips the element.
	IgnoreErrorMode
	// StrictErrorMode aborts the whole pass.
	StrictErrorMode
)

var errorModeNames = [...]string{
	WarnErrorMode:   "warn",
	IgnoreErrorMode: "ignore",
	StrictErrorMode: "strict",
}

func (m ErrorMode) String() string {
	if int(m) < len(errorModeNames) {
		return errorModeNames[m]
	}
	return fmt.Sprintf("ErrorMode(%d)", m)
}

// ParseErrorMode accepts "warn", "ignore" and "strict" (case insensitive).
func ParseErrorMode(s string) (ErrorMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range errorModeNames {
		if name == s {
			return ErrorMode(m), nil
		}
	}
	return 0, fmt.Errorf("invalid error mode %q (expected warn, ignore or strict)", s)
}

func (m ErrorMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ErrorMode) UnmarshalText(text []byte) error {
	v, err := ParseErrorMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

type (
	// Options controls a resolution pass over several elements.
	Options struct {
		Names     Names
		ErrorMode ErrorMode
		Logger    *zap.Logger // nil disables logging
	}

	// Element is one selected element: its identifier
	// (used in logs and plans) and its attributes.
	Element struct {
		ID    string
		Attrs Attributes
	}

	// Entry is the resolved style of the element at position
	// Index in the input slice.
	Entry struct {
		ID    string
		Index int
		Style Style
	}
)

// Log returns the logger of the options, a no-op one if unset.
func (o Options) Log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ElementID returns the identifier used for an element: its
// HTML id when not empty, or its position among the selected elements.
func ElementID(id string, index int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("shape[%d]", index)
}

// ResolveAll resolves the elements in order. Elements are independent:
// with WarnErrorMode and IgnoreErrorMode a failing element is only left
// out of the result. With StrictErrorMode the first failure is returned
// and no entries at all, so that callers never write a partial result.
func ResolveAll(elements []Element, opts Options) ([]Entry, error) {
	log := opts.Log()
	out := make([]Entry, 0, len(elements))
	for i, el := range elements {
		st, err := Resolve(el.Attrs, opts.Names)
		if err != nil {
			switch opts.ErrorMode {
			case StrictErrorMode:
				return nil, fmt.Errorf("element %s: %w", el.ID, err)
			case WarnErrorMode:
				log.Warn("skipping shape", zap.String("element", el.ID), zap.Error(err))
			}
			continue
		}
		log.Debug("resolved shape", zap.String("element", el.ID), zap.String("style", st.String()))
		out = append(out, Entry{ID: el.ID, Index: i, Style: st})
	}
	return out, nil
}
