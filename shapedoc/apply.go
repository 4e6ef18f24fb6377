package shapedoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/benoitkugler/marbles/shape"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const styleAttr = "style"

// errLossyStyle is returned when the parsed declarations don't give
// back the original text (comments, blocks in custom property values...)
var errLossyStyle = errors.New("style can't be parsed without loss")

// Apply writes the custom properties of the plan into the inline
// style of each node. When the existing style parses cleanly, properties
// already present are replaced in place and the other declarations kept.
// Otherwise the existing text is kept verbatim and the properties are
// appended to it, so that they win over earlier ones; with
// shape.StrictErrorMode such a style is an error instead.
// All the new style values are computed before any node is modified,
// so that a failing Apply leaves the document untouched.
func Apply(plan Plan, opts shape.Options) error {
	log := opts.Log()
	styles := make([]string, len(plan))
	for i, e := range plan {
		current, _ := nodeAttrs{e.Node}.Attr(styleAttr)
		props := e.Style.Properties()
		merged, err := mergeStyle(current, props)
		if err != nil {
			switch opts.ErrorMode {
			case shape.StrictErrorMode:
				return fmt.Errorf("element %s: invalid style attribute: %w", e.ID, err)
			case shape.WarnErrorMode:
				log.Warn("appending to unparsed style", zap.String("element", e.ID), zap.Error(err))
			}
			merged = appendStyle(current, props)
		}
		styles[i] = merged
	}
	for i, e := range plan {
		setAttr(e.Node, styleAttr, styles[i])
	}
	return nil
}

// parseInlineStyle parses the content of a style attribute.
// It fails when the declarations would not serialize back to `style`.
func parseInlineStyle(style string) ([]*css.Declaration, error) {
	style = strings.TrimSpace(style)
	if style == "" {
		return nil, nil
	}
	// the parser is strict about the final semicolon,
	// which is optional in HTML
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return nil, err
	}
	var serialized strings.Builder
	for _, decl := range decls {
		if !strings.Contains(style, decl.Property) || !strings.Contains(style, decl.Value) {
			return nil, errLossyStyle
		}
		serialized.WriteString(declString(decl))
	}
	if stripSpaces(serialized.String()) != stripSpaces(style) {
		return nil, errLossyStyle
	}
	return decls, nil
}

func stripSpaces(s string) string { return strings.Join(strings.Fields(s), "") }

func declString(decl *css.Declaration) string {
	s := decl.Property + ": " + decl.Value
	if decl.Important {
		s += " !important"
	}
	return s + ";"
}

func joinProperties(props []shape.Property) string {
	chunks := make([]string, len(props))
	for i, p := range props {
		chunks[i] = p.String()
	}
	return strings.Join(chunks, " ")
}

// mergeStyle behaves as repeated calls to style.setProperty on
// an element whose inline style is `current`.
func mergeStyle(current string, props []shape.Property) (string, error) {
	decls, err := parseInlineStyle(current)
	if err != nil {
		return "", err
	}
	for _, prop := range props {
		found := false
		for _, decl := range decls {
			if decl.Property == prop.Name {
				decl.Value = prop.Value
				decl.Important = false
				found = true
			}
		}
		if !found {
			decls = append(decls, &css.Declaration{Property: prop.Name, Value: prop.Value})
		}
	}
	chunks := make([]string, len(decls))
	for i, decl := range decls {
		chunks[i] = declString(decl)
	}
	return strings.Join(chunks, " "), nil
}

// appendStyle adds the properties after the untouched `current` text.
// Later declarations take precedence, and a malformed one is dropped by
// CSS parsers up to its semicolon, which is added if missing.
func appendStyle(current string, props []shape.Property) string {
	current = strings.TrimSpace(current)
	if current == "" {
		return joinProperties(props)
	}
	if !strings.HasSuffix(current, ";") {
		current += ";"
	}
	return current + " " + joinProperties(props)
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
