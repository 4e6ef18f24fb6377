package shapelive

import (
	"github.com/benoitkugler/marbles/shape"
)

// collectScript returns, for each element matching the selector and in
// document order, its id and the subset of the given attributes it carries.
const collectScript = `(selector, names) => Array.from(document.querySelectorAll(selector)).map((el) => {
	const attrs = {};
	for (const name of names) {
		if (el.hasAttribute(name)) {
			attrs[name] = el.getAttribute(name);
		}
	}
	return { id: el.id, attrs };
})`

// applyScript sets the properties of each update on the element
// at the same index in the selection.
const applyScript = `(selector, updates) => {
	const elements = document.querySelectorAll(selector);
	for (const update of updates) {
		const el = elements[update.index];
		if (!el) {
			continue;
		}
		for (const prop of update.props) {
			el.style.setProperty(prop.name, prop.value);
		}
	}
	return updates.length;
}`

type (
	collectedElement struct {
		ID    string            `json:"id"`
		Attrs map[string]string `json:"attrs"`
	}

	property struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}

	update struct {
		Index int        `json:"index"`
		Props []property `json:"props"`
	}
)

// resolve is the pure part of a pass: collected attributes in,
// entries and the matching DOM updates out.
func resolve(collected []collectedElement, opts shape.Options) ([]shape.Entry, []update, error) {
	elements := make([]shape.Element, len(collected))
	for i, c := range collected {
		elements[i] = shape.Element{ID: shape.ElementID(c.ID, i), Attrs: shape.Map(c.Attrs)}
	}
	entries, err := shape.ResolveAll(elements, opts)
	if err != nil {
		return nil, nil, err
	}
	updates := make([]update, len(entries))
	for i, e := range entries {
		props := e.Style.Properties()
		u := update{Index: e.Index, Props: make([]property, len(props))}
		for j, p := range props {
			u.Props[j] = property{Name: p.Name, Value: p.Value}
		}
		updates[i] = u
	}
	return entries, updates, nil
}
