// Package lexicon decodes lexicon schema documents and holds them in an
// atomically-swapped catalog keyed by namespace id.
package lexicon

import (
	"sort"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Lexicon is one decoded schema document: a namespace id and its named
// definitions. Immutable once loaded.
type Lexicon struct {
	LexiconVersion int             `json:"lexicon"`
	ID             string          `json:"id"`
	Description    string          `json:"description,omitempty"`
	Defs           map[string]*Def `json:"defs"`
}

// Main returns the lexicon's main definition, or nil.
func (l *Lexicon) Main() *Def {
	return l.Defs["main"]
}

// Def is a single named definition inside a lexicon. The type tag
// decides which of the remaining fields are meaningful.
type Def struct {
	Type        string               `json:"type"`
	Description string               `json:"description,omitempty"`
	Key         string               `json:"key,omitempty"`    // record key kind, for type "record"
	Record      *Def                 `json:"record,omitempty"` // the object schema of a record def
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
}

// IsObject reports whether the def describes a queryable object shape,
// either directly or through a record wrapper.
func (d *Def) IsObject() bool {
	switch d.Type {
	case "object":
		return true
	case "record":
		return d.Record != nil
	}
	return false
}

// ObjectSchema resolves the def to its object shape: the def itself for
// type "object", the wrapped schema for type "record", nil otherwise.
func (d *Def) ObjectSchema() *Def {
	switch d.Type {
	case "object":
		return d
	case "record":
		return d.Record
	}
	return nil
}

// PropertyNames returns the property names in deterministic (sorted)
// order. JSON objects carry no order, so sorting keeps type layout and
// cursors stable across loads.
func (d *Def) PropertyNames() []string {
	names := make([]string, 0, len(d.Properties))
	for name := range d.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether the named property is in the required set.
func (d *Def) IsRequired(name string) bool {
	for _, r := range d.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Property is one property of an object definition: a tagged variant
// over scalar kinds, arrays, single refs, and unions.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Format      string   `json:"format,omitempty"`
	Ref         string   `json:"ref,omitempty"`
	Refs        []string `json:"refs,omitempty"`
	Items       *Items   `json:"items,omitempty"`
}

// Items describes the element type of an array property.
type Items struct {
	Type   string   `json:"type"`
	Format string   `json:"format,omitempty"`
	Ref    string   `json:"ref,omitempty"`
	Refs   []string `json:"refs,omitempty"`
}

// PropertyRefs collects every type ref the property mentions, directly
// or through its array items.
func PropertyRefs(p *Property) []string {
	var refs []string
	if p.Ref != "" {
		refs = append(refs, p.Ref)
	}
	refs = append(refs, p.Refs...)
	if p.Items != nil {
		if p.Items.Ref != "" {
			refs = append(refs, p.Items.Ref)
		}
		refs = append(refs, p.Items.Refs...)
	}
	return refs
}
