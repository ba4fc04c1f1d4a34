package lexicon

import (
	"sort"
	"sync/atomic"
)

// Catalog holds the current generation of loaded lexicons. Lookups read
// one frozen snapshot; Replace swaps the whole snapshot atomically, so
// a schema build never observes a partially-updated registry.
type Catalog struct {
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	lexicons map[string]*Lexicon
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	c := &Catalog{}
	c.snap.Store(&snapshot{lexicons: make(map[string]*Lexicon)})
	return c
}

// Replace installs a new generation of lexicons, wipe and replace. The
// previous snapshot stays valid for readers that already hold it.
func (c *Catalog) Replace(lexicons []*Lexicon) {
	m := make(map[string]*Lexicon, len(lexicons))
	for _, l := range lexicons {
		m[l.ID] = l
	}
	c.snap.Store(&snapshot{lexicons: m})
}

// Lexicon returns the lexicon with the given namespace id, or nil.
func (c *Catalog) Lexicon(id string) *Lexicon {
	return c.snap.Load().lexicons[id]
}

// Len returns the number of loaded lexicons.
func (c *Catalog) Len() int {
	return len(c.snap.Load().lexicons)
}

// ObjectDef resolves a fully-qualified ref to its object schema. Record
// mains resolve through their wrapped record shape.
func (c *Catalog) ObjectDef(ref string) (*Def, bool) {
	id, fragment := ParseRef(ref)
	lex := c.Lexicon(id)
	if lex == nil {
		return nil, false
	}
	name := fragment
	if name == "" {
		name = "main"
	}
	def := lex.Defs[name]
	if def == nil || !def.IsObject() {
		return nil, false
	}
	return def.ObjectSchema(), true
}

// ObjectRefs enumerates every object definition in the catalog as
// fully-qualified refs, partitioned into main-level and fragment refs.
// Both lists are sorted for deterministic build order.
func (c *Catalog) ObjectRefs() (mains, fragments []string) {
	for id, lex := range c.snap.Load().lexicons {
		for name, def := range lex.Defs {
			if !def.IsObject() {
				continue
			}
			if name == "main" {
				mains = append(mains, id)
			} else {
				fragments = append(fragments, id+"#"+name)
			}
		}
	}
	sort.Strings(mains)
	sort.Strings(fragments)
	return mains, fragments
}

// RecordRefs lists the main refs whose definition is a record type:
// the collections the store can hold.
func (c *Catalog) RecordRefs() []string {
	var refs []string
	for id, lex := range c.snap.Load().lexicons {
		if main := lex.Main(); main != nil && main.Type == "record" && main.Record != nil {
			refs = append(refs, id)
		}
	}
	sort.Strings(refs)
	return refs
}
