package graph

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/loomview/loom/internal/lexicon"
	"github.com/loomview/loom/internal/loader"
)

// typeTable is the build accumulator: fully-qualified ref to built
// type. It is threaded by value through phases and passes; types link
// to each other only through this index, never by construction order.
type typeTable map[string]graphql.Type

func (t typeTable) clone() typeTable {
	next := make(typeTable, len(t))
	for ref, typ := range t {
		next[ref] = typ
	}
	return next
}

// Builder turns a catalog snapshot into a total ref-to-type table.
// When Fetch and RecordType are both set, reference-shaped properties
// additionally get a synthesized forward-join field.
type Builder struct {
	Catalog    *lexicon.Catalog
	Fetch      loader.FetchFunc
	RecordType *graphql.Object
	// Strict fails the build when refs remain unresolved after the
	// final pass instead of leaving the scalar fallback in place.
	Strict bool
	Logger *slog.Logger

	objects    map[string]*graphql.Object
	fields     map[string]graphql.Fields
	unresolved map[string][]string
}

// BuildAllObjectTypes builds the full type graph for a catalog. The
// fetcher and generic record type may be nil; join fields are then
// omitted. Degradations are logged, never fatal.
func BuildAllObjectTypes(catalog *lexicon.Catalog, fetch loader.FetchFunc, recordType *graphql.Object) map[string]graphql.Type {
	b := &Builder{Catalog: catalog, Fetch: fetch, RecordType: recordType}
	table, _ := b.Build()
	return table
}

// Build runs the phased build:
//
//  1. main refs with no fragment dependency, against an empty table
//  2. every fragment ref, rebuilt once per fragment so that dependency
//     chains of any realizable length resolve regardless of order
//  3. main refs that depend on fragments, now resolvable
//
// Rebuilding an already-correct ref is idempotent: each ref's object
// identity is created once and its field set swapped underneath via a
// fields thunk, so cross-ref links never go stale.
func (b *Builder) Build() (map[string]graphql.Type, error) {
	b.objects = make(map[string]*graphql.Object)
	b.fields = make(map[string]graphql.Fields)
	b.unresolved = make(map[string][]string)

	mains, fragments := b.Catalog.ObjectRefs()
	var leaves, dependents []string
	for _, ref := range mains {
		if b.dependsOnFragment(ref) {
			dependents = append(dependents, ref)
		} else {
			leaves = append(leaves, ref)
		}
	}

	table := make(typeTable)
	table = b.buildPass(leaves, table)
	for i := 0; i < len(fragments); i++ {
		table = b.buildPass(fragments, table)
	}
	table = b.buildPass(dependents, table)

	b.report()
	if b.Strict && len(b.unresolved) > 0 {
		return table, fmt.Errorf("unresolved refs after final pass: %s", b.unresolvedSummary())
	}
	return table, nil
}

// buildPass rebuilds each ref against the accumulated table and returns
// the next table value. The input table is never mutated.
func (b *Builder) buildPass(refs []string, table typeTable) typeTable {
	next := table.clone()
	for _, ref := range refs {
		b.fields[ref] = b.buildObjectFields(ref, next)
		next[ref] = b.ensureObject(ref)
	}
	return next
}

// buildObjectFields computes the field set for one ref against the
// current table. Each rebuild starts from a clean unresolved slate for
// the ref, so only the final pass's misses survive to the report.
func (b *Builder) buildObjectFields(ref string, table typeTable) graphql.Fields {
	delete(b.unresolved, ref)

	fields := graphql.Fields{}
	def, ok := b.Catalog.ObjectDef(ref)
	if ok {
		ownerID, _ := lexicon.ParseRef(ref)
		for _, name := range def.PropertyNames() {
			prop := def.Properties[name]
			ftype := b.mapPropertyType(ref, name, prop, table)
			if def.IsRequired(name) {
				ftype = graphql.NewNonNull(ftype)
			}
			fields[name] = &graphql.Field{
				Type:        ftype,
				Description: prop.Description,
				Resolve:     fieldResolver(name, prop),
			}
			if b.Fetch != nil && b.RecordType != nil && joinable(prop, ownerID) {
				fields[name+"Resolved"] = &graphql.Field{
					Type:        b.RecordType,
					Description: "The record referenced by " + name + ", resolved at query time.",
					Resolve:     joinResolver(name),
				}
			}
		}
	}
	if len(fields) == 0 {
		// Object types need at least one field.
		fields["placeholder"] = &graphql.Field{
			Type: graphql.Boolean,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return true, nil
			},
		}
	}
	return fields
}

// joinable reports whether a property is one of the two reference
// shapes that get a forward-join field: a strong reference, or a
// URI-formatted string.
func joinable(prop *lexicon.Property, ownerID string) bool {
	switch prop.Type {
	case "ref":
		return lexicon.ExpandRef(prop.Ref, ownerID) == lexicon.StrongRefID
	case "string":
		return lexicon.IsURIFormat(prop.Format)
	}
	return false
}

// ensureObject returns the stable object for a ref, creating it on
// first use. The fields thunk reads the builder's latest field set for
// the ref, so every rebuild is visible through the same identity.
func (b *Builder) ensureObject(ref string) *graphql.Object {
	if obj, ok := b.objects[ref]; ok {
		return obj
	}
	obj := graphql.NewObject(graphql.ObjectConfig{
		Name: TypeName(ref),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return b.fields[ref]
		}),
	})
	b.objects[ref] = obj
	return obj
}

// dependsOnFragment reports whether a main ref mentions any fragment
// ref, directly or via an array's item or union refs.
func (b *Builder) dependsOnFragment(ref string) bool {
	def, ok := b.Catalog.ObjectDef(ref)
	if !ok {
		return false
	}
	ownerID, _ := lexicon.ParseRef(ref)
	for _, prop := range def.Properties {
		for _, r := range lexicon.PropertyRefs(prop) {
			if lexicon.IsFragmentRef(lexicon.ExpandRef(r, ownerID)) {
				return true
			}
		}
	}
	return false
}

func (b *Builder) noteUnresolved(ownerRef, target string) {
	b.unresolved[ownerRef] = append(b.unresolved[ownerRef], target)
}

func (b *Builder) report() {
	log := b.Logger
	if log == nil {
		log = slog.Default()
	}
	for _, ref := range sortedKeys(b.unresolved) {
		log.Warn("unresolved type refs degraded to scalar fallback",
			"type", ref, "refs", strings.Join(b.unresolved[ref], ", "))
	}
}

// Unresolved returns the refs that still failed to resolve after the
// final pass, keyed by the def that mentions them.
func (b *Builder) Unresolved() map[string][]string {
	out := make(map[string][]string, len(b.unresolved))
	for ref, targets := range b.unresolved {
		out[ref] = append([]string(nil), targets...)
	}
	return out
}

func (b *Builder) unresolvedSummary() string {
	var parts []string
	for _, ref := range sortedKeys(b.unresolved) {
		parts = append(parts, fmt.Sprintf("%s -> [%s]", ref, strings.Join(b.unresolved[ref], ", ")))
	}
	return strings.Join(parts, "; ")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
