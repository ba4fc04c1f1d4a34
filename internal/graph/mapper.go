package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/loomview/loom/internal/lexicon"
)

// mapPropertyType maps one property definition to its GraphQL type
// against the given type table. It has no build-order dependency of its
// own: refs resolve by table lookup at call time, and a miss degrades
// to String (recorded for the post-build report, never fatal).
func (b *Builder) mapPropertyType(ownerRef, name string, prop *lexicon.Property, table typeTable) graphql.Output {
	switch prop.Type {
	case "string", "bytes", "cid-link":
		return graphql.String
	case "integer":
		return graphql.Int
	case "boolean":
		return graphql.Boolean
	case "float", "number":
		return graphql.Float
	case "blob":
		return BlobType
	case "unknown":
		return JSONType
	case "ref":
		return b.lookupRef(ownerRef, prop.Ref, table)
	case "union":
		return b.unionType(ownerRef, name, prop.Refs, table)
	case "array":
		return graphql.NewList(b.mapItemType(ownerRef, name, prop.Items, table))
	default:
		return graphql.String
	}
}

func (b *Builder) mapItemType(ownerRef, name string, items *lexicon.Items, table typeTable) graphql.Output {
	if items == nil {
		return graphql.String
	}
	itemProp := &lexicon.Property{
		Type:   items.Type,
		Format: items.Format,
		Ref:    items.Ref,
		Refs:   items.Refs,
	}
	return b.mapPropertyType(ownerRef, name, itemProp, table)
}

// lookupRef resolves a single type ref through the table. Unresolvable
// refs fall back to String: intentional for externally-unregistered
// refs, and the visible symptom of any build-order miss.
func (b *Builder) lookupRef(ownerRef, ref string, table typeTable) graphql.Output {
	ownerID, _ := lexicon.ParseRef(ownerRef)
	expanded := lexicon.ExpandRef(ref, ownerID)
	if t, ok := table[expanded]; ok {
		return t
	}
	b.noteUnresolved(ownerRef, expanded)
	return graphql.String
}

// unionType builds a union over the member refs. Every member must be
// present in the table as an object type; otherwise the whole union
// degrades to String for this pass.
func (b *Builder) unionType(ownerRef, propName string, refs []string, table typeTable) graphql.Output {
	ownerID, _ := lexicon.ParseRef(ownerRef)
	members := make([]*graphql.Object, 0, len(refs))
	byTypeTag := make(map[string]*graphql.Object, len(refs))
	for _, ref := range refs {
		expanded := lexicon.ExpandRef(ref, ownerID)
		obj, ok := table[expanded].(*graphql.Object)
		if !ok {
			b.noteUnresolved(ownerRef, expanded)
			return graphql.String
		}
		members = append(members, obj)
		byTypeTag[expanded] = obj
	}
	if len(members) == 0 {
		return graphql.String
	}
	return graphql.NewUnion(graphql.UnionConfig{
		Name:  TypeName(ownerRef) + upperFirst(propName) + "Union",
		Types: members,
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			// Union values carry their variant in $type.
			if m, ok := p.Value.(map[string]interface{}); ok {
				if tag, ok := m["$type"].(string); ok {
					if obj, ok := byTypeTag[lexicon.ExpandRef(tag, ownerID)]; ok {
						return obj
					}
				}
			}
			return members[0]
		},
	})
}
