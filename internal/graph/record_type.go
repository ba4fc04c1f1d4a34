package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/loomview/loom/internal/store"
)

// NewRecordType builds the generic record type used by forward-join
// fields, whose targets can belong to any collection. The uri field
// also tolerates a raw URI source, the degraded result of resolving a
// join with no loader configured.
func NewRecordType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "Record",
		Description: "A stored record of any collection.",
		Fields: graphql.Fields{
			"uri": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					switch src := p.Source.(type) {
					case *store.Record:
						return src.URI, nil
					case string:
						return src, nil
					}
					return nil, nil
				},
			},
			"cid":        recordColumnField(func(r *store.Record) interface{} { return r.CID }),
			"did":        recordColumnField(func(r *store.Record) interface{} { return r.DID }),
			"collection": recordColumnField(func(r *store.Record) interface{} { return r.Collection }),
			"rkey":       recordColumnField(func(r *store.Record) interface{} { return r.RKey }),
			"indexedAt":  recordColumnField(func(r *store.Record) interface{} { return r.IndexedAt }),
			"value": &graphql.Field{
				Type:        JSONType,
				Description: "The decoded record payload.",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if rec, ok := p.Source.(*store.Record); ok {
						return nodeValue(rec), nil
					}
					return nil, nil
				},
			},
		},
	})
}

func recordColumnField(get func(*store.Record) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if rec, ok := p.Source.(*store.Record); ok {
				return get(rec), nil
			}
			return nil, nil
		},
	}
}

// nodeValue exposes a record's payload as a resolver source: the
// decoded JSON with the owning identity injected so did-dependent
// enrichments work from the root down.
func nodeValue(rec *store.Record) map[string]interface{} {
	v := rec.Value()
	if _, ok := v["did"]; !ok {
		v["did"] = rec.DID
	}
	return v
}
