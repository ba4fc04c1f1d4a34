package graph

import (
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"

	"github.com/loomview/loom/internal/config"
	"github.com/loomview/loom/internal/lexicon"
	"github.com/loomview/loom/internal/pagination"
	"github.com/loomview/loom/internal/store"
)

// DefaultSort orders collections newest first when neither the request
// nor the view manifest says otherwise.
const DefaultSort = "indexed_at:desc"

// SchemaOptions tunes schema assembly.
type SchemaOptions struct {
	Views           *config.Views
	DefaultPageSize int
	MaxPageSize     int
	Strict          bool
	Logger          *slog.Logger
}

// PageInfoType is the shared pagination envelope.
var PageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"startCursor":     &graphql.Field{Type: graphql.String},
		"endCursor":       &graphql.Field{Type: graphql.String},
		"hasNextPage":     &graphql.Field{Type: graphql.Boolean},
		"hasPreviousPage": &graphql.Field{Type: graphql.Boolean},
	},
})

// BuildSchema compiles the catalog into a served GraphQL schema: one
// list query and one by-uri query per record collection, plus a generic
// record lookup. The transport layer executes operations against the
// returned schema with a per-request resolver context attached.
func BuildSchema(catalog *lexicon.Catalog, st *store.Store, opts SchemaOptions) (graphql.Schema, error) {
	recordType := NewRecordType()
	b := &Builder{
		Catalog:    catalog,
		Fetch:      st.GetRecordsByURI,
		RecordType: recordType,
		Strict:     opts.Strict,
		Logger:     opts.Logger,
	}
	table, err := b.Build()
	if err != nil {
		return graphql.Schema{}, err
	}

	queryFields := graphql.Fields{
		"record": &graphql.Field{
			Type:        recordType,
			Description: "Look up any record by its URI.",
			Args: graphql.FieldConfigArgument{
				"uri": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				rec, err := st.GetRecordByURI(p.Context, p.Args["uri"].(string))
				if err != nil {
					return nil, err
				}
				if rec == nil {
					return nil, nil
				}
				return rec, nil
			},
		},
	}

	for _, ref := range catalog.RecordRefs() {
		obj, ok := table[ref].(*graphql.Object)
		if !ok {
			continue
		}
		name := QueryFieldName(ref)
		queryFields[name] = listField(st, ref, obj, opts)
		queryFields[name+"ByUri"] = byURIField(st, ref, obj)
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
	})
}

// connectionType wraps a collection's object type in the connection
// envelope: edges carrying per-record cursors plus page info.
func connectionType(obj *graphql.Object) *graphql.Object {
	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: obj.Name() + "Edge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: obj},
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: obj.Name() + "Connection",
		Fields: graphql.Fields{
			"edges":    &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(edge))},
			"pageInfo": &graphql.Field{Type: graphql.NewNonNull(PageInfoType)},
		},
	})
}

func listField(st *store.Store, collection string, obj *graphql.Object, opts SchemaOptions) *graphql.Field {
	return &graphql.Field{
		Type:        connectionType(obj),
		Description: "List " + collection + " records with keyset pagination.",
		Args: graphql.FieldConfigArgument{
			"first":  &graphql.ArgumentConfig{Type: graphql.Int},
			"after":  &graphql.ArgumentConfig{Type: graphql.String},
			"before": &graphql.ArgumentConfig{Type: graphql.String},
			"sort":   &graphql.ArgumentConfig{Type: graphql.String},
		},
		Resolve: makeListResolver(st, collection, opts),
	}
}

func makeListResolver(st *store.Store, collection string, opts SchemaOptions) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		view := opts.Views.For(collection)

		sortStr, _ := p.Args["sort"].(string)
		if sortStr == "" && view != nil {
			sortStr = view.Sort
		}
		if sortStr == "" {
			sortStr = DefaultSort
		}
		spec, err := pagination.ParseSortSpec(sortStr)
		if err != nil {
			return nil, err
		}

		limit := pageSize(p.Args, view, opts)

		after, _ := p.Args["after"].(string)
		before, _ := p.Args["before"].(string)
		if after != "" && before != "" {
			return nil, fmt.Errorf("cannot paginate with both after and before")
		}
		isBefore := before != ""
		cursorStr := after
		if isBefore {
			cursorStr = before
		}

		d := st.Dialect()
		var where string
		var params []string
		if cursorStr != "" {
			cur, err := pagination.DecodeCursor(cursorStr, spec)
			if err != nil {
				return nil, err
			}
			// The collection filter holds placeholder 1.
			where, params = pagination.BuildCursorWhereClause(d, cur, spec, isBefore, 2)
		}

		recs, err := st.ListPage(p.Context, collection, where, params,
			pagination.OrderBy(d, spec, isBefore), limit+1)
		if err != nil {
			return nil, err
		}
		hasMore := len(recs) > limit
		if hasMore {
			recs = recs[:limit]
		}
		if isBefore {
			reverseRecords(recs)
		}

		if rc := ResolverContextFrom(p.Context); rc != nil && rc.Loader != nil {
			byURI := make(map[string]*store.Record, len(recs))
			var refs []string
			for _, rec := range recs {
				byURI[rec.URI] = rec
				refs = collectRefURIs(rec.Value(), refs)
			}
			rc.Loader.Prime(byURI)
			rc.Loader.Enqueue(refs)
		}

		edges := make([]interface{}, 0, len(recs))
		for _, rec := range recs {
			edges = append(edges, map[string]interface{}{
				"node":   nodeValue(rec),
				"cursor": pagination.GenerateCursorFromRecord(rec, spec),
			})
		}
		pageInfo := map[string]interface{}{
			"hasNextPage":     !isBefore && hasMore,
			"hasPreviousPage": isBefore && hasMore,
		}
		if len(edges) > 0 {
			pageInfo["startCursor"] = edges[0].(map[string]interface{})["cursor"]
			pageInfo["endCursor"] = edges[len(edges)-1].(map[string]interface{})["cursor"]
		}
		return map[string]interface{}{
			"edges":    edges,
			"pageInfo": pageInfo,
		}, nil
	}
}

func byURIField(st *store.Store, collection string, obj *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type:        obj,
		Description: "Look up one " + collection + " record by URI.",
		Args: graphql.FieldConfigArgument{
			"uri": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			rec, err := st.GetRecordByURI(p.Context, p.Args["uri"].(string))
			if err != nil {
				return nil, err
			}
			if rec == nil || rec.Collection != collection {
				return nil, nil
			}
			return nodeValue(rec), nil
		},
	}
}

func pageSize(args map[string]interface{}, view *config.View, opts SchemaOptions) int {
	limit := opts.DefaultPageSize
	if view != nil && view.PageSize > 0 {
		limit = view.PageSize
	}
	if first, ok := args["first"].(int); ok && first > 0 {
		limit = first
	}
	if limit <= 0 {
		limit = 50
	}
	if opts.MaxPageSize > 0 && limit > opts.MaxPageSize {
		limit = opts.MaxPageSize
	}
	return limit
}

func reverseRecords(recs []*store.Record) {
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
}
