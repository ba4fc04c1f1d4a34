package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// JSONType passes arbitrary decoded JSON through unchanged. It backs
// lexicon "unknown" properties and the generic record payload.
var JSONType = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "An arbitrary JSON value, serialized as-is.",
	Serialize: func(value interface{}) interface{} {
		return value
	},
	ParseValue: func(value interface{}) interface{} {
		return value
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return valueAST.GetValue()
	},
})

// BlobType is the uniform shape blob-typed fields are rewritten to at
// resolve time.
var BlobType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Blob",
	Fields: graphql.Fields{
		"ref":      &graphql.Field{Type: graphql.String},
		"mimeType": &graphql.Field{Type: graphql.String},
		"size":     &graphql.Field{Type: graphql.Int},
		"did":      &graphql.Field{Type: graphql.String},
	},
})
