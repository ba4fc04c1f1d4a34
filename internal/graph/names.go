// Package graph compiles lexicon definitions into a GraphQL type graph
// and assembles the query surface served over it.
package graph

import "strings"

// TypeName derives the GraphQL type name for a fully-qualified ref.
// It is a pure function of the ref string: "app.bsky.feed.post#viewerState"
// becomes "AppBskyFeedPostViewerState".
func TypeName(ref string) string {
	var sb strings.Builder
	for _, segment := range strings.FieldsFunc(ref, func(r rune) bool {
		return r == '.' || r == '#'
	}) {
		sb.WriteString(upperFirst(segment))
	}
	return sb.String()
}

// QueryFieldName derives the query field name for a collection ref:
// "app.bsky.feed.post" becomes "appBskyFeedPost".
func QueryFieldName(ref string) string {
	return lowerFirst(TypeName(ref))
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
