package graph

import (
	"context"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/ipfs/go-cid"

	"github.com/loomview/loom/internal/lexicon"
	"github.com/loomview/loom/internal/loader"
)

// ResolverContext carries the per-request collaborators resolvers need.
// It travels on the request context instead of being closed over, so
// built types stay generation-scoped while loaders stay request-scoped.
type ResolverContext struct {
	Loader *loader.Loader
}

type resolverContextKey struct{}

// WithResolverContext attaches a resolver context to ctx.
func WithResolverContext(ctx context.Context, rc *ResolverContext) context.Context {
	return context.WithValue(ctx, resolverContextKey{}, rc)
}

// ResolverContextFrom extracts the resolver context, or nil.
func ResolverContextFrom(ctx context.Context) *ResolverContext {
	rc, _ := ctx.Value(resolverContextKey{}).(*ResolverContext)
	return rc
}

const defaultBlobMimeType = "application/octet-stream"

// fieldResolver resolves a plain property by key lookup in the parent's
// decoded JSON, applying the two uniform enrichments: blob values are
// rewritten to the Blob shape, and the parent's did is propagated into
// nested values so ownership-dependent fields resolve without
// re-deriving it.
func fieldResolver(name string, prop *lexicon.Property) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src, ok := p.Source.(map[string]interface{})
		if !ok {
			return nil, nil
		}
		v, ok := src[name]
		if !ok || v == nil {
			return nil, nil
		}
		if prop.Type == "blob" {
			return blobValue(v, src["did"]), nil
		}
		return propagateDID(v, src["did"]), nil
	}
}

// joinResolver resolves a synthesized forward-join field: it extracts
// the target URI from the parent value and loads the referenced record
// through the per-request loader. With no loader configured it returns
// the raw URI.
func joinResolver(name string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src, ok := p.Source.(map[string]interface{})
		if !ok {
			return nil, nil
		}
		uri := extractRefURI(src[name])
		if uri == "" {
			return nil, nil
		}
		rc := ResolverContextFrom(p.Context)
		if rc == nil || rc.Loader == nil {
			return uri, nil
		}
		// Forcing the thunk dispatches everything enqueued so far; the
		// list resolver has already enqueued the whole page's references,
		// so one batch covers the response.
		rec, err := rc.Loader.Load(p.Context, uri)()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
		return rec, nil
	}
}

// extractRefURI pulls the canonical URI out of a reference value:
// either a raw URI string or an embedded strong-reference map.
func extractRefURI(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]interface{}:
		if uri, ok := v["uri"].(string); ok {
			return uri
		}
	}
	return ""
}

// blobValue rewrites a blob property to {ref, mimeType, size, did}.
// The content id comes from a raw string or the nested $link wrapper
// and is normalized through go-cid when it parses.
func blobValue(v, did interface{}) map[string]interface{} {
	out := map[string]interface{}{
		"ref":      "",
		"mimeType": defaultBlobMimeType,
		"size":     0,
		"did":      did,
	}
	switch v := v.(type) {
	case string:
		out["ref"] = normalizeCID(v)
	case map[string]interface{}:
		switch ref := v["ref"].(type) {
		case string:
			out["ref"] = normalizeCID(ref)
		case map[string]interface{}:
			if link, ok := ref["$link"].(string); ok {
				out["ref"] = normalizeCID(link)
			}
		}
		if link, ok := v["cid"].(string); ok && out["ref"] == "" {
			out["ref"] = normalizeCID(link)
		}
		if mime, ok := v["mimeType"].(string); ok && mime != "" {
			out["mimeType"] = mime
		}
		if size, ok := v["size"].(float64); ok {
			out["size"] = int(size)
		}
	}
	return out
}

func normalizeCID(s string) string {
	c, err := cid.Parse(s)
	if err != nil {
		return s
	}
	return c.String()
}

// propagateDID injects the parent's did into object values that lack
// one, recursing through arrays. Nested objects pick it up one level
// per resolver hop, so deeply nested values never need the root.
func propagateDID(v, did interface{}) interface{} {
	if did == nil {
		return v
	}
	switch v := v.(type) {
	case map[string]interface{}:
		if _, ok := v["did"]; !ok {
			v["did"] = did
		}
	case []interface{}:
		for _, item := range v {
			propagateDID(item, did)
		}
	}
	return v
}

// collectRefURIs walks a decoded record payload and gathers every
// reference target: strong-reference maps and at:// URI strings. List
// resolvers enqueue the result so one batch covers the whole page.
func collectRefURIs(v interface{}, uris []string) []string {
	switch v := v.(type) {
	case string:
		if strings.HasPrefix(v, "at://") {
			uris = append(uris, v)
		}
	case map[string]interface{}:
		strongRef := false
		if uri, ok := v["uri"].(string); ok {
			if _, hasCID := v["cid"].(string); hasCID && strings.HasPrefix(uri, "at://") {
				uris = append(uris, uri)
				strongRef = true
			}
		}
		for key, child := range v {
			if strongRef && key == "uri" {
				continue
			}
			uris = collectRefURIs(child, uris)
		}
	case []interface{}:
		for _, item := range v {
			uris = collectRefURIs(item, uris)
		}
	}
	return uris
}
