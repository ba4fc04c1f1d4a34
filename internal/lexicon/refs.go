package lexicon

import "strings"

// StrongRefID is the namespace id of the strong reference shape, a
// {uri, cid} pair pointing at a specific version of another record.
const StrongRefID = "com.atproto.repo.strongRef"

// ExpandRef expands local fragment shorthand ("#name") against the
// enclosing lexicon id. Fully-qualified refs pass through unchanged.
func ExpandRef(ref, owningID string) string {
	if strings.HasPrefix(ref, "#") {
		return owningID + ref
	}
	return ref
}

// ParseRef splits a ref into its namespace id and fragment name. The
// fragment is "" for a main ref.
func ParseRef(ref string) (id, fragment string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// IsFragmentRef reports whether the ref names a locally defined
// sub-object rather than a main definition.
func IsFragmentRef(ref string) bool {
	return strings.Contains(ref, "#")
}

// IsURIFormat reports whether a string property format denotes a record
// URI, the second reference shape eligible for forward joins.
func IsURIFormat(format string) bool {
	return format == "at-uri" || format == "uri"
}
