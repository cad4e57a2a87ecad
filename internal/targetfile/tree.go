package targetfile

import (
	"fmt"
	"sort"
)

// visit walks a decoded document and calls fn for every string scalar found
// in sequence elements and mapping values. Keys are never visited. When fn
// reports ok the scalar is replaced in place by the returned string.
// visit returns the (possibly replaced) node and the number of replacements.
func visit(node any, fn func(s string) (string, bool)) (any, int) {
	switch v := node.(type) {
	case string:
		if r, ok := fn(v); ok {
			return r, 1
		}
		return v, 0
	case []any:
		n := 0
		for i := range v {
			var c int
			v[i], c = visit(v[i], fn)
			n += c
		}
		return v, n
	case []map[string]any:
		n := 0
		for _, m := range v {
			_, c := visit(m, fn)
			n += c
		}
		return v, n
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := 0
		for _, k := range keys {
			var c int
			v[k], c = visit(v[k], fn)
			n += c
		}
		return v, n
	case map[any]any:
		keys := make([]any, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
		})
		n := 0
		for _, k := range keys {
			var c int
			v[k], c = visit(v[k], fn)
			n += c
		}
		return v, n
	default:
		return node, 0
	}
}

// collect returns every string scalar of the tree accepted by match, in
// document order (mapping values in key order).
func collect(node any, match Predicate) []string {
	var out []string
	visit(node, func(s string) (string, bool) {
		if match(s) {
			out = append(out, s)
		}
		return "", false
	})
	return out
}

// replace substitutes every scalar that is a key of subs with its value.
// Each scalar is looked up once, so a replacement is never replaced again.
func replace(node any, subs map[string]string) (any, int) {
	return visit(node, func(s string) (string, bool) {
		r, ok := subs[s]
		return r, ok
	})
}
