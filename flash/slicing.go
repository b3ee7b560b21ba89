package flash

import "strings"

// flattenSlices implements spec §4.5's slice flattening: every key
// containing ":" is split into its parent base name and moved into an
// array on that key, in the order those slice keys were assigned (which,
// since children are projected in ED declaration order, matches the ED
// declaration order spec §8 scenario S4 requires).
func flattenSlices(result *Result) {
	keys := append([]string(nil), result.Keys()...)
	for _, k := range keys {
		idx := strings.Index(k, ":")
		if idx < 0 {
			continue
		}
		parent := k[:idx]
		v, _ := result.Get(k)
		flattened := flattenPrimitives(v)

		var arr []any
		if existing, has := result.Get(parent); has {
			arr, _ = existing.([]any)
		}
		arr = append(arr, flattened)
		result.Set(parent, arr)
		result.Delete(k)
	}
}

// baseKeyOf strips a ":sliceName" suffix, yielding the JSON key a slice
// ultimately flattens into.
func baseKeyOf(key string) string {
	if i := strings.Index(key, ":"); i >= 0 {
		return key[:i]
	}
	return key
}
