package flash

import (
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/env"
)

// injectMetaProfile implements spec §4.5's "Meta profile injection": when
// the block carries a profileUrl, ensure meta.profile is an array
// containing it exactly once.
func injectMetaProfile(result *Result, profileURL string) {
	if profileURL == "" {
		return
	}

	var meta map[string]any
	isNew := false
	if v, ok := result.Get("meta"); ok {
		if m, ok2 := v.(map[string]any); ok2 {
			meta = m
		}
	}
	if meta == nil {
		meta = map[string]any{}
		isNew = true
	}

	var profiles []any
	if p, ok := meta["profile"]; ok {
		profiles, _ = p.([]any)
	}
	found := false
	for _, p := range profiles {
		if s, ok := p.(string); ok && s == profileURL {
			found = true
			break
		}
	}
	if !found {
		profiles = append(profiles, profileURL)
	}
	meta["profile"] = profiles

	if !isNew {
		result.Set("meta", meta)
		return
	}
	if result.Has("id") {
		result.InsertAfter("id", "meta", meta)
	} else if result.Has("resourceType") {
		result.InsertAfter("resourceType", "meta", meta)
	} else {
		result.Set("meta", meta)
	}
}

// reorderKeys implements spec §4.5's "Key reordering": resourceType first,
// then children in ED order (each followed by its slice-derived key, which
// by this point is just the base name, and its "_name" sibling when
// primitive), unknown keys last. Skipped when reordering is disabled or
// when the key set is unchanged since the pre-injection snapshot.
func reorderKeys(result *Result, resourceType string, children []*definitions.ElementDefinition, scope *env.Env) {
	if scope.DisableReordering() {
		return
	}
	if before, ok := scope.KeysBeforeAutoInjection(); ok && sameKeySet(before, result.Keys()) {
		return
	}

	wanted := make([]string, 0, len(children)*2+1)
	seen := make(map[string]bool, len(children)*2+1)
	if resourceType != "" || result.Has("resourceType") {
		wanted = append(wanted, "resourceType")
		seen["resourceType"] = true
	}
	for _, ed := range children {
		for _, n := range candidateNames(ed) {
			base := baseKeyOf(n)
			if !seen[base] {
				seen[base] = true
				wanted = append(wanted, base)
			}
			if ed.Kind == definitions.KindPrimitiveType {
				ext := "_" + base
				if !seen[ext] {
					seen[ext] = true
					wanted = append(wanted, ext)
				}
			}
		}
	}

	result.Reorder(wanted)
}

func keySet(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

func sameKeySet(before map[string]bool, after []string) bool {
	if len(before) != len(after) {
		return false
	}
	for _, k := range after {
		if !before[k] {
			return false
		}
	}
	return true
}
