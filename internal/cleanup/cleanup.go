// SPDX-License-Identifier: Apache-2.0

// Package cleanup removes null fields and the empty containers they leave
// behind.
package cleanup

import (
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

// RemoveIfNull deletes the value at path wherever it is nullish. Paths that
// cross arrays are applied to every element. Objects on the path that the
// removal leaves without keys are removed too; order itself is kept.
func RemoveIfNull(order map[string]any, path string) {
	segs := fieldpath.Split(path)
	if len(segs) == 0 {
		return
	}
	removeNull(order, segs)
}

// removeNull reports whether node is an object emptied by a removal.
func removeNull(node any, segs []string) bool {
	switch n := node.(type) {
	case []any:
		if idx, ok := fieldpath.Index(segs[0], len(n)); ok {
			if len(segs) > 1 {
				removeNull(n[idx], segs[1:])
			}
			return false
		}
		for _, el := range n {
			removeNull(el, segs)
		}
	case map[string]any:
		v, ok := n[segs[0]]
		if !ok {
			return false
		}
		if len(segs) == 1 {
			if !fieldpath.IsNullish(v) {
				return false
			}
			delete(n, segs[0])
			return len(n) == 0
		}
		if removeNull(v, segs[1:]) {
			delete(n, segs[0])
			return len(n) == 0
		}
	}
	return false
}

// RemoveNulls applies RemoveIfNull to every mapping flagged removeIfNull and
// returns how many mappings were applied.
func RemoveNulls(order map[string]any, mappings []mapping.FieldMapping) int {
	n := 0
	for _, m := range mappings {
		if !m.RemoveIfNull || m.FieldName == "" {
			continue
		}
		RemoveIfNull(order, m.FieldName)
		n++
	}
	return n
}

// Prune walks order bottom-up. Empty objects are dropped from arrays and
// arrays left without elements are removed from their parent. Empty objects
// outside arrays are kept, as is order itself.
func Prune(order map[string]any) {
	pruneObject(order)
}

func pruneObject(m map[string]any) {
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			pruneObject(t)
		case []any:
			kept := pruneArray(t)
			if len(kept) == 0 {
				delete(m, k)
				continue
			}
			m[k] = kept
		}
	}
}

func pruneArray(list []any) []any {
	kept := make([]any, 0, len(list))
	for _, el := range list {
		switch t := el.(type) {
		case map[string]any:
			pruneObject(t)
			if len(t) == 0 {
				continue
			}
		case []any:
			t = pruneArray(t)
			if len(t) == 0 {
				continue
			}
			el = t
		}
		kept = append(kept, el)
	}
	return kept
}
