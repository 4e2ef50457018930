// SPDX-License-Identifier: Apache-2.0

// Package fieldpath reads and mutates values at dot-separated paths inside
// JSON-shaped trees (map[string]any, []any and scalars).
//
// When a path walks into an array before its last segment, the remaining
// path is applied to every element of that array. A numeric segment selects a
// single element instead. None of the functions panic: missing paths are
// reported as absent by Get and ignored by the mutating functions.
package fieldpath

import (
	"strconv"
	"strings"

	"github.com/mohae/deepcopy"
)

// Split breaks a dotted path into its non-empty segments.
func Split(path string) []string {
	raw := strings.Split(path, ".")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// ThroughArray reports whether walking path inside obj crosses an array
// before reaching the final segment.
func ThroughArray(obj any, path string) bool {
	node := obj
	segs := Split(path)
	for i, seg := range segs {
		switch n := node.(type) {
		case []any:
			return i < len(segs)
		case map[string]any:
			node = n[seg]
		default:
			return false
		}
	}
	return false
}

// Get returns the value stored at path. The boolean is false when any
// segment is missing or an intermediate value is nil. Paths that fan out
// through an array yield a []any holding the value found in each element.
func Get(obj any, path string) (any, bool) {
	segs := Split(path)
	if len(segs) == 0 {
		return obj, obj != nil
	}
	return get(obj, segs)
}

func get(node any, segs []string) (any, bool) {
	if len(segs) == 0 {
		return node, true
	}
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[segs[0]]
		if !ok {
			return nil, false
		}
		if child == nil && len(segs) > 1 {
			return nil, false
		}
		return get(child, segs[1:])
	case []any:
		if idx, ok := Index(segs[0], len(n)); ok {
			return get(n[idx], segs[1:])
		}
		out := make([]any, 0, len(n))
		for _, el := range n {
			if v, ok := get(el, segs); ok {
				out = append(out, v)
			}
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}

// Set assigns value at path, creating empty objects for missing
// intermediates. Composite values are copied for every fan-out target so
// sibling elements never share state.
func Set(obj any, path string, value any) {
	segs := Split(path)
	if len(segs) == 0 {
		return
	}
	update(obj, segs, func(any, bool) (any, bool) { return value, true }, true, new(bool))
}

// Update replaces the value at every location addressed by path with the
// result of fn. fn receives the current value and whether it was present;
// returning false leaves that location untouched. Missing intermediates are
// created.
func Update(obj any, path string, fn func(old any, found bool) (any, bool)) {
	segs := Split(path)
	if len(segs) == 0 {
		return
	}
	update(obj, segs, fn, false, new(bool))
}

func update(node any, segs []string, fn func(any, bool) (any, bool), copyShared bool, seen *bool) {
	switch n := node.(type) {
	case []any:
		if idx, ok := Index(segs[0], len(n)); ok {
			if len(segs) == 1 {
				if v, keep := fn(n[idx], true); keep {
					n[idx] = share(v, copyShared, seen)
				}
				return
			}
			update(n[idx], segs[1:], fn, copyShared, seen)
			return
		}
		for _, el := range n {
			update(el, segs, fn, copyShared, seen)
		}
	case map[string]any:
		key := segs[0]
		if len(segs) == 1 {
			old, found := n[key]
			if v, keep := fn(old, found); keep {
				n[key] = share(v, copyShared, seen)
			}
			return
		}
		child, ok := n[key]
		if !ok || child == nil {
			child = map[string]any{}
			n[key] = child
		}
		update(child, segs[1:], fn, copyShared, seen)
	}
}

// share hands out the original value the first time and a deep copy after
// that, so fanned-out composites stay independent.
func share(v any, copyShared bool, seen *bool) any {
	if !copyShared {
		return v
	}
	switch v.(type) {
	case map[string]any, []any:
		if *seen {
			return deepcopy.Copy(v)
		}
		*seen = true
	}
	return v
}

// Delete removes the final key of path, fanning out through arrays. Missing
// paths are ignored.
func Delete(obj any, path string) {
	DeleteIf(obj, path, func(any) bool { return true })
}

// DeleteIf removes the final key of path wherever pred holds for the
// current value.
func DeleteIf(obj any, path string, pred func(v any) bool) {
	segs := Split(path)
	if len(segs) == 0 {
		return
	}
	deleteIf(obj, segs, pred)
}

func deleteIf(node any, segs []string, pred func(any) bool) {
	switch n := node.(type) {
	case []any:
		if idx, ok := Index(segs[0], len(n)); ok {
			if len(segs) > 1 {
				deleteIf(n[idx], segs[1:], pred)
			}
			return
		}
		for _, el := range n {
			deleteIf(el, segs, pred)
		}
	case map[string]any:
		if len(segs) == 1 {
			if v, ok := n[segs[0]]; ok && pred(v) {
				delete(n, segs[0])
			}
			return
		}
		if child, ok := n[segs[0]]; ok {
			deleteIf(child, segs[1:], pred)
		}
	}
}

// Index parses seg as a position within an array of length n.
func Index(seg string, n int) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// Clone returns a deep copy of a JSON-shaped value.
func Clone(v any) any {
	return deepcopy.Copy(v)
}
