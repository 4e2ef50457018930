// SPDX-License-Identifier: Apache-2.0

package fieldpath

import "strings"

// IsNullish reports whether v counts as null for remove-if-null purposes:
// nil, the empty string, or the literal text "null".
func IsNullish(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "null")
	}
	return false
}

// IsEmpty reports whether v is nil, an empty string or an empty array.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	}
	return false
}

// IsEmptyObject reports whether v is an object without keys.
func IsEmptyObject(v any) bool {
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}
