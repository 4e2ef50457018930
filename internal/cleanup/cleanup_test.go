// SPDX-License-Identifier: Apache-2.0

package cleanup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gemaraproj/fieldmap/internal/cleanup"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

func TestRemoveIfNull(t *testing.T) {
	tests := []struct {
		name  string
		order map[string]any
		path  string
		want  map[string]any
	}{
		{
			name:  "nil value",
			order: map[string]any{"a": nil, "b": "x"},
			path:  "a",
			want:  map[string]any{"b": "x"},
		},
		{
			name:  "literal null text",
			order: map[string]any{"a": "NULL"},
			path:  "a",
			want:  map[string]any{},
		},
		{
			name:  "value kept",
			order: map[string]any{"a": "0"},
			path:  "a",
			want:  map[string]any{"a": "0"},
		},
		{
			name:  "false is not null",
			order: map[string]any{"a": false},
			path:  "a",
			want:  map[string]any{"a": false},
		},
		{
			name:  "emptied parent removed",
			order: map[string]any{"ref": "R", "shipper": map[string]any{"contact": map[string]any{"phone": "null"}}},
			path:  "shipper.contact.phone",
			want:  map[string]any{"ref": "R"},
		},
		{
			name:  "parent with siblings kept",
			order: map[string]any{"shipper": map[string]any{"phone": "", "name": "X"}},
			path:  "shipper.phone",
			want:  map[string]any{"shipper": map[string]any{"name": "X"}},
		},
		{
			name:  "parent that was already empty kept",
			order: map[string]any{"shipper": map[string]any{}},
			path:  "shipper.phone",
			want:  map[string]any{"shipper": map[string]any{}},
		},
		{
			name:  "index as last segment",
			order: map[string]any{"items": []any{"null", "x"}},
			path:  "items.0",
			want:  map[string]any{"items": []any{"null", "x"}},
		},
		{
			name:  "absent path",
			order: map[string]any{"b": "x"},
			path:  "a.c",
			want:  map[string]any{"b": "x"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cleanup.RemoveIfNull(tc.order, tc.path)
			assert.Equal(t, tc.want, tc.order)
		})
	}
}

func TestRemoveIfNull_FanOutThenPrune(t *testing.T) {
	order := map[string]any{
		"traceNumbers": []any{
			map[string]any{"traceNumber": "null"},
			map[string]any{"traceNumber": "T-2"},
		},
	}

	cleanup.RemoveIfNull(order, "traceNumbers.traceNumber")
	assert.Equal(t, []any{
		map[string]any{},
		map[string]any{"traceNumber": "T-2"},
	}, order["traceNumbers"])

	cleanup.Prune(order)
	assert.Equal(t, []any{map[string]any{"traceNumber": "T-2"}}, order["traceNumbers"])
}

func TestRemoveIfNull_WholeArrayDisappears(t *testing.T) {
	order := map[string]any{
		"ref": "R1",
		"traceNumbers": []any{
			map[string]any{"traceNumber": ""},
			map[string]any{"traceNumber": nil},
		},
	}

	cleanup.RemoveIfNull(order, "traceNumbers.traceNumber")
	cleanup.Prune(order)

	assert.Equal(t, map[string]any{"ref": "R1"}, order)
}

func TestRemoveNulls(t *testing.T) {
	order := map[string]any{"a": "", "b": "", "c": "x"}
	mappings := []mapping.FieldMapping{
		{FieldName: "a", RemoveIfNull: true},
		{FieldName: "b"},
		{FieldName: "c", RemoveIfNull: true},
	}

	n := cleanup.RemoveNulls(order, mappings)

	assert.Equal(t, 2, n)
	assert.Equal(t, map[string]any{"b": "", "c": "x"}, order)
}

func TestPrune(t *testing.T) {
	order := map[string]any{
		"keep":   "x",
		"zero":   float64(0),
		"empty":  []any{},
		"nested": map[string]any{"inner": map[string]any{}},
		"rows": []any{
			map[string]any{},
			map[string]any{"items": []any{map[string]any{}}},
			"scalar",
		},
	}

	cleanup.Prune(order)

	assert.Equal(t, map[string]any{
		"keep":   "x",
		"zero":   float64(0),
		"nested": map[string]any{"inner": map[string]any{}},
		"rows":   []any{"scalar"},
	}, order)
}

func TestPrune_KeepsEmptyObjectsOutsideArrays(t *testing.T) {
	order := map[string]any{
		"shipper": map[string]any{},
		"consignee": map[string]any{
			"contacts": []any{map[string]any{}},
			"address":  map[string]any{},
		},
	}

	cleanup.Prune(order)

	assert.Equal(t, map[string]any{
		"shipper":   map[string]any{},
		"consignee": map[string]any{"address": map[string]any{}},
	}, order)
}

func TestPrune_KeepsRoot(t *testing.T) {
	order := map[string]any{"rows": []any{map[string]any{}}}
	cleanup.Prune(order)
	assert.NotNil(t, order)
	assert.Empty(t, order)
}
