// SPDX-License-Identifier: Apache-2.0

package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gemaraproj/fieldmap/internal/mapping"
	"github.com/gemaraproj/fieldmap/internal/predicate"
)

func order() map[string]any {
	return map[string]any{
		"customer": "ACME Freight",
		"pieces":   float64(3),
		"count":    uint64(3),
		"weight":   "120.5",
		"hazmat":   true,
		"notes":    "",
		"refs":     []any{},
		"shipper":  map[string]any{"province": "ON"},
	}
}

func TestEvaluate(t *testing.T) {
	data := order()

	tests := []struct {
		name string
		p    mapping.Predicate
		want bool
	}{
		{"equals string", mapping.Predicate{Field: "customer", Operator: mapping.OpEquals, Value: "ACME Freight"}, true},
		{"equals is case sensitive", mapping.Predicate{Field: "customer", Operator: mapping.OpEquals, Value: "acme freight"}, false},
		{"equals across numeric kinds", mapping.Predicate{Field: "pieces", Operator: mapping.OpEquals, Value: uint64(3)}, true},
		{"equals is strict about type", mapping.Predicate{Field: "pieces", Operator: mapping.OpEquals, Value: "3"}, false},
		{"equals nested", mapping.Predicate{Field: "shipper.province", Operator: mapping.OpEquals, Value: "ON"}, true},
		{"equals missing vs nil", mapping.Predicate{Field: "missing", Operator: mapping.OpEquals, Value: nil}, true},
		{"not_equals", mapping.Predicate{Field: "customer", Operator: mapping.OpNotEquals, Value: "Other"}, true},
		{"in list", mapping.Predicate{Field: "shipper.province", Operator: mapping.OpIn, Value: []any{"QC", "ON"}}, true},
		{"in non-array fails closed", mapping.Predicate{Field: "shipper.province", Operator: mapping.OpIn, Value: "ON"}, false},
		{"not_in list", mapping.Predicate{Field: "shipper.province", Operator: mapping.OpNotIn, Value: []any{"QC"}}, true},
		{"not_in non-array", mapping.Predicate{Field: "shipper.province", Operator: mapping.OpNotIn, Value: "ON"}, true},
		{"greater_than numeric string", mapping.Predicate{Field: "weight", Operator: mapping.OpGreater, Value: 100}, true},
		{"greater_than uint", mapping.Predicate{Field: "count", Operator: mapping.OpGreater, Value: "2"}, true},
		{"less_than", mapping.Predicate{Field: "pieces", Operator: mapping.OpLess, Value: 3}, false},
		{"greater_than non-numeric fails", mapping.Predicate{Field: "customer", Operator: mapping.OpGreater, Value: 1}, false},
		{"greater_than missing fails", mapping.Predicate{Field: "missing", Operator: mapping.OpGreater, Value: -1}, false},
		{"less_than empty string fails", mapping.Predicate{Field: "notes", Operator: mapping.OpLess, Value: 1}, false},
		{"contains", mapping.Predicate{Field: "customer", Operator: mapping.OpContains, Value: "Freight"}, true},
		{"contains non-string actual", mapping.Predicate{Field: "pieces", Operator: mapping.OpContains, Value: "3"}, false},
		{"starts_with", mapping.Predicate{Field: "customer", Operator: mapping.OpStartsWith, Value: "ACME"}, true},
		{"ends_with", mapping.Predicate{Field: "customer", Operator: mapping.OpEndsWith, Value: "ACME"}, false},
		{"is_empty empty string", mapping.Predicate{Field: "notes", Operator: mapping.OpIsEmpty}, true},
		{"is_empty empty array", mapping.Predicate{Field: "refs", Operator: mapping.OpIsEmpty}, true},
		{"is_empty missing", mapping.Predicate{Field: "missing", Operator: mapping.OpIsEmpty}, true},
		{"is_empty false value", mapping.Predicate{Field: "hazmat", Operator: mapping.OpIsEmpty}, false},
		{"is_not_empty", mapping.Predicate{Field: "customer", Operator: mapping.OpIsNotEmpty}, true},
		{"unknown operator", mapping.Predicate{Field: "customer", Operator: "roughly", Value: "ACME"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, predicate.Evaluate(tt.p, data))
		})
	}
}

func TestAll(t *testing.T) {
	data := order()
	yes := mapping.Predicate{Field: "hazmat", Operator: mapping.OpEquals, Value: true}
	no := mapping.Predicate{Field: "hazmat", Operator: mapping.OpEquals, Value: false}

	assert.True(t, predicate.All(mapping.LogicAnd, []mapping.Predicate{yes, yes}, data))
	assert.False(t, predicate.All(mapping.LogicAnd, []mapping.Predicate{yes, no}, data))
	assert.True(t, predicate.All(mapping.LogicOr, []mapping.Predicate{no, yes}, data))
	assert.False(t, predicate.All(mapping.LogicOr, []mapping.Predicate{no, no}, data))
	assert.True(t, predicate.All("or", []mapping.Predicate{no, yes}, data))
	assert.True(t, predicate.All(mapping.LogicAnd, nil, data))
}

func TestResolve(t *testing.T) {
	data := order()
	a := mapping.Predicate{Field: "customer", Operator: mapping.OpStartsWith, Value: "ACME"}
	b := mapping.Predicate{Field: "hazmat", Operator: mapping.OpEquals, Value: true}
	never := mapping.Predicate{Field: "pieces", Operator: mapping.OpGreater, Value: 100}

	t.Run("first match wins", func(t *testing.T) {
		got, ok := predicate.Resolve([]mapping.ConditionalRule{
			{If: a, Then: 1},
			{If: b, Then: 2},
		}, nil, data)
		assert.True(t, ok)
		assert.Equal(t, 1, got)
	})

	t.Run("additional conditions must all hold", func(t *testing.T) {
		got, ok := predicate.Resolve([]mapping.ConditionalRule{
			{If: a, AdditionalConditions: []mapping.Predicate{b, never}, Then: "first"},
			{If: b, Then: "second"},
		}, "fallback", data)
		assert.True(t, ok)
		assert.Equal(t, "second", got)
	})

	t.Run("default when nothing matches", func(t *testing.T) {
		got, ok := predicate.Resolve([]mapping.ConditionalRule{{If: never, Then: "x"}}, "fallback", data)
		assert.True(t, ok)
		assert.Equal(t, "fallback", got)
	})

	t.Run("undefined default", func(t *testing.T) {
		got, ok := predicate.Resolve([]mapping.ConditionalRule{{If: never, Then: "x"}}, nil, data)
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}
