// SPDX-License-Identifier: Apache-2.0

// Package predicate evaluates mapping predicates against an order and
// resolves ordered conditional rules.
package predicate

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gemaraproj/fieldmap/internal/coerce"
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

// Evaluate reports whether p holds for the value at p.Field inside data.
// Operand mismatches and unknown operators evaluate to false.
func Evaluate(p mapping.Predicate, data any) bool {
	actual, found := fieldpath.Get(data, p.Field)
	if !found {
		actual = nil
	}

	switch p.Operator {
	case mapping.OpEquals:
		return strictEqual(actual, p.Value)
	case mapping.OpNotEquals:
		return !strictEqual(actual, p.Value)
	case mapping.OpIn:
		list, ok := p.Value.([]any)
		return ok && member(actual, list)
	case mapping.OpNotIn:
		list, ok := p.Value.([]any)
		return !ok || !member(actual, list)
	case mapping.OpGreater, mapping.OpLess:
		a, okA := toDecimal(actual)
		b, okB := toDecimal(p.Value)
		if !okA || !okB {
			return false
		}
		if p.Operator == mapping.OpGreater {
			return a.GreaterThan(b)
		}
		return a.LessThan(b)
	case mapping.OpContains, mapping.OpStartsWith, mapping.OpEndsWith:
		s, ok := actual.(string)
		if !ok {
			return false
		}
		want := coerce.Text(p.Value)
		switch p.Operator {
		case mapping.OpContains:
			return strings.Contains(s, want)
		case mapping.OpStartsWith:
			return strings.HasPrefix(s, want)
		default:
			return strings.HasSuffix(s, want)
		}
	case mapping.OpIsEmpty:
		return fieldpath.IsEmpty(actual)
	case mapping.OpIsNotEmpty:
		return !fieldpath.IsEmpty(actual)
	default:
		return false
	}
}

// All combines rules with logic: AND needs every rule, OR needs one. An
// empty rule set holds.
func All(logic mapping.ConditionLogic, rules []mapping.Predicate, data any) bool {
	if len(rules) == 0 {
		return true
	}
	if strings.EqualFold(string(logic), string(mapping.LogicOr)) {
		for _, r := range rules {
			if Evaluate(r, data) {
				return true
			}
		}
		return false
	}
	for _, r := range rules {
		if !Evaluate(r, data) {
			return false
		}
	}
	return true
}

// Resolve returns the Then value of the first rule whose condition and
// additional conditions all hold, in authored order. Without a match it
// returns def; the boolean reports whether the returned value is defined.
func Resolve(rules []mapping.ConditionalRule, def any, data any) (any, bool) {
	for _, r := range rules {
		if !Evaluate(r.If, data) {
			continue
		}
		if All(mapping.LogicAnd, r.AdditionalConditions, data) {
			return r.Then, r.Then != nil
		}
	}
	return def, def != nil
}

func member(v any, list []any) bool {
	for _, el := range list {
		if strictEqual(v, el) {
			return true
		}
	}
	return false
}

// strictEqual compares scalars by type and value. Numbers of different Go
// kinds compare by value; objects and arrays are never equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if da, ok := numeric(a); ok {
		db, ok := numeric(b)
		return ok && da.Equal(db)
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func numeric(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint64:
		d, err := decimal.NewFromString(coerce.Text(n))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

// toDecimal converts numbers and numeric strings. nil, booleans, blank and
// non-numeric strings fail.
func toDecimal(v any) (decimal.Decimal, bool) {
	if d, ok := numeric(v); ok {
		return d, true
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	return d, err == nil
}
