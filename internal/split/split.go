// SPDX-License-Identifier: Apache-2.0

// Package split ties the cardinality of an output array to a quantity field.
//
// The rule is first handed to the upstream extractor as an instruction; Apply
// then enforces the same cardinality on the extracted order so the result
// does not depend on the extractor honoring it.
package split

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gemaraproj/fieldmap/internal/coerce"
	"github.com/gemaraproj/fieldmap/internal/diag"
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

// MaxEntries caps the number of entries a split may produce.
const MaxEntries = 1000

// Outcome describes what Apply did.
type Outcome struct {
	Target  string
	Entries int
	Applied bool
}

// Instruction renders cfg as extraction guidance.
func Instruction(cfg mapping.ArraySplitConfig) string {
	field := leaf(cfg.SplitBasedOnField)
	var s string
	switch cfg.SplitStrategy {
	case mapping.SplitDivideEvenly:
		s = fmt.Sprintf("Distribute the total %q evenly across the entries of %q: with a total T and N entries, "+
			"each entry's %q is T/N, the remainder going to the first entries.", cfg.SplitBasedOnField, cfg.TargetArrayField, field)
	default:
		s = fmt.Sprintf("Create one entry in %q per unit of %q: when %q is N, output exactly N entries, "+
			"each with %q set to 1.", cfg.TargetArrayField, cfg.SplitBasedOnField, cfg.SplitBasedOnField, field)
	}
	if cfg.DefaultToOneIfMissing {
		s += fmt.Sprintf(" If %q is missing, empty or zero, output exactly one entry.", cfg.SplitBasedOnField)
	}
	return s
}

// Apply reshapes the target array of order according to cfg.
func Apply(order map[string]any, cfg mapping.ArraySplitConfig, sink diag.Sink) Outcome {
	out := Outcome{Target: cfg.TargetArrayField}
	if sink == nil {
		sink = diag.Discard
	}

	total, ok := quantity(order, cfg.SplitBasedOnField)
	missing := !ok || total.Sign() <= 0
	if missing && !cfg.DefaultToOneIfMissing {
		return out
	}

	existing := entries(order, cfg.TargetArrayField)
	field := leaf(cfg.SplitBasedOnField)

	// Without a total, entries the extractor already produced define the
	// cardinality.
	if missing && len(existing) > 0 {
		if cfg.SplitStrategy == mapping.SplitDivideEvenly {
			return out
		}
		total = decimal.NewFromInt(int64(len(existing)))
	} else if missing {
		total = decimal.NewFromInt(1)
	}

	var rows []any
	switch cfg.SplitStrategy {
	case mapping.SplitDivideEvenly:
		n := len(existing)
		if n == 0 {
			n = 1
		}
		rows = reshape(existing, n)
		for i, share := range distribute(total, n) {
			rows[i].(map[string]any)[field] = share
		}
	default:
		if !total.IsInteger() {
			sink.Warn(diag.KindValue, cfg.SplitBasedOnField, "split quantity %s is not a whole number; rounding down", total.String())
		}
		n := total.IntPart()
		if n < 1 {
			n = 1
		}
		if n > MaxEntries {
			sink.Warn(diag.KindValue, cfg.SplitBasedOnField, "split quantity %d exceeds %d entries; capped", n, MaxEntries)
			n = MaxEntries
		}
		rows = reshape(existing, int(n))
		for _, r := range rows {
			r.(map[string]any)[field] = int64(1)
		}
	}

	fieldpath.Set(order, cfg.TargetArrayField, rows)
	out.Entries = len(rows)
	out.Applied = true
	return out
}

func quantity(order map[string]any, path string) (decimal.Decimal, bool) {
	raw, ok := fieldpath.Get(order, path)
	if !ok || fieldpath.IsNullish(raw) {
		return decimal.Decimal{}, false
	}
	v, ok := coerce.Number(raw, false)
	if !ok {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(v.(float64)), true
}

func entries(order map[string]any, path string) []map[string]any {
	if fieldpath.ThroughArray(order, path) {
		return nil
	}
	raw, _ := fieldpath.Get(order, path)
	list, _ := raw.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// reshape returns exactly n entries, keeping existing ones in order and
// cloning the last one as a template for any extras.
func reshape(existing []map[string]any, n int) []any {
	rows := make([]any, n)
	for i := range rows {
		switch {
		case i < len(existing):
			rows[i] = existing[i]
		case len(existing) > 0:
			rows[i] = fieldpath.Clone(existing[len(existing)-1])
		default:
			rows[i] = map[string]any{}
		}
	}
	return rows
}

// distribute splits total into n shares. Whole totals give whole shares with
// the remainder spread over the first entries; fractional totals are split
// to two decimals with the rounding difference on the first entry.
func distribute(total decimal.Decimal, n int) []any {
	shares := make([]any, n)
	count := decimal.NewFromInt(int64(n))
	if total.IsInteger() {
		whole := total.IntPart()
		base, rem := whole/int64(n), whole%int64(n)
		for i := range shares {
			s := base
			if int64(i) < rem {
				s++
			}
			shares[i] = s
		}
		return shares
	}
	each := total.DivRound(count, 2)
	first := total.Sub(each.Mul(count.Sub(decimal.NewFromInt(1))))
	for i := range shares {
		if i == 0 {
			shares[i] = first.InexactFloat64()
			continue
		}
		shares[i] = each.InexactFloat64()
	}
	return shares
}

func leaf(path string) string {
	segs := fieldpath.Split(path)
	if len(segs) == 0 {
		return path
	}
	return segs[len(segs)-1]
}
