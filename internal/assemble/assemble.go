// SPDX-License-Identifier: Apache-2.0

// Package assemble builds array sections of an order from array entry
// definitions.
//
// Entries are grouped by target array. Repeating entries produce one row per
// pre-extracted source row; static entries produce at most one row each, in
// entryOrder, and are used only when no repeating entry filled the target.
package assemble

import (
	"sort"

	"github.com/gemaraproj/fieldmap/internal/coerce"
	"github.com/gemaraproj/fieldmap/internal/diag"
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/mapping"
	"github.com/gemaraproj/fieldmap/internal/predicate"
)

// Outcome reports the rows written to one target array.
type Outcome struct {
	Target    string
	Rows      int
	Repeating bool
}

// Assembler writes constructed arrays into orders.
type Assembler struct {
	coercer *coerce.Coercer
	sink    diag.Sink
}

// New creates an Assembler. A nil sink discards warnings.
func New(c *coerce.Coercer, sink diag.Sink) *Assembler {
	if c == nil {
		c = coerce.New()
	}
	if sink == nil {
		sink = diag.Discard
	}
	return &Assembler{coercer: c, sink: sink}
}

type group struct {
	target    string
	repeating []mapping.ArrayEntryConfig
	static    []mapping.ArrayEntryConfig
}

// Apply assembles every enabled entry into order. workflow is the side
// channel holding standalone values and repeating rows under their
// extraction keys; it may be nil.
func (a *Assembler) Apply(order map[string]any, entries []mapping.ArrayEntryConfig, workflow map[string]any) []Outcome {
	var outcomes []Outcome
	for _, g := range groupEntries(entries) {
		if fieldpath.ThroughArray(order, g.target) {
			a.sink.Warn(diag.KindConfig, g.target, "array entry target crosses an array; skipped")
			continue
		}
		if len(g.repeating) > 0 {
			rows, hadSource := a.repeatingRows(order, g, workflow)
			if len(rows) > 0 {
				fieldpath.Set(order, g.target, rows)
				outcomes = append(outcomes, Outcome{Target: g.target, Rows: len(rows), Repeating: true})
				continue
			}
			if hadSource {
				fieldpath.Set(order, g.target, []any{})
			}
		}
		if len(g.static) > 0 {
			rows := a.staticRows(order, g, workflow)
			if len(rows) > 0 {
				fieldpath.Set(order, g.target, rows)
				outcomes = append(outcomes, Outcome{Target: g.target, Rows: len(rows)})
			}
		}
	}
	return outcomes
}

func groupEntries(entries []mapping.ArrayEntryConfig) []*group {
	var groups []*group
	byTarget := make(map[string]*group)
	for _, e := range entries {
		if !e.IsEnabled || e.TargetArrayField == "" {
			continue
		}
		g, ok := byTarget[e.TargetArrayField]
		if !ok {
			g = &group{target: e.TargetArrayField}
			byTarget[e.TargetArrayField] = g
			groups = append(groups, g)
		}
		if e.IsRepeating {
			g.repeating = append(g.repeating, e)
		} else {
			g.static = append(g.static, e)
		}
	}
	for _, g := range groups {
		byOrder := func(list []mapping.ArrayEntryConfig) func(i, j int) bool {
			return func(i, j int) bool { return list[i].EntryOrder < list[j].EntryOrder }
		}
		sort.SliceStable(g.repeating, byOrder(g.repeating))
		sort.SliceStable(g.static, byOrder(g.static))
	}
	return groups
}

func (a *Assembler) repeatingRows(order map[string]any, g *group, workflow map[string]any) ([]any, bool) {
	var rows []any
	hadSource := false
	for _, entry := range g.repeating {
		source, ok := sourceRows(order, entry, workflow)
		hadSource = hadSource || ok
		for _, src := range source {
			row, empty := a.buildRow(order, entry, func(f mapping.ArrayEntryField) any {
				v, _ := fieldpath.Get(src, f.FieldName)
				return v
			})
			if !empty {
				rows = append(rows, row)
			}
		}
	}
	return rows, hadSource
}

func (a *Assembler) staticRows(order map[string]any, g *group, workflow map[string]any) []any {
	var rows []any
	for _, entry := range g.static {
		if c := entry.Conditions; c != nil && c.Enabled && !predicate.All(c.Logic, c.Rules, order) {
			continue
		}
		row, empty := a.buildRow(order, entry, func(f mapping.ArrayEntryField) any {
			return workflow[mapping.FieldKey(entry, f)]
		})
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

// buildRow evaluates every field of entry. extracted supplies the value of
// extracted fields. The row is empty when every field, literals included,
// coerces to an empty value.
func (a *Assembler) buildRow(order map[string]any, entry mapping.ArrayEntryConfig, extracted func(mapping.ArrayEntryField) any) (map[string]any, bool) {
	row := make(map[string]any, len(entry.Fields))
	allEmpty := true
	for _, f := range entry.Fields {
		var raw any
		switch f.FieldType {
		case mapping.EntryFieldHardcoded:
			raw = f.HardcodedValue
		case mapping.EntryFieldMapped:
			raw, _ = fieldpath.Get(order, f.SourceField)
		case mapping.EntryFieldExtracted:
			raw = extracted(f)
		default:
			a.sink.Warn(diag.KindConfig, entry.TargetArrayField+"."+f.FieldName, "unknown array entry field type %q; skipped", f.FieldType)
			continue
		}

		path := entry.TargetArrayField + "." + f.FieldName
		v := a.coercer.Coerce(path, raw, f.DataType, coerce.Options{})
		fieldpath.Set(row, f.FieldName, v)

		allEmpty = allEmpty && (fieldpath.IsNullish(raw) || fieldpath.IsNullish(v))
	}
	return row, allEmpty
}

func sourceRows(order map[string]any, entry mapping.ArrayEntryConfig, workflow map[string]any) ([]map[string]any, bool) {
	raw, ok := workflow[mapping.RowsKey(entry)]
	if !ok {
		raw, ok = fieldpath.Get(order, entry.TargetArrayField)
	}
	list, isList := raw.([]any)
	if !ok || !isList {
		return nil, false
	}
	rows := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows, true
}
