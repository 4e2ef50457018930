// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"context"

	"github.com/gemaraproj/fieldmap/internal/assemble"
	"github.com/gemaraproj/fieldmap/internal/cleanup"
	"github.com/gemaraproj/fieldmap/internal/coerce"
	"github.com/gemaraproj/fieldmap/internal/datefn"
	"github.com/gemaraproj/fieldmap/internal/diag"
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/mapping"
	"github.com/gemaraproj/fieldmap/internal/predicate"
	"github.com/gemaraproj/fieldmap/internal/split"
)

// orderRun carries the state of one order through the pipeline.
type orderRun struct {
	engine *Engine
	order  map[string]any
	// input is the extractor's side channel, shared by every order.
	input map[string]any
	// workflow collects this order's workflow-only values.
	workflow map[string]any
	sink     diag.Sink
	coercer  *coerce.Coercer
}

func (r *orderRun) apply(ctx context.Context) {
	p := r.engine.profile
	r.coercer = coerce.New(coerce.WithClock(r.engine.now), coerce.WithSink(r.sink))

	arrays := make(map[string]bool)
	for _, t := range p.ArrayTargets() {
		arrays[t] = true
	}
	for _, m := range p.FieldMappings {
		if m.Type == mapping.ProvenanceFunction || arrays[m.FieldName] {
			continue
		}
		r.applyField(m)
	}
	coerce.ApplyProvincePostal(r.order)

	for _, m := range p.FieldMappings {
		if m.Type == mapping.ProvenanceFunction {
			r.applyFunction(ctx, m)
		}
	}

	for _, cfg := range p.ArraySplits {
		if split.Apply(r.order, cfg, r.sink).Applied {
			r.engine.metrics.ObserveSplit()
		}
	}

	for _, out := range assemble.New(r.coercer, r.sink).Apply(r.order, p.ArrayEntries, r.input) {
		r.engine.metrics.ObserveEntryRows(out.Rows)
	}

	cleanup.RemoveNulls(r.order, p.FieldMappings)
	cleanup.Prune(r.order)
}

func (r *orderRun) options(m mapping.FieldMapping) coerce.Options {
	opts := coerce.Options{MaxLength: m.MaxLength, DateOnly: m.DateOnly}
	if m.Type == mapping.ProvenanceHardcoded && !fieldpath.IsNullish(m.Value) {
		opts.Fallback = m.Value
	}
	return opts
}

// applyField coerces one non-function mapping and writes it to the order, or
// to the workflow side channel when the mapping is workflow-only.
func (r *orderRun) applyField(m mapping.FieldMapping) {
	if _, isList := m.Value.([]any); isList {
		r.sink.Warn(diag.KindConfig, m.FieldName, "array-valued mapping skipped; use an array entry instead")
		return
	}
	opts := r.options(m)
	coerceOne := func(raw any) any { return r.coercer.Coerce(m.FieldName, raw, m.DataType, opts) }

	if m.IsWorkflowOnly {
		raw, ok := r.read(m)
		if !ok {
			raw = r.input[m.FieldName]
		}
		r.workflow[m.FieldName] = coerceAll(raw, coerceOne)
		fieldpath.Delete(r.order, m.FieldName)
		return
	}

	switch m.Type {
	case mapping.ProvenanceHardcoded:
		fieldpath.Set(r.order, m.FieldName, coerceOne(m.Value))
	case mapping.ProvenanceMapped:
		if src := m.SourcePath(); src != m.FieldName {
			raw, _ := fieldpath.Get(r.order, src)
			if fieldpath.ThroughArray(r.order, src) {
				fieldpath.Set(r.order, m.FieldName, coerceAll(raw, coerceOne))
				return
			}
			fieldpath.Set(r.order, m.FieldName, coerceOne(raw))
			return
		}
		fallthrough
	default:
		fieldpath.Update(r.order, m.FieldName, func(old any, _ bool) (any, bool) {
			return coerceOne(old), true
		})
	}
}

// read returns the raw value of a mapping as found in the order.
func (r *orderRun) read(m mapping.FieldMapping) (any, bool) {
	if m.Type == mapping.ProvenanceHardcoded {
		return m.Value, true
	}
	return fieldpath.Get(r.order, m.SourcePath())
}

// coerceAll applies fn to every element of a fanned-out value.
func coerceAll(raw any, fn func(any) any) any {
	list, ok := raw.([]any)
	if !ok {
		return fn(raw)
	}
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = fn(v)
	}
	return out
}

// applyFunction evaluates the function a mapping references and writes the
// result when it is defined and non-empty.
func (r *orderRun) applyFunction(ctx context.Context, m mapping.FieldMapping) {
	fn, ok := r.engine.profile.Function(m.FunctionID)
	if !ok {
		r.sink.Warn(diag.KindConfig, m.FieldName, "unknown function %q", m.FunctionID)
		return
	}

	var (
		value   any
		defined bool
	)
	switch logic := fn.Logic.(type) {
	case mapping.DateLogic:
		value = datefn.Evaluate(logic, r.order, r.engine.now())
		defined = true
	case mapping.ConditionalLogic:
		value, defined = predicate.Resolve(logic.Conditions, logic.Default, r.order)
	case mapping.AddressLookupLogic:
		value, defined = r.lookup(ctx, m.FieldName, logic), true
	default:
		r.sink.Warn(diag.KindConfig, m.FieldName, "function %q has no usable logic", fn.ID)
		return
	}
	if !defined || fieldpath.IsEmpty(value) {
		return
	}

	if m.IsWorkflowOnly {
		r.workflow[m.FieldName] = value
		fieldpath.Delete(r.order, m.FieldName)
		return
	}
	fieldpath.Set(r.order, m.FieldName, value)
}

// lookup calls the address resolver. Every failure degrades to "".
func (r *orderRun) lookup(ctx context.Context, path string, logic mapping.AddressLookupLogic) string {
	if r.engine.resolver == nil {
		r.sink.Warn(diag.KindLookup, path, "address lookup skipped: no resolver configured")
		return ""
	}
	raw, _ := fieldpath.Get(r.order, logic.SourceField)
	address := coerce.Text(raw)
	if fieldpath.IsNullish(address) {
		return ""
	}
	out, err := r.engine.resolver.Resolve(ctx, address, logic.Component)
	if err != nil {
		r.sink.Warn(diag.KindLookup, path, "address lookup failed: %v", err)
		return ""
	}
	return out
}
