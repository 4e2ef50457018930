// SPDX-License-Identifier: Apache-2.0

// Package normalize runs a mapping profile over extracted documents.
//
// Each order of the root collection goes through a fixed sequence: field
// mappings, function mappings, array splits, array entry assembly,
// remove-if-null and cleanup. Data-quality problems never abort a document;
// they are reported as warnings on the Result.
package normalize

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gemaraproj/fieldmap/internal/diag"
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/logger"
	"github.com/gemaraproj/fieldmap/internal/mapping"
	"github.com/gemaraproj/fieldmap/internal/metrics"
)

// AddressResolver looks up one component (postal code, city, ...) of a
// free-text address. Implementations talk to an external service.
type AddressResolver interface {
	Resolve(ctx context.Context, address, component string) (string, error)
}

// Input is one extracted document plus the side channel written by the
// extractor: workflow-only values keyed by field path and array entry values
// keyed by mapping.FieldKey / mapping.RowsKey.
type Input struct {
	Document     map[string]any `json:"document"`
	WorkflowData map[string]any `json:"workflowData,omitempty"`
}

// Result is a normalized document. WorkflowData holds, per order, the values
// of workflow-only mappings; they never appear in Document.
type Result struct {
	Document     map[string]any   `json:"document"`
	WorkflowData []map[string]any `json:"workflowData,omitempty"`
	Warnings     []diag.Warning   `json:"warnings,omitempty"`
}

// Engine applies one Profile. It holds no per-document state and is safe for
// concurrent use.
type Engine struct {
	profile  *mapping.Profile
	resolver AddressResolver
	now      func() time.Time
	log      logger.Logger
	metrics  *metrics.Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolver enables address_lookup functions.
func WithResolver(r AddressResolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithClock overrides the clock used for date functions and datetime defaults.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger warnings and summaries are written to.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics records normalization metrics in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = r }
}

// New creates an Engine for profile. A nil profile behaves like an empty one.
func New(profile *mapping.Profile, opts ...Option) *Engine {
	if profile == nil {
		profile = &mapping.Profile{}
	}
	e := &Engine{
		profile: profile,
		now:     time.Now,
		log:     logger.Discard(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Profile returns the profile the engine applies.
func (e *Engine) Profile() *mapping.Profile {
	return e.profile
}

// Normalize applies the profile to a copy of in.Document. The only error is
// the cancellation of ctx.
func (e *Engine) Normalize(ctx context.Context, in Input) (*Result, error) {
	start := e.now()
	log := e.log.With("profile", e.profile.Name)
	collector := diag.NewCollector(log, func(k diag.Kind) { e.metrics.ObserveWarning(string(k)) })

	doc := prepareDocument(in.Document, e.profile.Root(), collector.ForOrder(-1))
	orders := doc[e.profile.Root()].([]any)

	kept := orders[:0]
	side := make([]map[string]any, 0, len(orders))
	for i, raw := range orders {
		if err := ctx.Err(); err != nil {
			e.metrics.ObserveDocument("canceled", 0, e.now().Sub(start))
			return nil, fmt.Errorf("normalize: %w", err)
		}
		order, ok := raw.(map[string]any)
		if !ok {
			collector.ForOrder(i).Warn(diag.KindValue, e.profile.Root(), "dropped %T element from the root collection", raw)
			continue
		}
		run := &orderRun{
			engine:   e,
			order:    order,
			input:    in.WorkflowData,
			workflow: make(map[string]any),
			sink:     collector.ForOrder(i),
		}
		run.apply(ctx)
		kept = append(kept, order)
		side = append(side, run.workflow)
	}
	doc[e.profile.Root()] = kept

	took := e.now().Sub(start)
	e.metrics.ObserveDocument("ok", len(kept), took)
	log.Debug("document normalized", "orders", len(kept), "warnings", len(collector.Warnings()), "took", took)

	return &Result{
		Document:     doc,
		WorkflowData: side,
		Warnings:     collector.Warnings(),
	}, nil
}

// NormalizeBatch normalizes inputs with at most limit documents in flight.
// limit <= 0 means unbounded. Results are in input order.
func (e *Engine) NormalizeBatch(ctx context.Context, inputs []Input, limit int) ([]*Result, error) {
	results := make([]*Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		g.Go(func() error {
			res, err := e.Normalize(ctx, in)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// prepareDocument clones doc, keeps only the root collection and makes sure
// it is an array. A single object under the root is treated as one order.
func prepareDocument(doc map[string]any, root string, sink diag.Sink) map[string]any {
	out := map[string]any{}
	if doc != nil {
		out = fieldpath.Clone(doc).(map[string]any)
	}
	for k := range out {
		if k != root {
			delete(out, k)
		}
	}
	switch v := out[root].(type) {
	case []any:
	case map[string]any:
		out[root] = []any{v}
	case nil:
		out[root] = []any{}
	default:
		sink.Warn(diag.KindValue, root, "root collection is %T, not an array; replaced with an empty array", v)
		out[root] = []any{}
	}
	return out
}
