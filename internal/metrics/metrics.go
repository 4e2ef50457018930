// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes normalization counters on a private Prometheus
// registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg        *prometheus.Registry
	Documents  *prometheus.CounterVec
	Orders     prometheus.Counter
	Warnings   *prometheus.CounterVec
	Splits     prometheus.Counter
	EntryRows  prometheus.Counter
	LatencySec prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	documents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldmap_documents_total",
		Help: "Documents normalized, by outcome.",
	}, []string{"outcome"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fieldmap_orders_total",
		Help: "Orders normalized.",
	})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldmap_warnings_total",
		Help: "Data-quality warnings, by kind.",
	}, []string{"kind"})
	splits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fieldmap_array_splits_total",
		Help: "Array split configurations applied to an order.",
	})
	entryRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fieldmap_array_entry_rows_total",
		Help: "Rows written by array entry assembly.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldmap_normalize_seconds",
		Help:    "Time spent normalizing one document.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(documents, orders, warnings, splits, entryRows, latency)
	return &Registry{
		reg:        r,
		Documents:  documents,
		Orders:     orders,
		Warnings:   warnings,
		Splits:     splits,
		EntryRows:  entryRows,
		LatencySec: latency,
	}
}

// ObserveDocument records one finished normalization. A nil Registry is a
// no-op so callers need not guard.
func (r *Registry) ObserveDocument(outcome string, orders int, took time.Duration) {
	if r == nil {
		return
	}
	r.Documents.WithLabelValues(outcome).Inc()
	r.Orders.Add(float64(orders))
	r.LatencySec.Observe(took.Seconds())
}

func (r *Registry) ObserveWarning(kind string) {
	if r == nil {
		return
	}
	r.Warnings.WithLabelValues(kind).Inc()
}

func (r *Registry) ObserveSplit() {
	if r == nil {
		return
	}
	r.Splits.Inc()
}

func (r *Registry) ObserveEntryRows(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.EntryRows.Add(float64(n))
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
