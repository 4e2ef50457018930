// SPDX-License-Identifier: Apache-2.0

// Package diag carries the structured warnings the engine emits instead of
// failing on data-quality problems.
package diag

import (
	"fmt"

	"github.com/gemaraproj/fieldmap/internal/logger"
)

// Kind classifies a warning.
type Kind string

const (
	// KindConfig marks a malformed or unresolvable configuration record.
	KindConfig Kind = "config"
	// KindValue marks an input value that could not be interpreted.
	KindValue Kind = "value"
	// KindLookup marks a failed call to an external lookup service.
	KindLookup Kind = "lookup"
)

// Warning is a single data-quality observation.
type Warning struct {
	Kind    Kind   `json:"kind"`
	Order   int    `json:"order"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Path == "" {
		return fmt.Sprintf("[%s] order %d: %s", w.Kind, w.Order, w.Message)
	}
	return fmt.Sprintf("[%s] order %d %s: %s", w.Kind, w.Order, w.Path, w.Message)
}

// Sink receives warnings from engine components.
type Sink interface {
	Warn(kind Kind, path, format string, args ...any)
}

type nopSink struct{}

func (nopSink) Warn(Kind, string, string, ...any) {}

// Discard is a Sink that drops every warning.
var Discard Sink = nopSink{}

// Collector accumulates the warnings of one document. It is not safe for
// concurrent use.
type Collector struct {
	log      logger.Logger
	onWarn   func(Kind)
	warnings []Warning
}

// NewCollector returns a Collector that logs every warning to log and calls
// onWarn, when non-nil, with its kind.
func NewCollector(log logger.Logger, onWarn func(Kind)) *Collector {
	if log == nil {
		log = logger.Discard()
	}
	return &Collector{log: log, onWarn: onWarn}
}

// ForOrder returns a Sink that tags warnings with the given order index.
func (c *Collector) ForOrder(order int) Sink {
	return orderSink{c: c, order: order}
}

// Warnings returns the collected warnings in emission order.
func (c *Collector) Warnings() []Warning {
	return c.warnings
}

func (c *Collector) add(w Warning) {
	c.warnings = append(c.warnings, w)
	c.log.Warn(w.Message, "kind", string(w.Kind), "order", w.Order, "path", w.Path)
	if c.onWarn != nil {
		c.onWarn(w.Kind)
	}
}

type orderSink struct {
	c     *Collector
	order int
}

func (s orderSink) Warn(kind Kind, path, format string, args ...any) {
	s.c.add(Warning{
		Kind:    kind,
		Order:   s.order,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}
