// SPDX-License-Identifier: Apache-2.0

// Package source decodes raw extracted payloads into normalization inputs.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/gemaraproj/fieldmap/internal/normalize"
)

// ErrUnsupportedFormat is returned when no registered decoder accepts a source.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Source describes a raw payload produced by an extractor.
type Source struct {
	// Content is the raw payload.
	Content []byte
	// Format is an optional hint such as "json" or "yaml".
	Format string
	ID     string
}

// Decoder turns a payload into one or more document trees. Streams of
// several documents yield one tree per document.
type Decoder interface {
	CanHandle(src Source) bool
	Decode(ctx context.Context, src Source) ([]map[string]any, error)
	Name() string
}

// Decoded is the output of a successful Registry.Decode.
type Decoded struct {
	Inputs      []normalize.Input
	DecoderUsed string
}

// Registry selects the first decoder that can handle a source.
type Registry struct {
	decoders []Decoder
}

// NewRegistry creates a Registry trying decoders in the given order.
func NewRegistry(decoders ...Decoder) *Registry {
	return &Registry{decoders: decoders}
}

// Default returns a Registry with the JSON decoder ahead of the YAML one.
func Default() *Registry {
	return NewRegistry(NewJSONDecoder(), NewYAMLDecoder())
}

// Decode decodes src and splits every tree into document and workflow data.
func (r *Registry) Decode(ctx context.Context, src Source) (Decoded, error) {
	dec, err := r.selectDecoder(src)
	if err != nil {
		return Decoded{}, err
	}

	trees, err := dec.Decode(ctx, src)
	if err != nil {
		return Decoded{}, fmt.Errorf("decoder %q failed: %w", dec.Name(), err)
	}

	inputs := make([]normalize.Input, 0, len(trees))
	for _, tree := range trees {
		inputs = append(inputs, Unwrap(tree))
	}
	return Decoded{Inputs: inputs, DecoderUsed: dec.Name()}, nil
}

func (r *Registry) selectDecoder(src Source) (Decoder, error) {
	for _, d := range r.decoders {
		if d.CanHandle(src) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: no decoder for source %q (format hint: %q)", ErrUnsupportedFormat, src.ID, src.Format)
}

// Decoders returns the names of the registered decoders.
func (r *Registry) Decoders() []string {
	names := make([]string, len(r.decoders))
	for i, d := range r.decoders {
		names[i] = d.Name()
	}
	return names
}

// Unwrap splits a payload of the form {"document": {...}, "workflowData":
// {...}} into an Input. Any other tree is the document itself.
func Unwrap(tree map[string]any) normalize.Input {
	doc, ok := tree["document"].(map[string]any)
	if !ok {
		return normalize.Input{Document: tree}
	}
	in := normalize.Input{Document: doc}
	if wd, ok := tree["workflowData"].(map[string]any); ok {
		in.WorkflowData = wd
	}
	return in
}
