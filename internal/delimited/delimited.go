// SPDX-License-Identifier: Apache-2.0

// Package delimited writes normalized orders as delimited text, one row per
// order, with standard CSV quoting.
package delimited

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gemaraproj/fieldmap/internal/coerce"
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

// ErrInvalidDelimiter is returned for delimiters csv cannot quote safely.
var ErrInvalidDelimiter = errors.New("invalid delimiter")

// DefaultListSeparator joins the values of a column that fans out through an
// array.
const DefaultListSeparator = "|"

// Columns derives the column paths of a profile: non-workflow field
// mappings first, then array entry fields and split fields under their
// target arrays. Duplicates keep their first position.
func Columns(p *mapping.Profile) []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(path string) {
		if path != "" && !seen[path] {
			seen[path] = true
			cols = append(cols, path)
		}
	}
	arrays := make(map[string]bool)
	for _, t := range p.ArrayTargets() {
		arrays[t] = true
	}
	for _, m := range p.FieldMappings {
		if !m.IsWorkflowOnly && !arrays[m.FieldName] {
			add(m.FieldName)
		}
	}
	for _, e := range p.ArrayEntries {
		if !e.IsEnabled {
			continue
		}
		for _, f := range e.Fields {
			add(e.TargetArrayField + "." + f.FieldName)
		}
	}
	for _, s := range p.ArraySplits {
		segs := fieldpath.Split(s.SplitBasedOnField)
		if len(segs) > 0 {
			add(s.TargetArrayField + "." + segs[len(segs)-1])
		}
	}
	return cols
}

// Writer renders orders under a fixed set of column paths.
type Writer struct {
	csv     *csv.Writer
	columns []string
	listSep string
	header  bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithListSeparator overrides DefaultListSeparator.
func WithListSeparator(sep string) Option {
	return func(w *Writer) { w.listSep = sep }
}

// NewWriter creates a Writer emitting columns separated by delim.
func NewWriter(out io.Writer, columns []string, delim rune, opts ...Option) (*Writer, error) {
	if delim == 0 || delim == '"' || delim == '\r' || delim == '\n' || delim == 0xFFFD {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, delim)
	}
	cw := csv.NewWriter(out)
	cw.Comma = delim
	w := &Writer{csv: cw, columns: columns, listSep: DefaultListSeparator}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// WriteHeader writes the column row. It is written at most once.
func (w *Writer) WriteHeader() error {
	if w.header {
		return nil
	}
	w.header = true
	if err := w.csv.Write(w.columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// WriteOrder writes one order as a row, writing the header first if needed.
func (w *Writer) WriteOrder(order map[string]any) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	row := make([]string, len(w.columns))
	for i, col := range w.columns {
		v, ok := fieldpath.Get(order, col)
		if ok {
			row[i] = w.cell(v)
		}
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	return nil
}

// WriteDocument writes every order of the root collection and returns the
// number of rows written.
func (w *Writer) WriteDocument(doc map[string]any, root string) (int, error) {
	if err := w.WriteHeader(); err != nil {
		return 0, err
	}
	orders, _ := doc[root].([]any)
	n := 0
	for _, el := range orders {
		order, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if err := w.WriteOrder(order); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

func (w *Writer) cell(v any) string {
	list, ok := v.([]any)
	if !ok {
		return coerce.Text(v)
	}
	parts := make([]string, 0, len(list))
	for _, el := range list {
		if fieldpath.IsNullish(el) {
			continue
		}
		parts = append(parts, w.cell(el))
	}
	return strings.Join(parts, w.listSep)
}
