// SPDX-License-Identifier: Apache-2.0

// Package datefn computes dates offset by whole days from the current day or
// from a date held in the order.
package datefn

import (
	"strings"
	"time"

	"github.com/gemaraproj/fieldmap/internal/coerce"
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
}

var outputLayouts = map[string]string{
	mapping.FormatISODate:  "2006-01-02",
	mapping.FormatUSSlash:  "01/02/2006",
	mapping.FormatEUSlash:  "02/01/2006",
	mapping.FormatUSDash:   "01-02-2006",
	mapping.FormatDateTime: "2006-01-02T15:04:05",
}

// Evaluate resolves logic against order. A base date that cannot be read
// yields the empty string.
func Evaluate(logic mapping.DateLogic, order any, now time.Time) string {
	base := now
	if logic.Source == mapping.DateFromField {
		raw, ok := fieldpath.Get(order, logic.FieldName)
		if !ok {
			return ""
		}
		parsed, ok := Parse(coerce.Text(raw), now.Location())
		if !ok {
			return ""
		}
		base = parsed
	}

	days := logic.Days
	if logic.Operation == mapping.DateSubtract {
		days = -days
	}
	return Format(base.AddDate(0, 0, days), logic.OutputFormat)
}

// Parse reads a date in any of the supported layouts. Values without a zone
// are interpreted in loc.
func Parse(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// Format renders t in one of the supported output formats, defaulting to
// YYYY-MM-DD.
func Format(t time.Time, format string) string {
	layout, ok := outputLayouts[format]
	if !ok {
		layout = outputLayouts[mapping.FormatISODate]
	}
	return t.Format(layout)
}
