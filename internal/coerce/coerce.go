// SPDX-License-Identifier: Apache-2.0

// Package coerce converts raw extracted values into the normalized form of a
// declared data type. Coercion never fails: unusable input yields the type's
// empty value and, where that hides information, a warning.
package coerce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gemaraproj/fieldmap/internal/diag"
	"github.com/gemaraproj/fieldmap/internal/fieldpath"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

// Options are the per-mapping coercion settings.
type Options struct {
	// MaxLength bounds string output, measured in JSON-escaped characters.
	MaxLength int
	// DateOnly zeroes the time part of datetime values.
	DateOnly bool
	// Fallback replaces missing datetime values before the current time is used.
	Fallback any
}

// Coercer applies type rules. The zero value is not usable; call New.
type Coercer struct {
	now  func() time.Time
	sink diag.Sink
}

// Option configures a Coercer.
type Option func(*Coercer)

// WithClock overrides the clock used for datetime defaults.
func WithClock(now func() time.Time) Option {
	return func(c *Coercer) { c.now = now }
}

// WithSink routes coercion warnings to s.
func WithSink(s diag.Sink) Option {
	return func(c *Coercer) { c.sink = s }
}

// New creates a Coercer.
func New(opts ...Option) *Coercer {
	c := &Coercer{now: time.Now, sink: diag.Discard}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Coerce converts raw into dt. path is only used to label warnings.
func (c *Coercer) Coerce(path string, raw any, dt mapping.DataType, opts Options) any {
	switch dt {
	case mapping.DataTypePhone:
		out := Phone(raw)
		if out == "" && !fieldpath.IsNullish(raw) {
			c.sink.Warn(diag.KindValue, path, "dropped invalid phone number %q", Text(raw))
		}
		return out
	case mapping.DataTypeBoolean:
		return Boolean(raw)
	case mapping.DataTypeDatetime:
		return c.Datetime(raw, opts)
	case mapping.DataTypeNumber, mapping.DataTypeInteger:
		if fieldpath.IsNullish(raw) {
			return nil
		}
		v, ok := Number(raw, dt == mapping.DataTypeInteger)
		if !ok {
			c.sink.Warn(diag.KindValue, path, "value %q is not numeric", Text(raw))
			return nil
		}
		return v
	case mapping.DataTypeZipPostal:
		return ZipPostal(raw)
	default:
		return String(raw, opts.MaxLength)
	}
}

// Text renders a scalar the way it would read in a document.
func Text(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Datetime normalizes timestamps to YYYY-MM-DDTHH:mm:ss.
func (c *Coercer) Datetime(raw any, opts Options) string {
	s := strings.TrimSpace(Text(raw))
	if fieldpath.IsNullish(s) {
		if !fieldpath.IsNullish(opts.Fallback) {
			s = strings.TrimSpace(Text(opts.Fallback))
		} else if opts.DateOnly {
			return c.now().Format("2006-01-02") + "T00:00:00"
		} else {
			return c.now().Format("2006-01-02T15:04:05")
		}
	}
	return completeDatetime(s, opts.DateOnly)
}

func completeDatetime(s string, dateOnly bool) string {
	if dateOnly {
		if m := datePrefix.FindStringSubmatch(s); m != nil {
			return m[1] + "T00:00:00"
		}
		return s
	}
	if minutePrecision.MatchString(s) {
		return s + ":00"
	}
	return s
}
