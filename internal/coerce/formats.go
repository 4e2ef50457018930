// SPDX-License-Identifier: Apache-2.0

package coerce

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/gemaraproj/fieldmap/internal/fieldpath"
)

var (
	datePrefix      = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:[T ].*)?$`)
	minutePrecision = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)
	canadianPostal  = regexp.MustCompile(`^[A-Z]\d[A-Z]\d[A-Z]\d$`)
	usZip           = regexp.MustCompile(`^\d{5,9}$`)
	numberNoise     = strings.NewReplacer(",", "", "$", "", " ", "", "\u00a0", "")
)

// String upper-cases text and, when maxLength > 0, truncates it to the
// longest prefix whose JSON-escaped form fits in maxLength characters.
// nil and the literal "null" become the empty string.
func String(raw any, maxLength int) string {
	s := Text(raw)
	if strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), "null") {
		return ""
	}
	s = strings.ToUpper(s)
	if maxLength > 0 {
		s = TruncateJSON(s, maxLength)
	}
	return s
}

// TruncateJSON returns the longest rune prefix of s whose JSON string
// literal, without the surrounding quotes, is at most limit characters.
func TruncateJSON(s string, limit int) string {
	if JSONLength(s) <= limit {
		return s
	}
	runes := []rune(s)
	n := sort.Search(len(runes)+1, func(i int) bool {
		return JSONLength(string(runes[:i])) > limit
	})
	if n == 0 {
		return ""
	}
	return string(runes[:n-1])
}

// JSONLength counts the characters of s once escaped as a JSON string,
// excluding the quotes. HTML characters are not escaped.
func JSONLength(s string) int {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return utf8.RuneCountInString(s)
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return utf8.RuneCount(out) - 2
}

// Phone formats North American numbers as XXX-XXX-XXXX. Anything that is
// not 10 digits, or 11 digits with a leading 1, becomes the empty string.
func Phone(raw any) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, Text(raw))
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return ""
	}
	return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
}

// Boolean maps true, yes and 1 (any case) to "True" and everything else to
// "False".
func Boolean(raw any) string {
	switch strings.ToLower(strings.TrimSpace(Text(raw))) {
	case "true", "yes", "1":
		return "True"
	default:
		return "False"
	}
}

// Number parses raw as a decimal after dropping thousands separators,
// currency signs and spaces. integer truncates toward zero.
func Number(raw any, integer bool) (any, bool) {
	var d decimal.Decimal
	switch v := raw.(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	default:
		parsed, err := decimal.NewFromString(numberNoise.Replace(strings.TrimSpace(Text(raw))))
		if err != nil {
			return nil, false
		}
		d = parsed
	}
	if integer {
		return d.Truncate(0).IntPart(), true
	}
	return d.InexactFloat64(), true
}

func cleanPostal(raw any) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, Text(raw)))
}

// ZipPostal formats Canadian postal codes as "A1A 1A1" and US ZIP codes as
// their first five digits. Other values are returned cleaned of whitespace
// and hyphens.
func ZipPostal(raw any) string {
	if fieldpath.IsNullish(raw) {
		return ""
	}
	s := cleanPostal(raw)
	switch {
	case canadianPostal.MatchString(s):
		return s[:3] + " " + s[3:]
	case usZip.MatchString(s):
		return s[:5]
	default:
		return s
	}
}
