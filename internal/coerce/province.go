// SPDX-License-Identifier: Apache-2.0

package coerce

import (
	"strings"

	"github.com/gemaraproj/fieldmap/internal/fieldpath"
)

var canadianProvinces = setOf(
	"AB", "BC", "MB", "NB", "NL", "NS", "NT", "NU", "ON", "PE", "QC", "SK", "YT",
)

var usStates = setOf(
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	"DC", "PR",
)

func setOf(codes ...string) map[string]bool {
	m := make(map[string]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

// IsCanadianProvince reports whether code is a Canadian province or
// territory abbreviation.
func IsCanadianProvince(code string) bool {
	return canadianProvinces[strings.ToUpper(strings.TrimSpace(code))]
}

// IsUSState reports whether code is a US state, DC or PR abbreviation.
func IsUSState(code string) bool {
	return usStates[strings.ToUpper(strings.TrimSpace(code))]
}

// PostalForProvince formats a postal code using the province to choose
// between the Canadian and the US rules. Unknown provinces fall back to
// ZipPostal.
func PostalForProvince(raw any, province string) string {
	if fieldpath.IsNullish(raw) {
		return ""
	}
	s := cleanPostal(raw)
	switch {
	case IsCanadianProvince(province):
		if canadianPostal.MatchString(s) {
			return s[:3] + " " + s[3:]
		}
		return s
	case IsUSState(province):
		if usZip.MatchString(s) {
			return s[:5]
		}
		return s
	default:
		return ZipPostal(raw)
	}
}

var provincePostalKeys = []string{"postalCode", "startZone", "endZone"}

// ApplyProvincePostal walks node and reformats the postalCode, startZone
// and endZone values of every object that also carries a province.
func ApplyProvincePostal(node any) {
	switch n := node.(type) {
	case map[string]any:
		if province, ok := n["province"].(string); ok && province != "" {
			for _, key := range provincePostalKeys {
				if v, ok := n[key]; ok && !fieldpath.IsNullish(v) {
					n[key] = PostalForProvince(v, province)
				}
			}
		}
		for _, child := range n {
			ApplyProvincePostal(child)
		}
	case []any:
		for _, el := range n {
			ApplyProvincePostal(el)
		}
	}
}
