// SPDX-License-Identifier: Apache-2.0

package datefn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gemaraproj/fieldmap/internal/datefn"
	"github.com/gemaraproj/fieldmap/internal/mapping"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, 2, 27, 16, 30, 0, 0, time.Local)
	order := map[string]any{
		"pickupDate": "2024-12-30T00:00:00",
		"usDate":     "03/01/2024",
		"junk":       "next tuesday",
	}

	tests := []struct {
		name  string
		logic mapping.DateLogic
		want  string
	}{
		{
			name:  "now plus days crosses leap day",
			logic: mapping.DateLogic{Source: mapping.DateFromNow, Operation: mapping.DateAdd, Days: 3},
			want:  "2024-03-01",
		},
		{
			name:  "field plus days crosses year",
			logic: mapping.DateLogic{Source: mapping.DateFromField, FieldName: "pickupDate", Operation: mapping.DateAdd, Days: 3, OutputFormat: mapping.FormatUSSlash},
			want:  "01/02/2025",
		},
		{
			name:  "subtract from US date",
			logic: mapping.DateLogic{Source: mapping.DateFromField, FieldName: "usDate", Operation: mapping.DateSubtract, Days: 1, OutputFormat: mapping.FormatEUSlash},
			want:  "29/02/2024",
		},
		{
			name:  "dash format",
			logic: mapping.DateLogic{Source: mapping.DateFromNow, OutputFormat: mapping.FormatUSDash},
			want:  "02-27-2024",
		},
		{
			name:  "full timestamp keeps time of day",
			logic: mapping.DateLogic{Source: mapping.DateFromNow, Days: 1, OutputFormat: mapping.FormatDateTime},
			want:  "2024-02-28T16:30:00",
		},
		{
			name:  "unknown format falls back to ISO date",
			logic: mapping.DateLogic{Source: mapping.DateFromNow, OutputFormat: "DD.MM.YY"},
			want:  "2024-02-27",
		},
		{
			name:  "unparseable field yields empty",
			logic: mapping.DateLogic{Source: mapping.DateFromField, FieldName: "junk", Days: 1},
			want:  "",
		},
		{
			name:  "missing field yields empty",
			logic: mapping.DateLogic{Source: mapping.DateFromField, FieldName: "deliveryDate", Days: 1},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, datefn.Evaluate(tt.logic, order, now))
		})
	}
}

func TestParse(t *testing.T) {
	for _, s := range []string{"2024-05-06", "2024-05-06T07:08", "2024-05-06T07:08:09Z", "05/06/2024", "2024/05/06"} {
		got, ok := datefn.Parse(s, time.UTC)
		if assert.True(t, ok, s) {
			assert.Equal(t, 2024, got.Year(), s)
		}
	}
	_, ok := datefn.Parse("", time.UTC)
	assert.False(t, ok)
}
