// SPDX-License-Identifier: Apache-2.0

package split_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/fieldmap/internal/diag"
	"github.com/gemaraproj/fieldmap/internal/mapping"
	"github.com/gemaraproj/fieldmap/internal/split"
)

var barcodes = mapping.ArraySplitConfig{
	TargetArrayField:  "barcodes",
	SplitBasedOnField: "pieces",
	SplitStrategy:     mapping.SplitOnePerEntry,
}

func rows(t *testing.T, order map[string]any, key string) []any {
	t.Helper()
	list, ok := order[key].([]any)
	require.True(t, ok, "%s should be an array, got %T", key, order[key])
	return list
}

func TestApply_OnePerEntry(t *testing.T) {
	order := map[string]any{"pieces": float64(3)}
	out := split.Apply(order, barcodes, nil)

	assert.True(t, out.Applied)
	assert.Equal(t, 3, out.Entries)
	list := rows(t, order, "barcodes")
	require.Len(t, list, 3)
	for _, r := range list {
		assert.Equal(t, int64(1), r.(map[string]any)["pieces"])
	}
	assert.Equal(t, float64(3), order["pieces"], "source quantity is kept")
}

func TestApply_OnePerEntryKeepsExtractedEntries(t *testing.T) {
	order := map[string]any{
		"pieces": "2",
		"barcodes": []any{
			map[string]any{"code": "A1", "pieces": float64(2)},
		},
	}
	split.Apply(order, barcodes, nil)

	list := rows(t, order, "barcodes")
	require.Len(t, list, 2)
	assert.Equal(t, map[string]any{"code": "A1", "pieces": int64(1)}, list[0])
	assert.Equal(t, map[string]any{"code": "A1", "pieces": int64(1)}, list[1])

	list[1].(map[string]any)["code"] = "B2"
	assert.Equal(t, "A1", list[0].(map[string]any)["code"], "cloned entries are independent")
}

func TestApply_OnePerEntryTrimsSurplus(t *testing.T) {
	order := map[string]any{
		"pieces":   float64(1),
		"barcodes": []any{map[string]any{"code": "A"}, map[string]any{"code": "B"}},
	}
	split.Apply(order, barcodes, nil)
	assert.Len(t, rows(t, order, "barcodes"), 1)
}

func TestApply_MissingQuantity(t *testing.T) {
	t.Run("default to one", func(t *testing.T) {
		cfg := barcodes
		cfg.DefaultToOneIfMissing = true
		for _, v := range []any{nil, "", float64(0)} {
			order := map[string]any{"pieces": v}
			out := split.Apply(order, cfg, nil)
			assert.Equal(t, 1, out.Entries)
			assert.Len(t, rows(t, order, "barcodes"), 1)
		}
	})

	t.Run("extracted entries are kept", func(t *testing.T) {
		cfg := barcodes
		cfg.DefaultToOneIfMissing = true
		order := map[string]any{"barcodes": []any{
			map[string]any{"code": "A", "pieces": float64(1)},
			map[string]any{"code": "B", "pieces": float64(1)},
			map[string]any{"code": "C"},
		}}

		out := split.Apply(order, cfg, nil)

		assert.Equal(t, 3, out.Entries)
		assert.Equal(t, []any{
			map[string]any{"code": "A", "pieces": int64(1)},
			map[string]any{"code": "B", "pieces": int64(1)},
			map[string]any{"code": "C", "pieces": int64(1)},
		}, order["barcodes"])
	})

	t.Run("divided shares are kept", func(t *testing.T) {
		cfg := barcodes
		cfg.DefaultToOneIfMissing = true
		cfg.SplitStrategy = mapping.SplitDivideEvenly
		list := []any{map[string]any{"pieces": float64(4)}, map[string]any{"pieces": float64(2)}}
		order := map[string]any{"barcodes": list}

		out := split.Apply(order, cfg, nil)

		assert.False(t, out.Applied)
		assert.Equal(t, list, order["barcodes"])
	})

	t.Run("left untouched without default", func(t *testing.T) {
		order := map[string]any{}
		out := split.Apply(order, barcodes, nil)
		assert.False(t, out.Applied)
		assert.NotContains(t, order, "barcodes")
	})
}

func TestApply_DivideEvenly(t *testing.T) {
	cfg := mapping.ArraySplitConfig{
		TargetArrayField:  "lineItems",
		SplitBasedOnField: "pieces",
		SplitStrategy:     mapping.SplitDivideEvenly,
	}

	t.Run("whole total", func(t *testing.T) {
		order := map[string]any{
			"pieces":    float64(7),
			"lineItems": []any{map[string]any{}, map[string]any{}, map[string]any{}},
		}
		split.Apply(order, cfg, nil)

		var got []any
		for _, r := range rows(t, order, "lineItems") {
			got = append(got, r.(map[string]any)["pieces"])
		}
		assert.Equal(t, []any{int64(3), int64(2), int64(2)}, got)
	})

	t.Run("fractional total", func(t *testing.T) {
		order := map[string]any{
			"pieces":    "10.01",
			"lineItems": []any{map[string]any{}, map[string]any{}, map[string]any{}},
		}
		split.Apply(order, cfg, nil)

		list := rows(t, order, "lineItems")
		assert.Equal(t, 3.33, list[0].(map[string]any)["pieces"])
		assert.Equal(t, 3.34, list[1].(map[string]any)["pieces"])
		assert.Equal(t, 3.34, list[2].(map[string]any)["pieces"])
	})

	t.Run("no entries yields one", func(t *testing.T) {
		order := map[string]any{"pieces": float64(4)}
		split.Apply(order, cfg, nil)
		list := rows(t, order, "lineItems")
		require.Len(t, list, 1)
		assert.Equal(t, int64(4), list[0].(map[string]any)["pieces"])
	})
}

type countingSink struct{ n int }

func (c *countingSink) Warn(_ diag.Kind, _, _ string, _ ...any) { c.n++ }

func TestApply_CapsRunawayQuantity(t *testing.T) {
	sink := &countingSink{}
	order := map[string]any{"pieces": float64(split.MaxEntries + 5)}
	out := split.Apply(order, barcodes, sink)
	assert.Equal(t, split.MaxEntries, out.Entries)
	assert.Equal(t, 1, sink.n)
}

func TestInstruction(t *testing.T) {
	cfg := barcodes
	cfg.DefaultToOneIfMissing = true
	s := split.Instruction(cfg)
	assert.Contains(t, s, `"barcodes"`)
	assert.Contains(t, s, "set to 1")
	assert.Contains(t, s, "exactly one entry")

	cfg.SplitStrategy = mapping.SplitDivideEvenly
	assert.Contains(t, split.Instruction(cfg), "evenly")
}
