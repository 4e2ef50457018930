// SPDX-License-Identifier: Apache-2.0

package diag_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/fieldmap/internal/diag"
	"github.com/gemaraproj/fieldmap/internal/logger"
)

func TestCollector(t *testing.T) {
	var buf bytes.Buffer
	var kinds []diag.Kind
	c := diag.NewCollector(
		logger.NewLogger(&logger.Config{Level: logger.WarnLevel, Output: &buf}),
		func(k diag.Kind) { kinds = append(kinds, k) },
	)

	c.ForOrder(0).Warn(diag.KindConfig, "pickupDate", "unknown function %q", "fn-9")
	c.ForOrder(2).Warn(diag.KindLookup, "", "address service unavailable")

	ws := c.Warnings()
	require.Len(t, ws, 2)
	assert.Equal(t, diag.Warning{Kind: diag.KindConfig, Order: 0, Path: "pickupDate", Message: `unknown function "fn-9"`}, ws[0])
	assert.Equal(t, 2, ws[1].Order)
	assert.Equal(t, []diag.Kind{diag.KindConfig, diag.KindLookup}, kinds)
	assert.Contains(t, buf.String(), "address service unavailable")
	assert.Equal(t, `[config] order 0 pickupDate: unknown function "fn-9"`, ws[0].String())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { diag.Discard.Warn(diag.KindValue, "x", "ignored %d", 1) })
}
