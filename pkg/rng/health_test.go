// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepetitionCountTripsOnRepeatedByte(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RepetitionWindow = 4
	h := newHealthTests(cfg)

	var err error
	for i := 0; i < 3; i++ {
		err = h.observe([]byte{0x42})
		require.NoError(t, err)
	}
	err = h.observe([]byte{0x42})
	assert.Error(t, err)
}

func TestRepetitionCountResetsOnDifferentByte(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RepetitionWindow = 3
	h := newHealthTests(cfg)

	require.NoError(t, h.observe([]byte{0x01}))
	require.NoError(t, h.observe([]byte{0x01}))
	require.NoError(t, h.observe([]byte{0x02}))
	assert.NoError(t, h.observe([]byte{0x02}))
}

func TestAdaptiveProportionTripsOnSkewedWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptiveWindowSize = 16
	cfg.AdaptiveMaxCount = 8
	cfg.RepetitionWindow = 1000 // disable repetition test for this case
	h := newHealthTests(cfg)

	// First 9 of 16 window slots share one value, before any eviction can
	// occur, pushing that value's count past AdaptiveMaxCount.
	var err error
	for i := 0; i < 16; i++ {
		b := byte(0x01)
		if i >= 9 {
			b = byte(i + 100) // distinct filler values
		}
		err = h.observe([]byte{b})
	}
	assert.Error(t, err)
}

func TestAdaptiveProportionAllowsUniformWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptiveWindowSize = 256
	cfg.AdaptiveMaxCount = 4
	cfg.RepetitionWindow = 2
	h := newHealthTests(cfg)

	for i := 0; i < 256; i++ {
		require.NoError(t, h.observe([]byte{byte(i)}))
	}
}
