// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntropyAllZeroIsZero(t *testing.T) {
	buf := make([]byte, 4096)
	assert.Equal(t, 0.0, Entropy(buf))
}

func TestEntropyRandomIsHigh(t *testing.T) {
	buf := make([]byte, 65536)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	assert.Greater(t, Entropy(buf), 7.8)
}

func TestMatchesFixedCycles(t *testing.T) {
	pattern := []byte{0xAA, 0x55}
	buf := []byte{0xAA, 0x55, 0xAA, 0x55}
	assert.True(t, MatchesFixed(buf, pattern))

	buf[2] = 0x00
	assert.False(t, MatchesFixed(buf, pattern))
}

func TestMatchesFixedEmptyPatternNeverMatches(t *testing.T) {
	assert.False(t, MatchesFixed([]byte{0x00}, nil))
}

func TestMonobitRandomNearHalf(t *testing.T) {
	buf := make([]byte, 65536)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	m := Monobit(buf)
	assert.InDelta(t, 0.5, m, 0.01)
}

func TestMonobitAllOnes(t *testing.T) {
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = 0xFF
	}
	assert.Equal(t, 1.0, Monobit(buf))
}

func TestPokerChiSquareRandomBelowThreshold(t *testing.T) {
	buf := make([]byte, 1<<16)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	assert.Less(t, PokerChiSquare(buf), pokerChiSquareThreshold*3)
}

func TestAutocorrelationConstantIsExtreme(t *testing.T) {
	buf := make([]byte, 256)
	assert.InDelta(t, 1.0, Autocorrelation(buf), 0.01)
}

func TestRunsEmptyInputIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Runs(nil))
}
