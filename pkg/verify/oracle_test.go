// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecoveredCountExtractsNumber(t *testing.T) {
	out := []byte("scanning device...\nfiles recovered: 0\ndone\n")
	n, err := parseRecoveredCount(out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestParseRecoveredCountNonZero(t *testing.T) {
	out := []byte("recovery_v7 summary: files recovered:   42  \n")
	n, err := parseRecoveredCount(out)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestParseRecoveredCountMissingMarkerErrors(t *testing.T) {
	_, err := parseRecoveredCount([]byte("no usable output"))
	require.Error(t, err)
}
