// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package rng

import (
	"testing"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "test")
	require.NoError(t, err)
	return l
}

func TestNewProducesDistinctOutput(t *testing.T) {
	d, err := New(testLogger(t), DefaultConfig())
	require.NoError(t, err)

	a := make([]byte, 64)
	b := make([]byte, 64)
	require.NoError(t, d.Fill(a))
	require.NoError(t, d.Fill(b))

	assert.NotEqual(t, a, b)
	assert.False(t, d.Failed())
}

func TestFillEmptyBufferIsNoop(t *testing.T) {
	d, err := New(testLogger(t), DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, d.Fill(nil))
}

func TestReseedResetsUsageAndHealthWindow(t *testing.T) {
	d, err := New(testLogger(t), DefaultConfig())
	require.NoError(t, err)

	buf := make([]byte, 1024)
	require.NoError(t, d.Fill(buf))

	require.NoError(t, d.Reseed())
	assert.Equal(t, uint64(0), d.usage)
}

func TestFillRefusesAfterFailure(t *testing.T) {
	d, err := New(testLogger(t), DefaultConfig())
	require.NoError(t, err)

	d.failed = true

	err = d.Fill(make([]byte, 16))
	assert.Error(t, err)
}

func TestCloseMarksFailed(t *testing.T) {
	d, err := New(testLogger(t), DefaultConfig())
	require.NoError(t, err)

	d.Close()
	assert.True(t, d.Failed())
	assert.Error(t, d.Fill(make([]byte, 16)))
}

func TestReseedAfterByteBudgetExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ByteBudget = 32
	d, err := New(testLogger(t), cfg)
	require.NoError(t, err)

	require.NoError(t, d.Fill(make([]byte, 64)))
	assert.Equal(t, uint64(0), d.usage)
}
