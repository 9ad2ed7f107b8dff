// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package freeze

import (
	"context"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinkershack/veriwipe/pkg/drive"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "test")
	require.NoError(t, err)
	return l
}

func TestEnsureSkipsLadderWhenNotFrozen(t *testing.T) {
	identify := func(ctx context.Context, d *drive.Descriptor) (bool, error) { return false, nil }
	m := NewManager(testLogger(t), identify, nil)

	d := &drive.Descriptor{DevicePath: "/dev/sda", Protocol: drive.ProtocolATA}
	require.NoError(t, m.Ensure(context.Background(), d))
	assert.Equal(t, drive.FreezeUnfrozen, d.Freeze)
}

func TestEnsureClearsFreezeViaFirstWorkingStrategy(t *testing.T) {
	calls := 0
	identify := func(ctx context.Context, d *drive.Descriptor) (bool, error) {
		calls++
		return calls == 1, nil // frozen on first check, clear after any strategy runs
	}
	binders := map[string]ApplyFunc{"link_layer_reset": func(ctx context.Context, d *drive.Descriptor) error { return nil }}
	m := NewManager(testLogger(t), identify, binders)

	d := &drive.Descriptor{DevicePath: "/dev/sda", Protocol: drive.ProtocolATA}
	require.NoError(t, m.Ensure(context.Background(), d))
	assert.Equal(t, drive.FreezeUnfrozen, d.Freeze)
}

func TestEnsurePermanentlyFrozenWhenLadderExhausted(t *testing.T) {
	identify := func(ctx context.Context, d *drive.Descriptor) (bool, error) { return true, nil }
	binders := map[string]ApplyFunc{"link_layer_reset": func(ctx context.Context, d *drive.Descriptor) error { return nil }}
	m := NewManager(testLogger(t), identify, binders)

	d := &drive.Descriptor{DevicePath: "/dev/sda", Protocol: drive.ProtocolATA}
	err := m.Ensure(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, drive.FreezePermanentlyFrozen, d.Freeze)
}

func TestSelectLadderOrdersBySeverityThenProbability(t *testing.T) {
	ladder := selectLadder(drive.ProtocolNVMe)
	require.NotEmpty(t, ladder)
	for i := 1; i < len(ladder); i++ {
		prev, cur := ladder[i-1], ladder[i]
		if prev.Severity == cur.Severity {
			assert.GreaterOrEqual(t, prev.SuccessProbability, cur.SuccessProbability)
		} else {
			assert.Less(t, prev.Severity, cur.Severity)
		}
	}
}

func TestSelectLadderFiltersByProtocol(t *testing.T) {
	ladder := selectLadder(drive.ProtocolMMC)
	for _, s := range ladder {
		assert.True(t, s.ApplicableProtocols[drive.ProtocolMMC])
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, canTransition(drive.FreezeUnknown, drive.FreezeFrozen))
	assert.True(t, canTransition(drive.FreezeFrozen, drive.FreezePermanentlyFrozen))
	assert.False(t, canTransition(drive.FreezeUnfrozen, drive.FreezeFrozen))
	assert.False(t, canTransition(drive.FreezePermanentlyFrozen, drive.FreezeUnfrozen))
}
