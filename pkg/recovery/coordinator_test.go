// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package recovery

import (
	"context"
	"errors"
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

type fakeRecorder struct {
	lba    uint64
	length uint32
	class  string
}

func (f *fakeRecorder) AppendBadSector(lba uint64, length uint32, errorClass string) {
	f.lba, f.length, f.class = lba, length, errorClass
}

func TestAttemptSucceedsWithoutRetry(t *testing.T) {
	c := New(testLogger(t), DefaultConfig(), nil, "/dev/sda")
	calls := 0
	err := c.Attempt(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, func(err error) Class { return ClassTransient }, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestAttemptRetriesTransientUntilSuccess(t *testing.T) {
	c := New(testLogger(t), DefaultConfig(), nil, "/dev/sda")
	calls := 0
	err := c.Attempt(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	}, func(err error) Class { return ClassTransient }, nil, 0, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestAttemptBadSectorRecordsAndContinues(t *testing.T) {
	c := New(testLogger(t), DefaultConfig(), nil, "/dev/sda")
	rec := &fakeRecorder{}
	err := c.Attempt(context.Background(), func(ctx context.Context) error {
		return errors.New("uncorrectable read error")
	}, func(err error) Class { return ClassBadSector }, rec, 4096, 512)
	require.NoError(t, err)
	assert.Equal(t, uint64(4096), rec.lba)
	assert.Equal(t, uint32(512), rec.length)
}

func TestAttemptFatalAborts(t *testing.T) {
	c := New(testLogger(t), DefaultConfig(), nil, "/dev/sda")
	err := c.Attempt(context.Background(), func(ctx context.Context) error {
		return errors.New("medium removed")
	}, func(err error) Class { return ClassFatal }, nil, 0, 0)
	assert.Error(t, err)
}

func TestNextMethodWalksLadder(t *testing.T) {
	m, ok := NextMethod(MethodAsyncSubmissionRing)
	assert.True(t, ok)
	assert.Equal(t, MethodDirectAligned, m)

	_, ok = NextMethod(MethodMemoryMapped)
	assert.False(t, ok)
}

func TestFallbackOnPersistentHardwareErrorReachesDegraded(t *testing.T) {
	c := New(testLogger(t), DefaultConfig(), nil, "/dev/sda")
	c.SetMethod(MethodMemoryMapped)
	_, degraded := c.FallbackOnPersistentHardwareError()
	assert.True(t, degraded)
}
