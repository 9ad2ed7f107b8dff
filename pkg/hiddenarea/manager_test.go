// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package hiddenarea

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

type fakeDetector struct {
	state drive.HiddenAreaState
	err   error
}

func (f *fakeDetector) Detect(ctx context.Context, d *drive.Descriptor) (drive.HiddenAreaState, error) {
	return f.state, f.err
}

type fakeNative struct {
	removedHPA, restoredHPA, removedDCO bool
	removeErr, restoreErr, dcoErr       error
}

func (f *fakeNative) RemoveHPA(ctx context.Context, d *drive.Descriptor, trueMaxLBA uint64) error {
	f.removedHPA = true
	return f.removeErr
}

func (f *fakeNative) RestoreHPA(ctx context.Context, d *drive.Descriptor, visibleMaxLBA uint64) error {
	f.restoredHPA = true
	return f.restoreErr
}

func (f *fakeNative) RemoveDCO(ctx context.Context, d *drive.Descriptor) error {
	f.removedDCO = true
	return f.dcoErr
}

func TestPrepareIgnorePolicySkipsDetection(t *testing.T) {
	det := &fakeDetector{}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda"}
	_, err := m.Prepare(context.Background(), d, PolicyIgnore)
	require.NoError(t, err)
	assert.False(t, nat.removedHPA)
}

func TestPrepareDetectPolicyReportsOnly(t *testing.T) {
	det := &fakeDetector{state: drive.HiddenAreaState{HPAPresent: drive.TriYes, TrueMaxLBA: 2000, VisibleMaxLBA: 1000}}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda"}
	state, err := m.Prepare(context.Background(), d, PolicyDetect)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), state.TrueMaxLBA)
	assert.False(t, nat.removedHPA)
}

func TestPrepareRemoveTempRemovesAndArmsBarrier(t *testing.T) {
	det := &fakeDetector{state: drive.HiddenAreaState{HPAPresent: drive.TriYes, TrueMaxLBA: 2000, VisibleMaxLBA: 1000}}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda", Serial: "S1", Model: "M1"}
	preWipe, err := m.Prepare(context.Background(), d, PolicyRemoveTemp)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), preWipe.VisibleMaxLBA) // pre-wipe state captured before removal
	assert.True(t, nat.removedHPA)
	assert.Equal(t, uint64(2000), d.HiddenArea.VisibleMaxLBA)

	require.NoError(t, m.Cleanup(context.Background(), d))
	assert.True(t, nat.restoredHPA)
}

func TestCleanupIsNoopWithoutArmedBarrier(t *testing.T) {
	det := &fakeDetector{}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda"}
	require.NoError(t, m.Cleanup(context.Background(), d))
	assert.False(t, nat.restoredHPA)
}

func TestPrepareDCOPresentRefusedUnderDetectPolicy(t *testing.T) {
	det := &fakeDetector{state: drive.HiddenAreaState{DCOPresent: drive.TriYes, HPAPresent: drive.TriNo, TrueMaxLBA: 1000, VisibleMaxLBA: 1000}}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda"}
	_, err := m.Prepare(context.Background(), d, PolicyDetect)
	require.Error(t, err)
	assert.False(t, nat.removedDCO)
}

func TestPrepareDCOPresentRefusedUnderRemoveTempPolicy(t *testing.T) {
	det := &fakeDetector{state: drive.HiddenAreaState{DCOPresent: drive.TriYes, HPAPresent: drive.TriNo, TrueMaxLBA: 1000, VisibleMaxLBA: 1000}}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda"}
	_, err := m.Prepare(context.Background(), d, PolicyRemoveTemp)
	require.Error(t, err)
	assert.False(t, nat.removedDCO)
}

func TestPrepareDCOPresentRemovedUnderRemovePermPolicy(t *testing.T) {
	det := &fakeDetector{state: drive.HiddenAreaState{DCOPresent: drive.TriYes, HPAPresent: drive.TriNo, TrueMaxLBA: 1000, VisibleMaxLBA: 1000}}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda"}
	_, err := m.Prepare(context.Background(), d, PolicyRemovePerm)
	require.NoError(t, err)
	assert.True(t, nat.removedDCO)
}

func TestReconcileResumeReRemovesWhenWipeIncomplete(t *testing.T) {
	det := &fakeDetector{state: drive.HiddenAreaState{HPAPresent: drive.TriYes, TrueMaxLBA: 2000, VisibleMaxLBA: 1000}}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda", Serial: "S1", Model: "M1"}
	require.NoError(t, m.ReconcileResume(context.Background(), d, true, false))
	assert.True(t, nat.removedHPA)
	assert.False(t, nat.restoredHPA)
}

func TestReconcileResumeRestoresWhenWipeComplete(t *testing.T) {
	det := &fakeDetector{state: drive.HiddenAreaState{HPAPresent: drive.TriNo, TrueMaxLBA: 2000, VisibleMaxLBA: 2000}}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda", Serial: "S1", Model: "M1"}
	require.NoError(t, m.ReconcileResume(context.Background(), d, true, true))
	assert.True(t, nat.restoredHPA)
}

func TestReconcileResumeNoopWhenBarrierNotActive(t *testing.T) {
	det := &fakeDetector{}
	nat := &fakeNative{}
	m := NewManager(testLogger(t), det, nat)

	d := &drive.Descriptor{DevicePath: "/dev/sda"}
	require.NoError(t, m.ReconcileResume(context.Background(), d, false, false))
	assert.False(t, nat.removedHPA)
	assert.False(t, nat.restoredHPA)
}
