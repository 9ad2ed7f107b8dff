// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package pattern

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinkershack/veriwipe/pkg/drive"
)

func TestBuildPlanZero(t *testing.T) {
	p, err := BuildPlan(AlgorithmZero, "", &drive.Descriptor{}, VerifyL1Quick, 90)
	require.NoError(t, err)
	require.Len(t, p.Passes, 1)
	assert.Equal(t, []byte{0x00}, p.Passes[0].Fixed)
}

func TestBuildPlanDoD3PassRequiresVerificationOnLastPass(t *testing.T) {
	p, err := BuildPlan(AlgorithmDoD3Pass, "", &drive.Descriptor{}, VerifyL2Systematic, 95)
	require.NoError(t, err)
	require.Len(t, p.Passes, 3)
	assert.Equal(t, []byte{0x00}, p.Passes[0].Fixed)
	assert.Equal(t, []byte{0xFF}, p.Passes[1].Fixed)
	assert.Nil(t, p.Passes[2].Fixed)
	assert.True(t, p.Passes[2].VerificationRequired)
}

func TestBuildPlanGutmannHas35Passes(t *testing.T) {
	p, err := BuildPlan(AlgorithmGutmann35Pass, "", &drive.Descriptor{}, VerifyL3Full, 98)
	require.NoError(t, err)
	require.Len(t, p.Passes, 35)
	for i := 0; i < 4; i++ {
		assert.Nil(t, p.Passes[i].Fixed, "pass %d should be random", i+1)
	}
	for i := 31; i < 35; i++ {
		assert.Nil(t, p.Passes[i].Fixed, "pass %d should be random", i+1)
	}
	assert.Equal(t, []byte{0x55}, p.Passes[4].Fixed)
}

func TestBuildPlanHardwareDelegatedRequiresCapability(t *testing.T) {
	d := &drive.Descriptor{Capabilities: map[drive.Capability]bool{}}
	_, err := BuildPlan(AlgorithmHardwareDelegated, HardwareNVMeSanitize, d, VerifyL2Systematic, 90)
	assert.Error(t, err)

	d.Capabilities[drive.CapNVMeSanitize] = true
	p, err := BuildPlan(AlgorithmHardwareDelegated, HardwareNVMeSanitize, d, VerifyL2Systematic, 90)
	require.NoError(t, err)
	assert.Equal(t, HardwareNVMeSanitize, p.HardwareMethod)
}

type fakeFiller struct{ fillErr error }

func (f *fakeFiller) Fill(b []byte) error {
	if f.fillErr != nil {
		return f.fillErr
	}
	for i := range b {
		b[i] = 0xAB
	}
	return nil
}

func TestGeneratorFillsFixedPatternRepeating(t *testing.T) {
	g := NewGenerator(&fakeFiller{})
	buf := make([]byte, 7)
	require.NoError(t, g.Fill(PassContent{Fixed: []byte{0x92, 0x49, 0x24}}, buf))
	assert.Equal(t, []byte{0x92, 0x49, 0x24, 0x92, 0x49, 0x24, 0x92}, buf)
}

func TestGeneratorFillsRandomFromFiller(t *testing.T) {
	g := NewGenerator(&fakeFiller{})
	buf := make([]byte, 4)
	require.NoError(t, g.Fill(PassContent{Fixed: nil}, buf))
	assert.Equal(t, []byte{0xAB, 0xAB, 0xAB, 0xAB}, buf)
}

type fakeReverter struct{ called bool }

func (f *fakeReverter) RevertWithPSID(ctx context.Context, d *drive.Descriptor, psid string) error {
	f.called = true
	return nil
}

func TestPSIDRevertRequiresCapabilityAndPSID(t *testing.T) {
	d := &drive.Descriptor{Capabilities: map[drive.Capability]bool{drive.CapSEDPSIDRevert: true}}
	rv := &fakeReverter{}

	assert.Error(t, PSIDRevert(context.Background(), rv, d, ""))
	require.NoError(t, PSIDRevert(context.Background(), rv, d, "ABCD1234"))
	assert.True(t, rv.called)
}

func TestPSIDRevertRejectsUnsupportedDrive(t *testing.T) {
	d := &drive.Descriptor{Capabilities: map[drive.Capability]bool{}}
	rv := &fakeReverter{}
	assert.Error(t, PSIDRevert(context.Background(), rv, d, "ABCD1234"))
	assert.False(t, rv.called)
}
