// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/require"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/pattern"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.NewTag(logger.Config{LogLevel: "debug"}, "test")
	require.NoError(t, err)
	return l
}

// fixedReader always returns the same content for every read, simulating a
// drive uniformly overwritten with a single pattern.
type fixedReader struct {
	content func(length uint32) []byte
}

func (r fixedReader) ReadAt(_ context.Context, _ uint64, length uint32) ([]byte, error) {
	return r.content(length), nil
}

func randomContent(length uint32) []byte {
	buf := make([]byte, length)
	_, _ = rand.Read(buf)
	return buf
}

func zeroContent(length uint32) []byte {
	return make([]byte, length)
}

type fakeHiddenReader struct{}

func (fakeHiddenReader) ReadHiddenArea(context.Context, *drive.Descriptor) ([]byte, error) {
	return nil, nil
}
func (fakeHiddenReader) ReadControllerCache(context.Context, *drive.Descriptor) ([]byte, error) {
	return nil, nil
}
func (fakeHiddenReader) ReadReallocatedSpareSectors(context.Context, *drive.Descriptor) ([]byte, error) {
	return nil, nil
}

type fakeOracle struct{ filesRecovered int }

func (o fakeOracle) Scan(context.Context, string) (int, error) { return o.filesRecovered, nil }

// smallSampleCfg keeps total sampled bytes low across the random-content
// tests below, so ScanSignatures's short (2-byte) magics don't turn up by
// chance and make an otherwise-deterministic test flaky.
var smallSampleCfg = Config{SamplePercent: 1.0, RegionLength: 32}

func TestRunL1QuickOnRandomFillPasses(t *testing.T) {
	v := New(testLogger(t), smallSampleCfg, fixedReader{content: randomContent}, nil, nil)
	plan, err := pattern.BuildPlan(pattern.AlgorithmRandom, "", &drive.Descriptor{}, pattern.VerifyL1Quick, 70)
	require.NoError(t, err)

	report, err := v.Run(context.Background(), &drive.Descriptor{DevicePath: "/dev/test"}, plan, 200, 512)
	require.NoError(t, err)
	require.True(t, report.Verdict)
	require.False(t, report.FatalPatternFound)
}

func TestRunDetectsResidualSignature(t *testing.T) {
	pdfPage := make([]byte, 4096)
	copy(pdfPage[0:], []byte("%PDF-1.7 leftover document content"))
	v := New(testLogger(t), DefaultConfig(), fixedReader{content: func(uint32) []byte { return pdfPage }}, nil, nil)

	plan, err := pattern.BuildPlan(pattern.AlgorithmRandom, "", &drive.Descriptor{}, pattern.VerifyL1Quick, 70)
	require.NoError(t, err)

	report, err := v.Run(context.Background(), &drive.Descriptor{DevicePath: "/dev/test"}, plan, 1000, 512)
	require.NoError(t, err)
	require.True(t, report.FatalPatternFound)
	require.False(t, report.Verdict)
}

func TestRunZeroAlgorithmChecksExactMatch(t *testing.T) {
	v := New(testLogger(t), DefaultConfig(), fixedReader{content: zeroContent}, nil, nil)
	plan, err := pattern.BuildPlan(pattern.AlgorithmZero, "", &drive.Descriptor{}, pattern.VerifyL2Systematic, 90)
	require.NoError(t, err)

	report, err := v.Run(context.Background(), &drive.Descriptor{DevicePath: "/dev/test"}, plan, 5000, 512)
	require.NoError(t, err)
	require.True(t, report.Verdict)
	for _, s := range report.Samples {
		require.True(t, s.ExactMatch)
	}
}

func TestRunL4RequiresHiddenReaderAndOracle(t *testing.T) {
	v := New(testLogger(t), smallSampleCfg, fixedReader{content: randomContent}, nil, nil)
	plan, err := pattern.BuildPlan(pattern.AlgorithmRandom, "", &drive.Descriptor{}, pattern.VerifyL4Forensic, 95)
	require.NoError(t, err)

	_, err = v.Run(context.Background(), &drive.Descriptor{DevicePath: "/dev/test"}, plan, 5, 512)
	require.Error(t, err)
}

func TestRunL4WithOracleFindingFilesFailsVerdict(t *testing.T) {
	v := New(testLogger(t), smallSampleCfg, fixedReader{content: randomContent}, fakeHiddenReader{}, fakeOracle{filesRecovered: 3})
	plan, err := pattern.BuildPlan(pattern.AlgorithmRandom, "", &drive.Descriptor{}, pattern.VerifyL4Forensic, 70)
	require.NoError(t, err)

	report, err := v.Run(context.Background(), &drive.Descriptor{DevicePath: "/dev/test"}, plan, 5, 512)
	require.NoError(t, err)
	require.False(t, report.Verdict)
	require.Equal(t, 3, report.RecoveryOracle.FilesRecovered)
}

func TestPreWipeCapabilityTestDetectsKnownData(t *testing.T) {
	expected := []byte("known-canary-content")
	v := New(testLogger(t), DefaultConfig(), fixedReader{content: func(uint32) []byte { return expected }}, nil, nil)

	err := v.PreWipeCapabilityTest(context.Background(), &drive.Descriptor{DevicePath: "/dev/test"}, 0, expected)
	require.NoError(t, err)
}

func TestPreWipeCapabilityTestFailsWhenDataNotDetected(t *testing.T) {
	v := New(testLogger(t), DefaultConfig(), fixedReader{content: zeroContent}, nil, nil)

	err := v.PreWipeCapabilityTest(context.Background(), &drive.Descriptor{DevicePath: "/dev/test"}, 0, []byte("expected-canary"))
	require.Error(t, err)
}
