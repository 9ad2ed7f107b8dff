// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.NewTag(logger.Config{LogLevel: "error"}, "tools_test")
	require.NoError(t, err)
	return l
}

func codeOf(err error) errors.ErrorCode {
	code, _ := errors.GetCode(err)
	return code
}

func TestSecureEraseATASucceedsAgainstTrueBinary(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/true", "/bin/true", "/bin/true", false)
	err := e.SecureEraseATA(context.Background(), "/dev/sdz", false)
	assert.NoError(t, err)
}

func TestSecureEraseATAEnhancedSucceedsAgainstTrueBinary(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/true", "/bin/true", "/bin/true", false)
	err := e.SecureEraseATA(context.Background(), "/dev/sdz", true)
	assert.NoError(t, err)
}

func TestSecureEraseATAWrapsFailureFromFalseBinary(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/false", "/bin/true", "/bin/true", false)
	err := e.SecureEraseATA(context.Background(), "/dev/sdz", false)
	require.Error(t, err)
	assert.Equal(t, errors.HardwarePassUnsupported, codeOf(err))
}

func TestNVMeFormatSucceedsAgainstTrueBinary(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/true", "/bin/true", "/bin/true", false)
	assert.NoError(t, e.NVMeFormat(context.Background(), "/dev/nvme0n1"))
}

func TestNVMeSanitizeWrapsFailure(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/true", "/bin/false", "/bin/true", false)
	err := e.NVMeSanitize(context.Background(), "/dev/nvme0n1")
	require.Error(t, err)
	assert.Equal(t, errors.HardwarePassUnsupported, codeOf(err))
}

func TestCryptoEraseSEDSucceedsAgainstTrueBinary(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/true", "/bin/true", "/bin/true", false)
	assert.NoError(t, e.CryptoEraseSED(context.Background(), "/dev/sdz"))
}

func TestTrimAllLBAsWrapsFailure(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/true", "/bin/true", "/bin/false", false)
	err := e.TrimAllLBAs(context.Background(), "/dev/sdz")
	require.Error(t, err)
	assert.Equal(t, errors.HardwarePassUnsupported, codeOf(err))
}

func TestPSIDReverterAdapterResolvesDevicePathFromDescriptor(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/true", "/bin/true", "/bin/true", false)
	adapter := PSIDReverter{Erase: e}
	d := &drive.Descriptor{DevicePath: "/dev/sdz"}
	assert.NoError(t, adapter.RevertWithPSID(context.Background(), d, "PSID123"))
}

func TestPSIDReverterAdapterWrapsFailure(t *testing.T) {
	e := NewEraseExecutor(testLogger(t), "/bin/false", "/bin/true", "/bin/true", false)
	adapter := PSIDReverter{Erase: e}
	d := &drive.Descriptor{DevicePath: "/dev/sdz"}
	err := adapter.RevertWithPSID(context.Background(), d, "PSID123")
	require.Error(t, err)
	assert.Equal(t, errors.HardwarePassUnsupported, codeOf(err))
}
