// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"time"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/internal/command"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// EraseExecutor wraps the external binaries that carry out a
// hardware-delegated pass: hdparm (ATA secure erase), nvme-cli (NVMe
// format/sanitize), and sg_sanitize (SCSI crypto-erase/sanitize), following
// the same executor-per-tool shape as SmartctlExecutor and LsblkExecutor.
type EraseExecutor struct {
	logger     logger.Logger
	executor   *command.CommandExecutor
	hdparmPath string
	nvmePath   string
	sgPath     string
}

// NewEraseExecutor builds an EraseExecutor. useSudo mirrors the rest of
// this package: hardware erase commands require raw device access.
func NewEraseExecutor(l logger.Logger, hdparmPath, nvmePath, sgPath string, useSudo bool) *EraseExecutor {
	executor := command.NewCommandExecutor(useSudo)
	executor.Timeout = 2 * time.Hour // a full SECURE ERASE UNIT can legitimately take this long

	return &EraseExecutor{
		logger:     l,
		executor:   executor,
		hdparmPath: hdparmPath,
		nvmePath:   nvmePath,
		sgPath:     sgPath,
	}
}

// SecureEraseATA issues ATA SECURITY ERASE UNIT via hdparm, setting and
// then using a throwaway security password as hdparm requires.
func (e *EraseExecutor) SecureEraseATA(ctx context.Context, device string, enhanced bool) error {
	const password = "veriwipe"
	if _, err := e.executor.ExecuteWithCombinedOutput(ctx, e.hdparmPath, "--user-master", "u", "--security-set-pass", password, device); err != nil {
		return errors.Wrap(err, errors.HardwarePassUnsupported).WithMetadata("device_path", device).WithMetadata("operation", "security_set_pass")
	}

	eraseFlag := "--security-erase"
	if enhanced {
		eraseFlag = "--security-erase-enhanced"
	}
	if _, err := e.executor.ExecuteWithCombinedOutput(ctx, e.hdparmPath, "--user-master", "u", eraseFlag, password, device); err != nil {
		return errors.Wrap(err, errors.HardwarePassUnsupported).WithMetadata("device_path", device).WithMetadata("operation", "security_erase")
	}
	return nil
}

// NVMeFormat issues an NVMe Format NVM command with the secure-erase
// setting (ses=1), a cryptographic-erase-on-format.
func (e *EraseExecutor) NVMeFormat(ctx context.Context, device string) error {
	if _, err := e.executor.ExecuteWithCombinedOutput(ctx, e.nvmePath, "format", device, "--ses=1"); err != nil {
		return errors.Wrap(err, errors.HardwarePassUnsupported).WithMetadata("device_path", device).WithMetadata("operation", "nvme_format")
	}
	return nil
}

// NVMeSanitize issues an NVMe Sanitize command with the block-erase action.
func (e *EraseExecutor) NVMeSanitize(ctx context.Context, device string) error {
	if _, err := e.executor.ExecuteWithCombinedOutput(ctx, e.nvmePath, "sanitize", device, "--sanact=2"); err != nil {
		return errors.Wrap(err, errors.HardwarePassUnsupported).WithMetadata("device_path", device).WithMetadata("operation", "nvme_sanitize")
	}
	return nil
}

// CryptoEraseSED issues a SCSI SANITIZE crypto-erase via sg_sanitize,
// resetting the drive's internal encryption keys.
func (e *EraseExecutor) CryptoEraseSED(ctx context.Context, device string) error {
	if _, err := e.executor.ExecuteWithCombinedOutput(ctx, e.sgPath, "--sanitize", "--crypto", device); err != nil {
		return errors.Wrap(err, errors.HardwarePassUnsupported).WithMetadata("device_path", device).WithMetadata("operation", "crypto_erase")
	}
	return nil
}

// TrimAllLBAs issues a whole-device TRIM/UNMAP via sg_sanitize's block-erase
// fallback for devices that advertise TRIM but not a dedicated sanitize
// command.
func (e *EraseExecutor) TrimAllLBAs(ctx context.Context, device string) error {
	if _, err := e.executor.ExecuteWithCombinedOutput(ctx, e.sgPath, "--sanitize", "--block", device); err != nil {
		return errors.Wrap(err, errors.HardwarePassUnsupported).WithMetadata("device_path", device).WithMetadata("operation", "trim_all")
	}
	return nil
}

// revertWithPSID issues the raw PSID-revert command against a device path.
func (e *EraseExecutor) revertWithPSID(ctx context.Context, device, psid string) error {
	if _, err := e.executor.ExecuteWithCombinedOutput(ctx, e.hdparmPath, "--security-erase", psid, device); err != nil {
		return errors.Wrap(err, errors.HardwarePassUnsupported).WithMetadata("device_path", device).WithMetadata("operation", "psid_revert")
	}
	return nil
}

// PSIDReverter adapts EraseExecutor to pattern.PSIDReverter, resolving the
// device path from the drive descriptor the rest of the codebase passes
// around.
type PSIDReverter struct {
	Erase *EraseExecutor
}

func (p PSIDReverter) RevertWithPSID(ctx context.Context, d *drive.Descriptor, psid string) error {
	return p.Erase.revertWithPSID(ctx, d.DevicePath, psid)
}
