// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/internal/command"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// HDParmHPA drives HPA/DCO detection and removal through hdparm's -N
// (native max address) and --dco-identify/--dco-restore surfaces. It
// satisfies hiddenarea.Detector and hiddenarea.Native structurally, without
// this package importing that one.
type HDParmHPA struct {
	logger   logger.Logger
	executor *command.CommandExecutor
	path     string
}

// NewHDParmHPA builds an HDParmHPA bound to the resolved hdparm path.
func NewHDParmHPA(l logger.Logger, path string, useSudo bool) *HDParmHPA {
	executor := command.NewCommandExecutor(useSudo)
	executor.Timeout = 30 * time.Second
	return &HDParmHPA{logger: l, executor: executor, path: path}
}

// Detect reads the visible/native max LBA via `hdparm -N` and the DCO
// overlay state via `hdparm --dco-identify`.
func (h *HDParmHPA) Detect(ctx context.Context, d *drive.Descriptor) (drive.HiddenAreaState, error) {
	out, err := h.executor.ExecuteWithCombinedOutput(ctx, h.path, "-N", d.DevicePath)
	if err != nil {
		return drive.HiddenAreaState{}, errors.Wrap(err, errors.HPADetectFailed).
			WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "hdparm_dash_n")
	}
	visible, native, hpaLine := parseHdparmN(out)

	state := drive.HiddenAreaState{
		VisibleMaxLBA: visible,
		TrueMaxLBA:    native,
		HPAPresent:    drive.TriNo,
		DCOPresent:    drive.TriUnknown,
	}
	if hpaLine && native > visible {
		state.HPAPresent = drive.TriYes
	}

	dcoOut, dcoErr := h.executor.ExecuteWithCombinedOutput(ctx, h.path, "--dco-identify", d.DevicePath)
	if dcoErr != nil {
		h.logger.Warn("dco-identify failed, DCO presence unknown", "device_path", d.DevicePath, "error", dcoErr)
		state.DCOPresent = drive.TriUnknown
	} else {
		state.DCOPresent = parseHdparmDCO(dcoOut)
	}
	return state, nil
}

// RemoveHPA raises the visible max LBA to trueMaxLBA via a persistent
// `-N p<sectors>` set-max, so the boundary survives a power cycle until
// RestoreHPA explicitly reinstates it.
func (h *HDParmHPA) RemoveHPA(ctx context.Context, d *drive.Descriptor, trueMaxLBA uint64) error {
	arg := "p" + strconv.FormatUint(trueMaxLBA, 10)
	if _, err := h.executor.ExecuteWithCombinedOutput(ctx, h.path, "--yes-i-know-what-i-am-doing", "-N", arg, d.DevicePath); err != nil {
		return errors.Wrap(err, errors.HiddenAreaRestoreFailed).
			WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "remove_hpa")
	}
	return nil
}

// RestoreHPA lowers the visible max LBA back to visibleMaxLBA, reinstating
// the HPA boundary a RemoveTemp policy is required to leave the drive in.
func (h *HDParmHPA) RestoreHPA(ctx context.Context, d *drive.Descriptor, visibleMaxLBA uint64) error {
	arg := "p" + strconv.FormatUint(visibleMaxLBA, 10)
	if _, err := h.executor.ExecuteWithCombinedOutput(ctx, h.path, "--yes-i-know-what-i-am-doing", "-N", arg, d.DevicePath); err != nil {
		return errors.Wrap(err, errors.HiddenAreaRestoreFailed).
			WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "restore_hpa")
	}
	return nil
}

// RemoveDCO strips the Device Configuration Overlay via `hdparm
// --dco-restore`, resetting the drive to its factory-reported feature set.
// This is permanent regardless of the caller's HPA policy.
func (h *HDParmHPA) RemoveDCO(ctx context.Context, d *drive.Descriptor) error {
	if _, err := h.executor.ExecuteWithCombinedOutput(ctx, h.path, "--yes-i-know-what-i-am-doing", "--dco-restore", d.DevicePath); err != nil {
		return errors.Wrap(err, errors.HiddenAreaRestoreFailed).
			WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "remove_dco")
	}
	return nil
}

// IsFrozen re-runs `hdparm -I` and parses the ATA security section's
// frozen/not-frozen line, backing freeze.IdentifyFunc.
func (h *HDParmHPA) IsFrozen(ctx context.Context, d *drive.Descriptor) (bool, error) {
	out, err := h.executor.ExecuteWithCombinedOutput(ctx, h.path, "-I", d.DevicePath)
	if err != nil {
		return false, errors.Wrap(err, errors.FreezeConfirmFailed).
			WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "hdparm_dash_i")
	}
	return parseHdparmFrozen(out), nil
}

// parseHdparmN parses a `hdparm -N` line of the shape:
//
//	max sectors   = 240121728/250069680, HPA is enabled
//
// returning (visible, native, sawLine).
func parseHdparmN(out []byte) (visible, native uint64, sawLine bool) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "max sectors") {
			continue
		}
		eq := strings.SplitN(line, "=", 2)
		if len(eq) != 2 {
			continue
		}
		fields := strings.SplitN(strings.TrimSpace(eq[1]), ",", 2)
		pair := strings.SplitN(strings.TrimSpace(fields[0]), "/", 2)
		if len(pair) != 2 {
			continue
		}
		v, err1 := strconv.ParseUint(strings.TrimSpace(pair[0]), 10, 64)
		n, err2 := strconv.ParseUint(strings.TrimSpace(pair[1]), 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		return v, n, true
	}
	return 0, 0, false
}

// parseHdparmDCO reports DCO presence from `hdparm --dco-identify` output:
// a device reporting a "Real max sectors" smaller than the feature set it
// otherwise advertises has an active overlay restricting it.
func parseHdparmDCO(out []byte) drive.TriState {
	lower := strings.ToLower(string(out))
	if !strings.Contains(lower, "dco") {
		return drive.TriUnknown
	}
	if strings.Contains(lower, "real max sectors") {
		return drive.TriYes
	}
	return drive.TriNo
}

// parseHdparmFrozen looks for the ATA security section's frozen state line
// inside `hdparm -I` output, tolerating the "not\tfrozen" / "frozen" forms
// across hdparm versions.
func parseHdparmFrozen(out []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	inSecurity := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "security:") {
			inSecurity = true
			continue
		}
		if !inSecurity {
			continue
		}
		if lower == "frozen" {
			return true
		}
		if strings.Contains(lower, "not") && strings.Contains(lower, "frozen") {
			return false
		}
		if line == "" {
			break
		}
	}
	return false
}
