// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package hiddenarea implements C4: detection and policy-driven handling of
// HPA (Host Protected Area) and DCO (Device Configuration Overlay) regions
// that hide addressable LBAs from the visible geometry.
package hiddenarea

import (
	"context"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// Policy governs how a detected hidden area is treated.
type Policy string

const (
	// PolicyIgnore never inspects HPA/DCO state at all.
	PolicyIgnore Policy = "IGNORE"
	// PolicyDetect reports hidden-area state but never modifies the drive.
	PolicyDetect Policy = "DETECT"
	// PolicyRemoveTemp restores the native max LBA for the duration of the
	// wipe and reinstates the HPA on every exit path.
	PolicyRemoveTemp Policy = "REMOVE_TEMP"
	// PolicyRemovePerm removes the HPA permanently; no reinstatement.
	PolicyRemovePerm Policy = "REMOVE_PERM"
)

// Detector probes the live HPA/DCO state of a device.
type Detector interface {
	Detect(ctx context.Context, d *drive.Descriptor) (drive.HiddenAreaState, error)
}

// Native performs the actual HPA/DCO set-max and overlay-removal commands.
// Implementations wrap the ATA SET_MAX_ADDRESS / DEVICE_CONFIGURATION
// commands or their NVMe/SCSI equivalents.
type Native interface {
	// RemoveHPA raises the visible max LBA to trueMaxLBA.
	RemoveHPA(ctx context.Context, d *drive.Descriptor, trueMaxLBA uint64) error
	// RestoreHPA lowers the visible max LBA back to visibleMaxLBA.
	RestoreHPA(ctx context.Context, d *drive.Descriptor, visibleMaxLBA uint64) error
	// RemoveDCO strips the DCO overlay. Permanent regardless of Policy.
	RemoveDCO(ctx context.Context, d *drive.Descriptor) error
}

// barrierState records what a RemoveTemp cleanup barrier must reconcile
// against, so a crash mid-wipe can be recovered from on resume.
type barrierState struct {
	Fingerprint      string `json:"fingerprint"`
	RemoveTempActive bool   `json:"remove_temp_active"`
	VisibleMaxLBA    uint64 `json:"visible_max_lba"`
	Reinstated       bool   `json:"reinstated"`
}

// Manager applies Policy to a probed Descriptor and owns the RemoveTemp
// cleanup barrier across every exit path: normal completion, user abort, or
// crash-resume reconciliation.
type Manager struct {
	logger   logger.Logger
	detector Detector
	native   Native

	barriers map[string]*barrierState // keyed by fingerprint, in-memory ledger
}

// NewManager builds a Manager.
func NewManager(l logger.Logger, detector Detector, native Native) *Manager {
	return &Manager{logger: l, detector: detector, native: native, barriers: make(map[string]*barrierState)}
}

// Prepare detects hidden-area state and, per policy, unhides it for the
// duration of the wipe. The returned state must be recorded on the
// certificate verbatim before any removal is attempted.
func (m *Manager) Prepare(ctx context.Context, d *drive.Descriptor, policy Policy) (drive.HiddenAreaState, error) {
	if policy == PolicyIgnore {
		return drive.HiddenAreaState{HPAPresent: drive.TriUnknown, DCOPresent: drive.TriUnknown}, nil
	}

	state, err := m.detector.Detect(ctx, d)
	if err != nil {
		return drive.HiddenAreaState{}, errors.Wrap(err, errors.HPADetectFailed).WithMetadata("device_path", d.DevicePath)
	}
	preWipe := state
	d.HiddenArea = state

	if policy == PolicyDetect {
		return preWipe, nil
	}

	if state.DCOPresent == drive.TriYes {
		if policy != PolicyRemovePerm {
			return preWipe, errors.New(errors.DCORemovalRefused, "DCO present but policy does not authorize removal").
				WithMetadata("device_path", d.DevicePath)
		}
		m.logger.Warn("removing DCO overlay: this is permanent regardless of policy", "device_path", d.DevicePath)
		if err := m.native.RemoveDCO(ctx, d); err != nil {
			return preWipe, errors.Wrap(err, errors.HiddenAreaRestoreFailed).WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "remove_dco")
		}
		state.DCOPresent = drive.TriNo
	}

	if state.HPAPresent != drive.TriYes || state.TrueMaxLBA <= state.VisibleMaxLBA {
		d.HiddenArea = state
		return preWipe, nil
	}

	fp := d.Fingerprint()
	if policy == PolicyRemoveTemp {
		m.barriers[fp] = &barrierState{Fingerprint: fp, RemoveTempActive: true, VisibleMaxLBA: state.VisibleMaxLBA}
	}

	if err := m.native.RemoveHPA(ctx, d, state.TrueMaxLBA); err != nil {
		return preWipe, errors.Wrap(err, errors.HiddenAreaRestoreFailed).WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "remove_hpa")
	}
	state.VisibleMaxLBA = state.TrueMaxLBA
	d.HiddenArea = state
	return preWipe, nil
}

// Cleanup executes the RemoveTemp barrier: reinstating the original max LBA.
// It is idempotent and safe to call on every exit path — normal completion,
// user abort, or a prior crash — since it only acts when a barrier is
// actually armed for this fingerprint.
func (m *Manager) Cleanup(ctx context.Context, d *drive.Descriptor) error {
	fp := d.Fingerprint()
	b, ok := m.barriers[fp]
	if !ok || !b.RemoveTempActive || b.Reinstated {
		return nil
	}

	if err := m.native.RestoreHPA(ctx, d, b.VisibleMaxLBA); err != nil {
		return errors.Wrap(err, errors.HiddenAreaRestoreFailed).WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "restore_hpa")
	}
	b.Reinstated = true
	d.HiddenArea.VisibleMaxLBA = b.VisibleMaxLBA
	return nil
}

// ReconcileResume is the first action on a crash-resume: given the
// checkpoint's record of whether RemoveTemp was active and how far the
// wipe had progressed, either re-remove the HPA (wipe incomplete, writes
// still need the unhidden range) or restore it (wipe already past the
// point where the hidden area matters). This must run before any further
// I/O is issued.
func (m *Manager) ReconcileResume(ctx context.Context, d *drive.Descriptor, wasRemoveTempActive bool, wipeComplete bool) error {
	if !wasRemoveTempActive {
		return nil
	}

	state, err := m.detector.Detect(ctx, d)
	if err != nil {
		return errors.Wrap(err, errors.HPADetectFailed).WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "resume_reconcile")
	}
	d.HiddenArea = state

	if wipeComplete {
		if state.VisibleMaxLBA >= state.TrueMaxLBA {
			return m.native.RestoreHPA(ctx, d, state.VisibleMaxLBA)
		}
		return nil
	}

	originalVisible := state.VisibleMaxLBA
	if state.VisibleMaxLBA < state.TrueMaxLBA {
		if err := m.native.RemoveHPA(ctx, d, state.TrueMaxLBA); err != nil {
			return errors.Wrap(err, errors.HiddenAreaRestoreFailed).WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "resume_re_remove")
		}
	}
	fp := d.Fingerprint()
	m.barriers[fp] = &barrierState{Fingerprint: fp, RemoveTempActive: true, VisibleMaxLBA: originalVisible}
	return nil
}
