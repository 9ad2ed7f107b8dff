// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// lbaReader is the minimal read-back surface, satisfied by
// *ioengine.DirectDevice without this package importing ioengine.
type lbaReader interface {
	ReadAt(ctx context.Context, lba uint64, length uint32) ([]byte, error)
}

// HiddenAreaReader backs verify.HiddenAreaReader for L4 forensic
// verification: it reads LBAs only reachable once a hidden
// area has been unhidden, and treats the controller cache and reallocated
// spare sectors as SMART-log best-effort reads.
type HiddenAreaReader struct {
	logger   logger.Logger
	reader   lbaReader
	smartctl *SmartctlExecutor
}

// NewHiddenAreaReader builds a HiddenAreaReader. reader must be the same
// device handle the I/O Engine wrote through, so what gets read back is
// exactly what was committed.
func NewHiddenAreaReader(l logger.Logger, reader lbaReader, smartctl *SmartctlExecutor) *HiddenAreaReader {
	return &HiddenAreaReader{logger: l, reader: reader, smartctl: smartctl}
}

// ReadHiddenArea reads one logical block at the drive's visible max LBA,
// the start of the region a RemoveTemp/RemovePerm policy unhid for the
// duration of the wipe; the rest of that extent up to the true max LBA is
// not read. It reads nothing and returns nil when the true max LBA is not
// above the visible one. A failure here is fatal to L4 verification: if the
// area was reported hidden, failing to read it back means coverage cannot
// be honestly claimed.
func (r *HiddenAreaReader) ReadHiddenArea(ctx context.Context, d *drive.Descriptor) ([]byte, error) {
	if d.HiddenArea.TrueMaxLBA <= d.HiddenArea.VisibleMaxLBA {
		return nil, nil
	}
	lba := d.HiddenArea.VisibleMaxLBA
	length := d.LogicalBlockSize
	if length == 0 {
		length = 512
	}
	buf, err := r.reader.ReadAt(ctx, lba, length)
	if err != nil {
		return nil, errors.Wrap(err, errors.VerificationFailed).
			WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "read_hidden_area")
	}
	return buf, nil
}

// ReadControllerCache reads the drive's SMART attributes through smartctl as
// a proxy for the drive's write cache state; this is inherently
// best-effort since most controllers expose no standard way to read back
// unflushed cache contents.
func (r *HiddenAreaReader) ReadControllerCache(ctx context.Context, d *drive.Descriptor) ([]byte, error) {
	out, err := r.smartctl.GetAttributes(ctx, d.DevicePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.VerificationFailed).
			WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "read_controller_cache")
	}
	return out, nil
}

// ReadReallocatedSpareSectors reads the drive's SMART health status through
// smartctl. The L4 verifier only checks that this read succeeds and does not
// inspect the bytes returned; no spare-sector contents are read.
func (r *HiddenAreaReader) ReadReallocatedSpareSectors(ctx context.Context, d *drive.Descriptor) ([]byte, error) {
	out, err := r.smartctl.GetHealth(ctx, d.DevicePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.VerificationFailed).
			WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "read_reallocated_spares")
	}
	return out, nil
}
