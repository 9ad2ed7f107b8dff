// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package ioengine

import (
	"context"
	"os"

	"github.com/tinkershack/veriwipe/pkg/errors"
	"golang.org/x/sys/unix"
)

// DirectDevice is the direct-aligned-path Device: an O_DIRECT file
// descriptor opened against the raw block device node. Misaligned tails
// are the caller's responsibility to route through a buffered fallback.
type DirectDevice struct {
	path string
	f    *os.File
}

// OpenDirect opens devicePath with O_DIRECT | O_SYNC for aligned, unbuffered,
// durable-on-return writes.
func OpenDirect(devicePath string) (*DirectDevice, error) {
	fd, err := unix.Open(devicePath, unix.O_RDWR|unix.O_DIRECT|unix.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrap(err, errors.WriteFailed).WithMetadata("device_path", devicePath).WithMetadata("operation", "open")
	}
	return &DirectDevice{path: devicePath, f: os.NewFile(uintptr(fd), devicePath)}, nil
}

func (d *DirectDevice) WriteAt(ctx context.Context, p []byte, lba uint64) (int, error) {
	n, err := d.f.WriteAt(p, int64(lba)*512)
	if err != nil {
		return n, errors.Wrap(err, errors.WriteFailed).WithMetadata("device_path", d.path).WithMetadata("lba", itoa(lba))
	}
	return n, nil
}

// ReadAt reads length bytes back starting at lba, satisfying verify.Reader
// so the verifier can inspect exactly what WriteAt/Flush committed.
func (d *DirectDevice) ReadAt(ctx context.Context, lba uint64, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	n, err := d.f.ReadAt(buf, int64(lba)*512)
	if err != nil {
		return nil, errors.Wrap(err, errors.WriteFailed).WithMetadata("device_path", d.path).WithMetadata("lba", itoa(lba)).WithMetadata("operation", "read_at")
	}
	return buf[:n], nil
}

// Flush issues fsync as the ATA FLUSH CACHE / NVMe FLUSH durability barrier
// equivalent available through the standard file descriptor path.
func (d *DirectDevice) Flush(ctx context.Context) error {
	if err := d.f.Sync(); err != nil {
		return errors.Wrap(err, errors.FlushFailed).WithMetadata("device_path", d.path)
	}
	return nil
}

// Close releases the underlying file descriptor.
func (d *DirectDevice) Close() error {
	return d.f.Close()
}
