// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"errors"
	"os"

	"github.com/tinkershack/veriwipe/pkg/recovery"
	"golang.org/x/sys/unix"
)

// classifyIOError maps a write/flush error's underlying errno to a
// recovery.Class; protocol-specific sniffing is left to recovery's own
// lookup table.
func classifyIOError(err error) recovery.Class {
	if err == nil {
		return recovery.ClassTransient
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.EAGAIN, unix.EBUSY, unix.ETIMEDOUT, unix.EINTR:
			return recovery.ClassTransient
		case unix.EIO:
			return recovery.ClassBadSector
		case unix.ENXIO, unix.ENODEV, unix.ENOMEDIUM:
			return recovery.ClassFatal
		case unix.EPIPE, unix.ECONNRESET, unix.ESHUTDOWN:
			return recovery.ClassHardware
		}
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return recovery.ClassTransient
	}

	return recovery.ClassFatal
}
