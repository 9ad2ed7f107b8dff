// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/internal/system/privilege"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// LinkController binds the freeze unfreeze ladder's lower-severity rungs
// to real kernel mechanisms: a block device's sysfs "delete"
// node followed by a udev re-trigger forces libata/the SCSI layer to tear
// down and re-establish the link, which is what clears a SECURITY FREEZE
// LOCK bit set at power-on on most controllers.
type LinkController struct {
	logger logger.Logger
	files  privilege.FileOperations
	udev   *UdevadmExecutor
}

// NewLinkController builds a LinkController.
func NewLinkController(l logger.Logger, files privilege.FileOperations, udev *UdevadmExecutor) *LinkController {
	return &LinkController{logger: l, files: files, udev: udev}
}

// sysfsDeletePath returns the sysfs node that tears down a block device's
// kernel-visible instance, e.g. /dev/sda -> /sys/block/sda/device/delete.
func sysfsDeletePath(devicePath string) string {
	base := filepath.Base(devicePath)
	return filepath.Join("/sys/block", base, "device", "delete")
}

// LinkLayerReset deletes the device's kernel instance and re-triggers udev,
// forcing the controller to renegotiate the link. Backs the "link_layer_reset"
// rung of the unfreeze ladder.
func (c *LinkController) LinkLayerReset(ctx context.Context, devicePath string) error {
	path := sysfsDeletePath(devicePath)
	c.logger.Warn("link-layer reset: deleting kernel device node and re-triggering udev", "device_path", devicePath, "sysfs_path", path)

	if err := c.files.WriteFile(ctx, path, []byte("1"), 0200); err != nil {
		return errors.Wrap(err, errors.UnfreezeStrategyFailed).WithMetadata("device_path", devicePath).WithMetadata("strategy", "link_layer_reset")
	}

	if _, err := c.udev.Trigger(ctx); err != nil {
		return errors.Wrap(err, errors.UnfreezeStrategyFailed).WithMetadata("device_path", devicePath).WithMetadata("strategy", "link_layer_reset")
	}
	if _, err := c.udev.Settle(ctx); err != nil {
		return errors.Wrap(err, errors.UnfreezeStrategyFailed).WithMetadata("device_path", devicePath).WithMetadata("strategy", "link_layer_reset")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}
	return nil
}

// PCIeHotReset writes to the PCIe function's "reset" sysfs node, resolving
// the function's bus address via udevadm's ID_PATH property. Backs the
// "pcie_hot_reset" rung, NVMe-only.
func (c *LinkController) PCIeHotReset(ctx context.Context, devicePath string) error {
	info, err := c.udev.InfoAll(ctx, devicePath)
	if err != nil {
		return errors.Wrap(err, errors.UnfreezeStrategyFailed).WithMetadata("device_path", devicePath).WithMetadata("strategy", "pcie_hot_reset")
	}
	addr := parsePCIAddress(string(info))
	if addr == "" {
		return errors.New(errors.UnfreezeStrategyFailed, "could not resolve PCI bus address for NVMe hot reset").
			WithMetadata("device_path", devicePath)
	}

	resetPath := filepath.Join("/sys/bus/pci/devices", addr, "reset")
	if err := c.files.WriteFile(ctx, resetPath, []byte("1"), 0200); err != nil {
		return errors.Wrap(err, errors.UnfreezeStrategyFailed).WithMetadata("device_path", devicePath).WithMetadata("strategy", "pcie_hot_reset")
	}
	return nil
}

// parsePCIAddress extracts a PCI bus address (DDDD:BB:DD.F) out of a udevadm
// "info --query=all" dump's ID_PATH / DEVPATH lines.
func parsePCIAddress(udevInfo string) string {
	for _, line := range strings.Split(udevInfo, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, "pci-0000:")
		if idx < 0 {
			continue
		}
		rest := line[idx+len("pci-"):]
		end := strings.IndexAny(rest, "-/ \t")
		if end < 0 {
			end = len(rest)
		}
		return rest[:end]
	}
	return ""
}
