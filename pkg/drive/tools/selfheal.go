// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// UdevSelfHealer backs recovery.SelfHealer: on a Hardware-class failure it
// triggers a udev block-subsystem re-enumeration and waits for it to
// settle, giving a transiently wedged link a chance to recover before the
// coordinator retries the operation.
type UdevSelfHealer struct {
	logger logger.Logger
	udev   *UdevadmExecutor
}

// NewUdevSelfHealer builds a UdevSelfHealer.
func NewUdevSelfHealer(l logger.Logger, udev *UdevadmExecutor) *UdevSelfHealer {
	return &UdevSelfHealer{logger: l, udev: udev}
}

// SelfHeal re-triggers udev and waits for it to settle. devicePath is
// logged but udevadm trigger/settle necessarily operate subsystem-wide.
func (u *UdevSelfHealer) SelfHeal(ctx context.Context, devicePath string) error {
	u.logger.Info("self-heal: re-triggering udev block subsystem", "device_path", devicePath)
	if _, err := u.udev.Trigger(ctx); err != nil {
		return errors.Wrap(err, errors.DeviceUnavailable).WithMetadata("device_path", devicePath).WithMetadata("operation", "udev_trigger")
	}
	if _, err := u.udev.Settle(ctx); err != nil {
		return errors.Wrap(err, errors.DeviceUnavailable).WithMetadata("device_path", devicePath).WithMetadata("operation", "udev_settle")
	}
	return nil
}
