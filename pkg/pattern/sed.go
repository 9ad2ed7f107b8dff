// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package pattern

import (
	"context"

	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// PSIDReverter issues the TCG Opal PSID-revert command, a destructive
// crypto-erase that resets the drive's encryption keys and locking ranges
// using the physically-printed PSID rather than any stored credential.
// This is the supplemental self-encrypting-drive path alongside the
// capability-gated CapCryptoErase method.
type PSIDReverter interface {
	RevertWithPSID(ctx context.Context, d *drive.Descriptor, psid string) error
}

// PSIDRevert runs the PSID-revert hardware-delegated erase. Unlike the
// other hardware methods, this one requires the operator to supply the
// PSID out of band (printed on the drive label) since it is, by design,
// not derivable from anything the drive itself reports.
func PSIDRevert(ctx context.Context, reverter PSIDReverter, d *drive.Descriptor, psid string) error {
	if !d.HasCapability(drive.CapSEDPSIDRevert) {
		return errors.New(errors.HardwarePassUnsupported, "device does not advertise SED PSID revert support").
			WithMetadata("device_path", d.DevicePath)
	}
	if psid == "" {
		return errors.New(errors.HardwarePassUnsupported, "PSID revert requires an operator-supplied PSID")
	}
	if err := reverter.RevertWithPSID(ctx, d, psid); err != nil {
		return errors.Wrap(err, errors.HardwarePassUnsupported).WithMetadata("device_path", d.DevicePath).WithMetadata("operation", "psid_revert")
	}
	return nil
}
