// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"

	"github.com/tinkershack/veriwipe/pkg/drive/tools"
	"github.com/tinkershack/veriwipe/pkg/pattern"
)

// SEDRevert issues a TCG Opal PSID-revert against devicePath, the `sed`
// CLI subcommand's sole operation. A PSID revert bypasses the wipe
// lifecycle entirely: it is the vendor-reset path for a drive whose
// encryption credentials are otherwise unrecoverable, not a verified wipe,
// so it never reaches the checkpoint store or the certificate issuer.
func (o *Orchestrator) SEDRevert(ctx context.Context, devicePath, psid string) error {
	desc, _, err := o.prober.Probe(ctx, devicePath)
	if err != nil {
		return err
	}

	reverter := tools.PSIDReverter{Erase: o.erase}
	return pattern.PSIDRevert(ctx, reverter, desc, psid)
}
