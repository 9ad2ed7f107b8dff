// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"

	"github.com/tinkershack/veriwipe/pkg/checkpoint"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// CheckpointList returns every drive fingerprint with a resident checkpoint
// record, for the `checkpoint status` CLI surface with no device argument.
func (o *Orchestrator) CheckpointList() []string {
	return o.checkpointStore.List()
}

// CheckpointStatus probes devicePath and returns its checkpoint record, if
// any. A device with no prior wipe attempt returns (nil, false, nil).
func (o *Orchestrator) CheckpointStatus(ctx context.Context, devicePath string) (*checkpoint.Record, bool, error) {
	desc, _, err := o.prober.Probe(ctx, devicePath)
	if err != nil {
		return nil, false, err
	}
	rec, ok := o.checkpointStore.Get(desc.Fingerprint())
	return rec, ok, nil
}

// CheckpointResume continues a prior wipe attempt for opts.DevicePath. Wipe
// already resumes automatically whenever a compatible checkpoint exists for
// the re-derived plan, so this is a named alias for that path rather than a
// distinct operation; it exists to give `checkpoint resume` its own verb at
// the CLI boundary.
func (o *Orchestrator) CheckpointResume(ctx context.Context, opts WipeOptions) (*WipeResult, error) {
	desc, _, err := o.prober.Probe(ctx, opts.DevicePath)
	if err != nil {
		return nil, err
	}
	if _, ok := o.checkpointStore.Get(desc.Fingerprint()); !ok {
		return nil, errors.New(errors.CheckpointNotFound, "no checkpoint to resume for this device").
			WithMetadata("device_path", opts.DevicePath)
	}
	return o.Wipe(ctx, opts)
}

// CheckpointClear discards the checkpoint record for devicePath, forcing
// the next Wipe call on that device to start a fresh pass sequence.
func (o *Orchestrator) CheckpointClear(ctx context.Context, devicePath string) error {
	desc, _, err := o.prober.Probe(ctx, devicePath)
	if err != nil {
		return err
	}
	return o.checkpointStore.Clear(desc.Fingerprint())
}
