// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

type lsblkDiskEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type lsblkDiskOutput struct {
	BlockDevices []lsblkDiskEntry `json:"blockdevices"`
}

// List enumerates every disk-type block device lsblk reports and probes
// each in turn, returning whatever subset probed successfully; a single
// unreadable device does not abort the listing.
func (o *Orchestrator) List(ctx context.Context) ([]*drive.Descriptor, error) {
	raw, err := o.lsblk.ListDisks(ctx)
	if err != nil {
		return nil, err
	}

	var out lsblkDiskOutput
	if jerr := json.Unmarshal(raw, &out); jerr != nil {
		return nil, errors.Wrap(jerr, errors.ProbeFailed).WithMetadata("operation", "list_disks")
	}

	descriptors := make([]*drive.Descriptor, 0, len(out.BlockDevices))
	for _, entry := range out.BlockDevices {
		if entry.Type != "disk" {
			continue
		}
		desc, _, perr := o.prober.Probe(ctx, entry.Path)
		if perr != nil {
			o.logger.Warn("probe failed during list, skipping device", "device_path", entry.Path, "error", perr)
			continue
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}
