// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"

	"github.com/tinkershack/veriwipe/pkg/drive/tools"
)

// HealthReport is the health CLI subcommand's payload: external tool
// availability, the process-wide DRBG's health-test status, and the
// checkpoint store's resident record count.
type HealthReport struct {
	Tools             map[string]*tools.ToolStatus
	DRBGHealthy       bool
	CheckpointRecords int
	Degraded          bool
}

// Health reports whether the system can safely perform a wipe right now.
// It never returns an error itself; a degraded report is a valid result,
// not a failure of the health check.
func (o *Orchestrator) Health(ctx context.Context) *HealthReport {
	statuses := o.toolChecker.CheckAll()

	report := &HealthReport{
		Tools:             statuses,
		DRBGHealthy:       !o.drbg.Failed(),
		CheckpointRecords: len(o.checkpointStore.List()),
	}

	for _, required := range []string{"smartctl", "lsblk", "udevadm"} {
		if st, ok := statuses[required]; !ok || !st.Available {
			report.Degraded = true
		}
	}
	if !report.DRBGHealthy {
		report.Degraded = true
	}

	return report
}
