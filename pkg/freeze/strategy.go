// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package freeze implements C3: the ATA security-freeze state machine and
// its ordered ladder of unfreeze strategies.
package freeze

import (
	"context"

	"github.com/tinkershack/veriwipe/pkg/drive"
)

// Severity ranks a strategy's side-effect risk: cycling a shared link may
// drop sibling devices sharing the same controller or enclosure.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

// Strategy is one ordered rung in the unfreeze ladder.
type Strategy struct {
	Name                string
	ApplicableProtocols  map[drive.Protocol]bool
	Severity            Severity
	SuccessProbability   float64 // estimated, used only for ordering within a severity band
	Apply               func(ctx context.Context, d *drive.Descriptor) error
}

// appliesTo reports whether s declares the given protocol in its
// applicable-transport set.
func (s Strategy) appliesTo(p drive.Protocol) bool {
	return s.ApplicableProtocols[p]
}

// DefaultLadder returns the unfreeze strategies in default
// order, before per-device filtering and severity/probability sorting.
// Apply funcs are left for the caller (Manager) to bind against an actual
// command executor; this keeps the ladder's ordering/selection logic
// independent of the hardware backend used to execute each strategy.
func DefaultLadder() []Strategy {
	ataNVMeSCSI := map[drive.Protocol]bool{
		drive.ProtocolATA: true, drive.ProtocolSCSI: true, drive.ProtocolNVMe: true,
	}
	ataOnly := map[drive.Protocol]bool{drive.ProtocolATA: true}
	allProtocols := map[drive.Protocol]bool{
		drive.ProtocolATA: true, drive.ProtocolSCSI: true, drive.ProtocolNVMe: true, drive.ProtocolMMC: true,
	}

	return []Strategy{
		{Name: "link_layer_reset", ApplicableProtocols: ataNVMeSCSI, Severity: SeverityLow, SuccessProbability: 0.6},
		{Name: "pcie_hot_reset", ApplicableProtocols: map[drive.Protocol]bool{drive.ProtocolNVMe: true}, Severity: SeverityMedium, SuccessProbability: 0.7},
		{Name: "acpi_s3_cycle", ApplicableProtocols: allProtocols, Severity: SeverityHigh, SuccessProbability: 0.9},
		{Name: "usb_suspend_resume", ApplicableProtocols: map[drive.Protocol]bool{drive.ProtocolMMC: true}, Severity: SeverityLow, SuccessProbability: 0.5},
		{Name: "platform_power_cycle", ApplicableProtocols: allProtocols, Severity: SeverityHigh, SuccessProbability: 0.95},
		{Name: "vendor_unfreeze_command", ApplicableProtocols: ataOnly, Severity: SeverityMedium, SuccessProbability: 0.4},
		{Name: "kernel_module_register_poke", ApplicableProtocols: ataOnly, Severity: SeverityMedium, SuccessProbability: 0.3},
	}
}

// selectLadder filters DefaultLadder to strategies applicable to p, then
// orders by ascending severity and, within a severity band, descending
// success probability: selection minimizes severity, and within a
// severity band prefers the highest success probability.
func selectLadder(p drive.Protocol) []Strategy {
	all := DefaultLadder()
	var applicable []Strategy
	for _, s := range all {
		if s.appliesTo(p) {
			applicable = append(applicable, s)
		}
	}

	for i := 1; i < len(applicable); i++ {
		for j := i; j > 0; j-- {
			a, b := applicable[j-1], applicable[j]
			swap := a.Severity > b.Severity ||
				(a.Severity == b.Severity && a.SuccessProbability < b.SuccessProbability)
			if !swap {
				break
			}
			applicable[j-1], applicable[j] = applicable[j], applicable[j-1]
		}
	}
	return applicable
}
