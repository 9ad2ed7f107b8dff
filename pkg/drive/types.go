// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package drive defines the Drive Descriptor data model and the device
// probe that populates it (C2).
package drive

import "time"

// Protocol is the command-transport class of a drive.
type Protocol string

const (
	ProtocolATA     Protocol = "ATA"
	ProtocolNVMe    Protocol = "NVME"
	ProtocolSCSI    Protocol = "SCSI"
	ProtocolMMC     Protocol = "MMC"
	ProtocolVirtual Protocol = "VIRTUAL_RAID"
	ProtocolUnknown Protocol = "UNKNOWN"
)

// MediaKind is the physical storage technology of a drive.
type MediaKind string

const (
	MediaRotating MediaKind = "ROTATING"
	MediaNAND     MediaKind = "NAND"
	MediaSCM      MediaKind = "STORAGE_CLASS_MEMORY" // Optane/3DXPoint
	MediaHybrid   MediaKind = "HYBRID"                // SSHD
	MediaShingled MediaKind = "SHINGLED"               // SMR
	MediaEmbedded MediaKind = "EMBEDDED"               // eMMC
	MediaUnknown  MediaKind = "UNKNOWN"
)

// Capability is a named hardware-level feature of a drive. Absence of a
// capability in a Descriptor's set means "not supported", never "assume
// yes" — capabilities are only ever added once positively identified.
type Capability string

const (
	CapHardwareSecureErase  Capability = "HARDWARE_SECURE_ERASE"
	CapEnhancedSecureErase  Capability = "ENHANCED_SECURE_ERASE"
	CapNVMeFormat           Capability = "NVME_FORMAT"
	CapNVMeSanitize         Capability = "NVME_SANITIZE"
	CapTRIM                 Capability = "TRIM"
	CapCryptoErase          Capability = "CRYPTO_ERASE"
	CapSMART                Capability = "SMART"
	CapTemperatureSensor    Capability = "TEMPERATURE_SENSOR"
	CapSEDPSIDRevert        Capability = "SED_PSID_REVERT"
)

// TriState models a detection result with an honest "don't know" value —
// used for HPA/DCO presence, which must never default to "absent".
type TriState string

const (
	TriYes     TriState = "YES"
	TriNo      TriState = "NO"
	TriUnknown TriState = "UNKNOWN"
)

// FreezeState mirrors the C3 Freeze Manager's state machine values, carried
// here so the descriptor always reflects the drive's current freeze status.
type FreezeState string

const (
	FreezeUnknown           FreezeState = "UNKNOWN"
	FreezeFrozen            FreezeState = "FROZEN"
	FreezeUnfrozen          FreezeState = "UNFROZEN"
	FreezePermanentlyFrozen FreezeState = "PERMANENTLY_FROZEN"
)

// HiddenAreaState captures HPA/DCO detection. Invariant:
// TrueMaxLBA >= VisibleMaxLBA; if they differ, HPAPresent must not be TriNo.
type HiddenAreaState struct {
	HPAPresent     TriState `json:"hpa_present"`
	TrueMaxLBA     uint64   `json:"true_max_lba"`
	VisibleMaxLBA  uint64   `json:"visible_max_lba"`
	DCOPresent     TriState `json:"dco_present"`
}

// Valid reports whether the invariant true_max_lba >= visible_max_lba holds
// and that a discrepancy is reflected honestly in HPAPresent.
func (h HiddenAreaState) Valid() bool {
	if h.TrueMaxLBA < h.VisibleMaxLBA {
		return false
	}
	if h.TrueMaxLBA != h.VisibleMaxLBA && h.HPAPresent == TriNo {
		return false
	}
	return true
}

// Descriptor is the opaque device handle threaded through every wipe-engine
// component. The Orchestrator exclusively owns a Descriptor for the
// lifetime of a wipe; the I/O Engine holds a non-owning borrow of it.
type Descriptor struct {
	DevicePath      string      `json:"device_path"`
	LogicalBlockSize  uint32    `json:"logical_block_size"`
	PhysicalBlockSize uint32    `json:"physical_block_size"`
	LogicalBlockCount uint64    `json:"logical_block_count"`

	Protocol  Protocol  `json:"protocol"`
	MediaKind MediaKind `json:"media_kind"`

	Vendor   string `json:"vendor"`
	Model    string `json:"model"`
	Serial   string `json:"serial"`
	Firmware string `json:"firmware"`
	WWN      string `json:"wwn,omitempty"`

	Capabilities map[Capability]bool `json:"capabilities"`

	HiddenArea HiddenAreaState `json:"hidden_area"`
	Freeze     FreezeState     `json:"freeze"`

	ProbedAt time.Time `json:"probed_at"`
}

// SizeBytes returns the addressable capacity implied by the logical
// geometry.
func (d *Descriptor) SizeBytes() uint64 {
	return uint64(d.LogicalBlockSize) * d.LogicalBlockCount
}

// HasCapability reports whether cap was positively identified.
func (d *Descriptor) HasCapability(cap Capability) bool {
	if d.Capabilities == nil {
		return false
	}
	return d.Capabilities[cap]
}

// EffectiveMaxLBA returns the address range the pattern pipeline must
// cover, including any temporarily-unhidden HPA — the "Effective" rule.
func (d *Descriptor) EffectiveMaxLBA() uint64 {
	if d.HiddenArea.TrueMaxLBA > d.HiddenArea.VisibleMaxLBA {
		return d.HiddenArea.TrueMaxLBA
	}
	if d.LogicalBlockCount > 0 {
		return d.LogicalBlockCount - 1
	}
	return 0
}

// Fingerprint derives the stable drive-identity fingerprint used as the
// checkpoint key: serial + size + model hash, stable across reboots and
// device-path renumbering.
func (d *Descriptor) Fingerprint() string {
	return fingerprint(d.Serial, d.Model, d.SizeBytes())
}
