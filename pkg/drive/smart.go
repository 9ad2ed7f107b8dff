// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package drive

import "time"

// SMARTAttribute is a single SATA/SAS SMART attribute (ID 0-255).
type SMARTAttribute struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Value     int    `json:"value"`
	Worst     int    `json:"worst"`
	Threshold int    `json:"threshold"`
	RawValue  uint64 `json:"raw_value"`
}

// FailureNear reports whether the attribute's normalized value has crossed
// its own failure threshold.
func (a SMARTAttribute) FailureNear() bool {
	return a.Value <= a.Threshold
}

// NVMeHealth is the NVMe SMART/Health Information log page (subset used by
// the thermal poller and the verifier's confidence scoring).
type NVMeHealth struct {
	CriticalWarning      int    `json:"critical_warning"`
	Temperature          int    `json:"temperature"`
	AvailableSpare       int    `json:"available_spare"`
	AvailableSpareThresh int    `json:"available_spare_thresh"`
	PercentUsed          int    `json:"percent_used"`
	MediaErrors          uint64 `json:"media_errors"`
	PowerOnHours         uint64 `json:"power_on_hours"`
}

// SMARTInfo is the snapshot of a drive's health state read by C2 at probe
// time and re-polled by C5's thermal throttle.
type SMARTInfo struct {
	Available        bool                   `json:"available"`
	Enabled          bool                   `json:"enabled"`
	OverallStatus    string                 `json:"overall_status"`
	Attributes       map[int]SMARTAttribute `json:"attributes,omitempty"`
	NVMeHealth       *NVMeHealth            `json:"nvme_health,omitempty"`
	Temperature      int                    `json:"temperature"`
	TemperatureValid bool                   `json:"temperature_valid"`
	LastUpdated      time.Time              `json:"last_updated"`
}

// Attribute severity, grounded on the critical-attribute catalog used
// across third-party SMART tooling: reallocated/pending/uncorrectable
// sector counts are the drives'-dying signal the recovery coordinator and
// verifier both care about.
const (
	AttrReallocatedSectors     = 5
	AttrSpinRetry              = 10
	AttrReallocationEvents     = 196
	AttrPendingSectors         = 197
	AttrOfflineUncorrectable   = 198
)

// criticalSectorAttributes are the attribute IDs treated as "disk is
// actively failing" when non-zero, independent of the vendor's own
// normalized threshold.
var criticalSectorAttributes = map[int]bool{
	AttrReallocatedSectors:   true,
	AttrReallocationEvents:   true,
	AttrPendingSectors:       true,
	AttrOfflineUncorrectable: true,
}

// CriticalSectorCount sums the raw values of the attributes known to
// indicate bad-sector accumulation, used by the recovery coordinator's
// bad-sector tolerance check and by the verifier's confidence scoring.
func (s *SMARTInfo) CriticalSectorCount() uint64 {
	var total uint64
	for id, attr := range s.Attributes {
		if criticalSectorAttributes[id] {
			total += attr.RawValue
		}
	}
	return total
}
