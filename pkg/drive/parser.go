// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tinkershack/veriwipe/pkg/errors"
)

// smartctlJSON is the subset of `smartctl --json --all` output this parser
// consumes.
type smartctlJSON struct {
	Device struct {
		Protocol string `json:"protocol"`
	} `json:"device"`
	ModelName       string `json:"model_name"`
	SerialNumber    string `json:"serial_number"`
	FirmwareVersion string `json:"firmware_version"`
	WWN             *struct {
		NAA int    `json:"naa"`
		OUI int    `json:"oui"`
		ID  uint64 `json:"id"`
	} `json:"wwn,omitempty"`
	UserCapacity struct {
		Blocks uint64 `json:"blocks"`
		Bytes  uint64 `json:"bytes"`
	} `json:"user_capacity"`
	LogicalBlockSize  uint32 `json:"logical_block_size"`
	PhysicalBlockSize uint32 `json:"physical_block_size"`
	RotationRate      int    `json:"rotation_rate"`
	TrimSupported     *struct {
		Supported bool `json:"supported"`
	} `json:"trim,omitempty"`
	SmartSupport struct {
		Available bool `json:"available"`
		Enabled   bool `json:"enabled"`
	} `json:"smart_support"`
	SmartStatus struct {
		Passed bool `json:"passed"`
	} `json:"smart_status"`
	ATASmartAttributes *struct {
		Table []struct {
			ID     int    `json:"id"`
			Name   string `json:"name"`
			Value  int    `json:"value"`
			Worst  int    `json:"worst"`
			Thresh int    `json:"thresh"`
			Raw    struct {
				Value uint64 `json:"value"`
			} `json:"raw"`
		} `json:"table"`
	} `json:"ata_smart_attributes,omitempty"`
	NVMeSmartHealthInformationLog *struct {
		CriticalWarning         int    `json:"critical_warning"`
		Temperature             int    `json:"temperature"`
		AvailableSpare          int    `json:"available_spare"`
		AvailableSpareThreshold int    `json:"available_spare_threshold"`
		PercentageUsed          int    `json:"percentage_used"`
		MediaErrors             uint64 `json:"media_errors"`
		PowerOnHours            uint64 `json:"power_on_hours"`
	} `json:"nvme_smart_health_information_log,omitempty"`
	Temperature *struct {
		Current int `json:"current"`
	} `json:"temperature,omitempty"`
}

// parseSmartctlJSON turns `smartctl --json --all` output into a Descriptor
// (identity/geometry/protocol fields) and a SMARTInfo snapshot.
func parseSmartctlJSON(data []byte, devicePath string) (*Descriptor, *SMARTInfo, error) {
	var raw smartctlJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, errors.Wrap(err, errors.ProbeFailed).
			WithMetadata("device_path", devicePath).
			WithMetadata("operation", "parse_smartctl_json")
	}

	d := &Descriptor{
		DevicePath:        devicePath,
		Model:             raw.ModelName,
		Serial:            raw.SerialNumber,
		Firmware:          raw.FirmwareVersion,
		LogicalBlockSize:  raw.LogicalBlockSize,
		PhysicalBlockSize: raw.PhysicalBlockSize,
		Capabilities:      make(map[Capability]bool),
		ProbedAt:          time.Now(),
	}
	if raw.LogicalBlockSize > 0 {
		d.LogicalBlockCount = raw.UserCapacity.Bytes / uint64(raw.LogicalBlockSize)
	}
	if raw.WWN != nil {
		d.WWN = formatWWN(raw.WWN.NAA, raw.WWN.OUI, raw.WWN.ID)
	}

	switch raw.Device.Protocol {
	case "NVMe":
		d.Protocol = ProtocolNVMe
		d.MediaKind = MediaNAND
	case "ATA", "SATA":
		d.Protocol = ProtocolATA
		if raw.RotationRate == 0 {
			d.MediaKind = MediaNAND
		} else {
			d.MediaKind = MediaRotating
		}
	case "SCSI", "SAS":
		d.Protocol = ProtocolSCSI
		if raw.RotationRate == 0 {
			d.MediaKind = MediaNAND
		} else {
			d.MediaKind = MediaRotating
		}
	default:
		d.Protocol = ProtocolUnknown
		d.MediaKind = MediaUnknown
	}

	if raw.SmartSupport.Available {
		d.Capabilities[CapSMART] = true
	}
	if raw.TrimSupported != nil && raw.TrimSupported.Supported {
		d.Capabilities[CapTRIM] = true
	}

	info := &SMARTInfo{
		Available:   raw.SmartSupport.Available,
		Enabled:     raw.SmartSupport.Enabled,
		LastUpdated: time.Now(),
	}
	if raw.SmartStatus.Passed {
		info.OverallStatus = "PASSED"
	} else {
		info.OverallStatus = "FAILED"
	}

	if raw.NVMeSmartHealthInformationLog != nil {
		n := raw.NVMeSmartHealthInformationLog
		info.NVMeHealth = &NVMeHealth{
			CriticalWarning:      n.CriticalWarning,
			Temperature:          n.Temperature,
			AvailableSpare:       n.AvailableSpare,
			AvailableSpareThresh: n.AvailableSpareThreshold,
			PercentUsed:          n.PercentageUsed,
			MediaErrors:          n.MediaErrors,
			PowerOnHours:         n.PowerOnHours,
		}
		info.Temperature = n.Temperature
		info.TemperatureValid = true
		d.Capabilities[CapTemperatureSensor] = true
	}

	if raw.ATASmartAttributes != nil {
		info.Attributes = make(map[int]SMARTAttribute)
		for _, attr := range raw.ATASmartAttributes.Table {
			info.Attributes[attr.ID] = SMARTAttribute{
				ID:        attr.ID,
				Name:      attr.Name,
				Value:     attr.Value,
				Worst:     attr.Worst,
				Threshold: attr.Thresh,
				RawValue:  attr.Raw.Value,
			}
			if attr.ID == 194 {
				info.Temperature = int(attr.Raw.Value)
				info.TemperatureValid = true
				d.Capabilities[CapTemperatureSensor] = true
			}
		}
	}

	if raw.Temperature != nil {
		info.Temperature = raw.Temperature.Current
		info.TemperatureValid = true
	}

	return d, info, nil
}

// formatWWN renders the NAA/OUI/ID triple smartctl reports into the
// conventional hex WWN string (e.g. "5002538c40a57eb3").
func formatWWN(naa, oui int, id uint64) string {
	if naa == 0 && oui == 0 && id == 0 {
		return ""
	}
	return fmt.Sprintf("%x%06x%09x", naa, oui, id)
}
