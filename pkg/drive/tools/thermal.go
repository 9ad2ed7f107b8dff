// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"

	"github.com/shirou/gopsutil/host"
	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// smartTemperatureJSON is the subset of `smartctl --json --all` this
// reader consumes: the common top-level "temperature" block ATA devices
// report, and NVMe's health-log field.
type smartTemperatureJSON struct {
	Temperature struct {
		Current int `json:"current"`
	} `json:"temperature"`
	NVMeSmartHealthInformationLog struct {
		Temperature int `json:"temperature"`
	} `json:"nvme_smart_health_information_log"`
}

// SmartThermal backs ioengine.ThermalSource, reading the drive's own
// reported temperature via smartctl with a host-sensor fallback for drives
// that do not expose one, since thermal throttling needs some reading
// rather than none whenever the platform can supply it.
type SmartThermal struct {
	logger     logger.Logger
	smartctl   *SmartctlExecutor
	devicePath string
}

// NewSmartThermal builds a SmartThermal for devicePath.
func NewSmartThermal(l logger.Logger, smartctl *SmartctlExecutor, devicePath string) *SmartThermal {
	return &SmartThermal{logger: l, smartctl: smartctl, devicePath: devicePath}
}

// TemperatureC returns the drive's current temperature in Celsius.
func (s *SmartThermal) TemperatureC(ctx context.Context) (float64, error) {
	out, err := s.smartctl.GetAttributes(ctx, s.devicePath)
	if err == nil {
		if c, ok := parseSmartTemperature(out); ok {
			return c, nil
		}
	}

	temps, herr := host.SensorsTemperatures()
	if herr == nil {
		for _, t := range temps {
			if t.Temperature > 0 {
				return t.Temperature, nil
			}
		}
	}

	return 0, errors.New(errors.DeviceUnavailable, "temperature unavailable from SMART or host sensors").
		WithMetadata("device_path", s.devicePath)
}

func parseSmartTemperature(out []byte) (float64, bool) {
	var v smartTemperatureJSON
	if err := json.Unmarshal(out, &v); err != nil {
		return 0, false
	}
	if v.Temperature.Current > 0 {
		return float64(v.Temperature.Current), true
	}
	if v.NVMeSmartHealthInformationLog.Temperature > 0 {
		return float64(v.NVMeSmartHealthInformationLog.Temperature), true
	}
	return 0, false
}
