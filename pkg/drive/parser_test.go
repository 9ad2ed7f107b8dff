// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSmartctlJSONATA(t *testing.T) {
	raw := []byte(`{
		"device": {"protocol": "ATA"},
		"model_name": "WDC WD40EFRX-68N32N0",
		"serial_number": "WD-WCC4E0123456",
		"firmware_version": "82.00A82",
		"user_capacity": {"blocks": 7814037168, "bytes": 4000787030016},
		"logical_block_size": 512,
		"physical_block_size": 4096,
		"rotation_rate": 5400,
		"smart_support": {"available": true, "enabled": true},
		"smart_status": {"passed": true},
		"ata_smart_attributes": {
			"table": [
				{"id": 5, "name": "Reallocated_Sector_Ct", "value": 100, "worst": 100, "thresh": 36, "raw": {"value": 0}},
				{"id": 194, "name": "Temperature_Celsius", "value": 116, "worst": 104, "thresh": 0, "raw": {"value": 34}}
			]
		}
	}`)

	d, info, err := parseSmartctlJSON(raw, "/dev/sda")
	require.NoError(t, err)

	assert.Equal(t, ProtocolATA, d.Protocol)
	assert.Equal(t, MediaRotating, d.MediaKind)
	assert.Equal(t, "WDC WD40EFRX-68N32N0", d.Model)
	assert.Equal(t, "WD-WCC4E0123456", d.Serial)
	assert.Equal(t, uint32(512), d.LogicalBlockSize)
	assert.EqualValues(t, 4000787030016/512, d.LogicalBlockCount)
	assert.True(t, d.HasCapability(CapSMART))
	assert.True(t, d.HasCapability(CapTemperatureSensor))

	assert.Equal(t, "PASSED", info.OverallStatus)
	assert.Equal(t, 34, info.Temperature)
	require.Contains(t, info.Attributes, 5)
	assert.False(t, info.Attributes[5].FailureNear())
}

func TestParseSmartctlJSONNVMe(t *testing.T) {
	raw := []byte(`{
		"device": {"protocol": "NVMe"},
		"model_name": "Samsung SSD 980 PRO 1TB",
		"serial_number": "S5GXNX0N123456",
		"user_capacity": {"blocks": 1953525168, "bytes": 1000204886016},
		"logical_block_size": 512,
		"smart_support": {"available": true, "enabled": true},
		"smart_status": {"passed": true},
		"nvme_smart_health_information_log": {
			"critical_warning": 0,
			"temperature": 42,
			"available_spare": 100,
			"available_spare_threshold": 10,
			"percentage_used": 2,
			"media_errors": 0,
			"power_on_hours": 512
		}
	}`)

	d, info, err := parseSmartctlJSON(raw, "/dev/nvme0n1")
	require.NoError(t, err)

	assert.Equal(t, ProtocolNVMe, d.Protocol)
	assert.Equal(t, MediaNAND, d.MediaKind)
	require.NotNil(t, info.NVMeHealth)
	assert.Equal(t, 42, info.NVMeHealth.Temperature)
	assert.Equal(t, uint64(512), info.NVMeHealth.PowerOnHours)
	assert.True(t, d.HasCapability(CapTemperatureSensor))
}

func TestParseSmartctlJSONRejectsGarbage(t *testing.T) {
	_, _, err := parseSmartctlJSON([]byte("not json"), "/dev/sda")
	assert.Error(t, err)
}

func TestFormatWWN(t *testing.T) {
	assert.Equal(t, "", formatWWN(0, 0, 0))
	assert.NotEmpty(t, formatWWN(5, 0x002538, 0xc40a57eb3))
}
