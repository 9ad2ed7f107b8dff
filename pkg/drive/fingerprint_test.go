// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintStableAcrossDevicePath(t *testing.T) {
	a := &Descriptor{DevicePath: "/dev/sda", Serial: "WD-ABC123", Model: "WDC WD40", LogicalBlockSize: 512, LogicalBlockCount: 1000}
	b := &Descriptor{DevicePath: "/dev/sdz", Serial: "WD-ABC123", Model: "WDC WD40", LogicalBlockSize: 512, LogicalBlockCount: 1000}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "fingerprint must not depend on device path")
}

func TestFingerprintDiffersOnSerial(t *testing.T) {
	a := &Descriptor{Serial: "WD-ABC123", Model: "WDC WD40", LogicalBlockSize: 512, LogicalBlockCount: 1000}
	b := &Descriptor{Serial: "WD-XYZ999", Model: "WDC WD40", LogicalBlockSize: 512, LogicalBlockCount: 1000}

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestHiddenAreaStateValid(t *testing.T) {
	t.Run("EqualIsValid", func(t *testing.T) {
		h := HiddenAreaState{TrueMaxLBA: 100, VisibleMaxLBA: 100, HPAPresent: TriNo}
		assert.True(t, h.Valid())
	})

	t.Run("DiscrepancyWithHPANoIsInvalid", func(t *testing.T) {
		h := HiddenAreaState{TrueMaxLBA: 200, VisibleMaxLBA: 100, HPAPresent: TriNo}
		assert.False(t, h.Valid())
	})

	t.Run("DiscrepancyWithHPAYesIsValid", func(t *testing.T) {
		h := HiddenAreaState{TrueMaxLBA: 200, VisibleMaxLBA: 100, HPAPresent: TriYes}
		assert.True(t, h.Valid())
	})

	t.Run("TrueLessThanVisibleIsInvalid", func(t *testing.T) {
		h := HiddenAreaState{TrueMaxLBA: 50, VisibleMaxLBA: 100, HPAPresent: TriUnknown}
		assert.False(t, h.Valid())
	})
}

func TestEffectiveMaxLBAIncludesHiddenArea(t *testing.T) {
	d := &Descriptor{
		LogicalBlockCount: 1000,
		HiddenArea:        HiddenAreaState{TrueMaxLBA: 1200, VisibleMaxLBA: 999, HPAPresent: TriYes},
	}
	assert.Equal(t, uint64(1200), d.EffectiveMaxLBA())
}

func TestEffectiveMaxLBAWithoutHiddenArea(t *testing.T) {
	d := &Descriptor{LogicalBlockCount: 1000}
	assert.Equal(t, uint64(999), d.EffectiveMaxLBA())
}
