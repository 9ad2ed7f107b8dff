// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMARTAttributeFailureNear(t *testing.T) {
	healthy := SMARTAttribute{ID: AttrReallocatedSectors, Value: 100, Threshold: 36}
	assert.False(t, healthy.FailureNear())

	failing := SMARTAttribute{ID: AttrReallocatedSectors, Value: 20, Threshold: 36}
	assert.True(t, failing.FailureNear())
}

func TestCriticalSectorCountSumsKnownAttributes(t *testing.T) {
	info := &SMARTInfo{
		Attributes: map[int]SMARTAttribute{
			AttrReallocatedSectors:   {ID: AttrReallocatedSectors, RawValue: 3},
			AttrPendingSectors:       {ID: AttrPendingSectors, RawValue: 2},
			AttrOfflineUncorrectable: {ID: AttrOfflineUncorrectable, RawValue: 1},
			AttrSpinRetry:            {ID: AttrSpinRetry, RawValue: 99}, // not in the critical set
		},
	}
	assert.Equal(t, uint64(6), info.CriticalSectorCount())
}

func TestCriticalSectorCountZeroWhenNoAttributes(t *testing.T) {
	info := &SMARTInfo{}
	assert.Equal(t, uint64(0), info.CriticalSectorCount())
}
