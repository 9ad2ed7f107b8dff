// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalBadBytesSumsRecordedExtents(t *testing.T) {
	r := NewRecord("fp1", "hash", 10000)
	r.AppendBadSector(10, 512, "bad_sector")
	r.AppendBadSector(200, 512, "bad_sector")
	assert.Equal(t, uint64(1024), r.TotalBadBytes())
}

func TestBadByteFractionComputesAgainstPassTotal(t *testing.T) {
	r := NewRecord("fp1", "hash", 10000)
	r.AppendBadSector(10, 1000, "bad_sector")
	assert.InDelta(t, 0.1, r.BadByteFraction(), 1e-9)
}

func TestBadByteFractionZeroWithoutBadSectors(t *testing.T) {
	r := NewRecord("fp1", "hash", 10000)
	assert.Equal(t, float64(0), r.BadByteFraction())
}
