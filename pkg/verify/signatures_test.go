// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanSignaturesFindsEmbeddedPDFMagic(t *testing.T) {
	buf := make([]byte, 512)
	copy(buf[100:], []byte("%PDF-1.4"))
	hits := ScanSignatures(buf)
	assert.Contains(t, hits, "PDF")
}

func TestScanSignaturesFindsPNGMagic(t *testing.T) {
	buf := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 256)...)
	hits := ScanSignatures(buf)
	assert.Contains(t, hits, "PNG")
}

func TestScanSignaturesZeroFillHasNoTextMagics(t *testing.T) {
	buf := make([]byte, 4096)
	hits := ScanSignatures(buf)
	assert.NotContains(t, hits, "PDF")
	assert.NotContains(t, hits, "ZIP")
	assert.NotContains(t, hits, "GIF87a")
}
