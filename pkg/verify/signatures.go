// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import "bytes"

// magic is one entry in the fixed file-magic catalog scanned for during
// the L2 pattern-signature sweep: a scan against a fixed catalog of known
// file magics.
type magic struct {
	name  string
	bytes []byte
}

// knownMagics is a representative catalog of common file-format headers. A
// hit anywhere in a supposedly-wiped region is a Fatal residual-pattern
// finding under the verdict rule.
var knownMagics = []magic{
	{"PDF", []byte("%PDF-")},
	{"ZIP", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"PNG", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}},
	{"JPEG", []byte{0xFF, 0xD8, 0xFF}},
	{"GIF87a", []byte("GIF87a")},
	{"GIF89a", []byte("GIF89a")},
	{"ELF", []byte{0x7F, 'E', 'L', 'F'}},
	{"GZIP", []byte{0x1F, 0x8B}},
	{"SQLite", []byte("SQLite format 3\x00")},
	{"MSOffice-OLE2", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	{"NTFS-Boot", []byte("NTFS    ")},
	{"ext-Superblock", []byte{0x53, 0xEF}},
}

// ScanSignatures returns the names of every known magic found anywhere in b.
// A non-empty result on a region the algorithm just overwrote indicates
// either leftover data in an unreached extent or a firmware remap: a drive
// that silently remaps overwritten regions into unreachable spare areas
// reduces confidence rather than being reported as a clean success.
func ScanSignatures(b []byte) []string {
	var hits []string
	for _, m := range knownMagics {
		if bytes.Contains(b, m.bytes) {
			hits = append(hits, m.name)
		}
	}
	return hits
}
