// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package pattern

// gutmannTable is the 35-pass table from Gutmann's original paper. A nil
// entry means "freshly random" (passes 1-4 and 32-35); every other entry is
// the fixed repeating byte sequence for that pass, encoding the MFM/RLL
// worst-case bit patterns the paper targets.
var gutmannTable = [][]byte{
	nil, nil, nil, nil, // 1-4: random
	{0x55},       // 5
	{0xAA},       // 6
	{0x92, 0x49, 0x24}, // 7
	{0x49, 0x24, 0x92}, // 8
	{0x24, 0x92, 0x49}, // 9
	{0x00}, // 10
	{0x11}, // 11
	{0x22}, // 12
	{0x33}, // 13
	{0x44}, // 14
	{0x55}, // 15
	{0x66}, // 16
	{0x77}, // 17
	{0x88}, // 18
	{0x99}, // 19
	{0xAA}, // 20
	{0xBB}, // 21
	{0xCC}, // 22
	{0xDD}, // 23
	{0xEE}, // 24
	{0xFF}, // 25
	{0x92, 0x49, 0x24}, // 26
	{0x49, 0x24, 0x92}, // 27
	{0x24, 0x92, 0x49}, // 28
	{0x6D, 0xB6, 0xDB}, // 29
	{0xB6, 0xDB, 0x6D}, // 30
	{0xDB, 0x6D, 0xB6}, // 31
	nil, nil, nil, nil, // 32-35: random
}

// gutmannValid reports whether the table has the expected 35-pass shape,
// guarding against an accidental edit breaking its length.
func gutmannValid() bool {
	return len(gutmannTable) == 35
}
