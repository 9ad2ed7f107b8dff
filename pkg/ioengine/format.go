// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package ioengine

import "strconv"

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
