// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package rng

import (
	"encoding/binary"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// systemEntropySnapshot gathers host/process counters that drift
// unpredictably between reseeds (boot time, per-core CPU times, memory
// pressure) and folds them into a byte slice to whiten into the DRBG seed,
// "system-entropy snapshot" source.
func systemEntropySnapshot() []byte {
	var buf []byte

	if info, err := host.Info(); err == nil {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], info.BootTime)
		buf = append(buf, tmp[:]...)
		binary.LittleEndian.PutUint64(tmp[:], info.Uptime)
		buf = append(buf, tmp[:]...)
		buf = append(buf, []byte(info.HostID)...)
	}

	if times, err := cpu.Times(true); err == nil {
		for _, t := range times {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], uint64(t.User*1e6))
			buf = append(buf, tmp[:]...)
			binary.LittleEndian.PutUint64(tmp[:], uint64(t.System*1e6))
			buf = append(buf, tmp[:]...)
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], vm.Used)
		buf = append(buf, tmp[:]...)
		binary.LittleEndian.PutUint64(tmp[:], vm.Free)
		buf = append(buf, tmp[:]...)
	}

	if len(buf) == 0 {
		// All sources unavailable (e.g. sandboxed/minimal container):
		// fall back to a fixed-size zero buffer so the caller's XOR fold
		// is a no-op rather than a crash; crypto/rand output alone still
		// seeds the DRBG safely.
		buf = make([]byte, keySize+counterSize)
	}
	return buf
}
