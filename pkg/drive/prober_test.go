// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNVMe(t *testing.T) {
	p := &Prober{}
	d := &Descriptor{Model: "Samsung SSD 980 PRO"}
	p.classify(d, lsblkEntry{Tran: "nvme", Rota: false})

	assert.Equal(t, ProtocolNVMe, d.Protocol)
	assert.Equal(t, MediaNAND, d.MediaKind)
}

func TestClassifyRotatingSATA(t *testing.T) {
	p := &Prober{}
	d := &Descriptor{Model: "WDC WD40EFRX"}
	p.classify(d, lsblkEntry{Tran: "sata", Rota: true})

	assert.Equal(t, ProtocolATA, d.Protocol)
	assert.Equal(t, MediaRotating, d.MediaKind)
}

func TestClassifyShingledSMR(t *testing.T) {
	p := &Prober{}
	d := &Descriptor{Model: "Seagate ST8000AS0022 Host Managed SMR"}
	p.classify(d, lsblkEntry{Tran: "sata", Rota: true})

	assert.Equal(t, MediaShingled, d.MediaKind)
}

func TestClassifyEmbeddedMMC(t *testing.T) {
	p := &Prober{}
	d := &Descriptor{Model: "eMMC Storage"}
	p.classify(d, lsblkEntry{Tran: "mmc", Rota: false})

	assert.Equal(t, ProtocolMMC, d.Protocol)
	assert.Equal(t, MediaEmbedded, d.MediaKind)
}

func TestClassifyOptaneStorageClassMemory(t *testing.T) {
	p := &Prober{}
	d := &Descriptor{Model: "Intel Optane SSD DC P4800X"}
	p.classify(d, lsblkEntry{Tran: "nvme", Rota: false})

	assert.Equal(t, MediaSCM, d.MediaKind)
}

func TestClassifyHybridSSHD(t *testing.T) {
	p := &Prober{}
	d := &Descriptor{Model: "Seagate SSHD Hybrid Drive"}
	p.classify(d, lsblkEntry{Tran: "sata", Rota: true})

	assert.Equal(t, MediaHybrid, d.MediaKind)
}

func TestClassifySAS(t *testing.T) {
	p := &Prober{}
	d := &Descriptor{Model: "HGST SAS Enterprise"}
	p.classify(d, lsblkEntry{Tran: "sas", Rota: true})

	assert.Equal(t, ProtocolSCSI, d.Protocol)
	assert.Equal(t, MediaRotating, d.MediaKind)
}
