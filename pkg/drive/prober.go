// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package drive

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/drive/tools"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// lsblkEntry is the subset of one `lsblk --json` device row this classifier
// consumes.
type lsblkEntry struct {
	Path    string `json:"path"`
	Type    string `json:"type"`
	Rota    bool   `json:"rota"`
	Tran    string `json:"tran"`
	LogSec  uint32 `json:"log-sec"`
	PhySec  uint32 `json:"phy-sec"`
	DiscGran uint64 `json:"disc-gran"`
}

type lsblkOutput struct {
	BlockDevices []lsblkEntry `json:"blockdevices"`
}

// Prober implements C2: it shells out to smartctl and lsblk, classifies the
// result into a Protocol/MediaKind pair, and derives the drive's capability
// set strictly from positive evidence ( - missing capability
// information is reported as "not supported", never assumed).
type Prober struct {
	logger   logger.Logger
	smartctl *tools.SmartctlExecutor
	lsblk    *tools.LsblkExecutor
}

// NewProber builds a Prober from already-resolved tool executors.
func NewProber(l logger.Logger, smartctl *tools.SmartctlExecutor, lsblk *tools.LsblkExecutor) *Prober {
	return &Prober{logger: l, smartctl: smartctl, lsblk: lsblk}
}

// Probe builds a Descriptor for devicePath, combining lsblk's transport/
// rotational-flag view with smartctl's identification and SMART data. On
// ambiguous classification it picks the most specific subtype that the
// available evidence supports rather than falling back to a generic one.
func (p *Prober) Probe(ctx context.Context, devicePath string) (*Descriptor, *SMARTInfo, error) {
	lsblkOut, err := p.lsblk.GetDevice(ctx, devicePath)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ProbeFailed).
			WithMetadata("device_path", devicePath).
			WithMetadata("tool", "lsblk")
	}

	var lb lsblkOutput
	if uerr := json.Unmarshal(lsblkOut, &lb); uerr != nil || len(lb.BlockDevices) == 0 {
		return nil, nil, errors.New(errors.ProbeFailed, "lsblk returned no device entries").
			WithMetadata("device_path", devicePath)
	}
	entry := lb.BlockDevices[0]

	smartOut, err := p.smartctl.GetAll(ctx, devicePath)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.DeviceUnavailable).
			WithMetadata("device_path", devicePath).
			WithMetadata("tool", "smartctl")
	}

	desc, info, err := parseSmartctlJSON(smartOut, devicePath)
	if err != nil {
		return nil, nil, err
	}

	p.classify(desc, entry)

	if desc.LogicalBlockSize == 0 {
		desc.LogicalBlockSize = entry.LogSec
	}
	if desc.PhysicalBlockSize == 0 {
		desc.PhysicalBlockSize = entry.PhySec
	}
	if entry.DiscGran > 0 {
		desc.Capabilities[CapTRIM] = true
	}

	desc.HiddenArea = HiddenAreaState{
		HPAPresent: TriUnknown,
		DCOPresent: TriUnknown,
	}
	desc.Freeze = FreezeUnknown

	return desc, info, nil
}

// classify resolves Protocol/MediaKind ordering: transport
// class first, rotating-vs-solid-state second, subtype refinement last.
// lsblk's view of transport and rotation takes precedence over smartctl's
// self-reported protocol, since lsblk reflects the kernel's own enumeration.
func (p *Prober) classify(d *Descriptor, entry lsblkEntry) {
	tran := strings.ToLower(entry.Tran)

	switch {
	case tran == "nvme":
		d.Protocol = ProtocolNVMe
	case tran == "sata" || tran == "ata" || tran == "ide":
		d.Protocol = ProtocolATA
	case tran == "sas" || tran == "scsi" || tran == "fc" || tran == "iscsi":
		d.Protocol = ProtocolSCSI
	case tran == "mmc" || (tran == "usb" && strings.Contains(strings.ToLower(d.Model), "emmc")):
		d.Protocol = ProtocolMMC
	case d.Protocol == "" || d.Protocol == ProtocolUnknown:
		d.Protocol = ProtocolUnknown
	}

	switch {
	case !entry.Rota:
		d.MediaKind = MediaNAND
	case entry.Rota:
		d.MediaKind = MediaRotating
	}

	model := strings.ToLower(d.Model)
	switch {
	case strings.Contains(model, "optane") || strings.Contains(model, "3dxpoint") || strings.Contains(model, "pmem"):
		d.MediaKind = MediaSCM
	case strings.Contains(model, "emmc") || d.Protocol == ProtocolMMC:
		d.MediaKind = MediaEmbedded
		d.Protocol = ProtocolMMC
	case strings.Contains(model, "sshd") || strings.Contains(model, "hybrid"):
		d.MediaKind = MediaHybrid
	case strings.HasSuffix(model, "host aware") || strings.HasSuffix(model, "host managed") ||
		strings.Contains(model, " smr"):
		d.MediaKind = MediaShingled
	}
}
