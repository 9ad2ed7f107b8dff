// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package pattern implements C6: the Algorithm Plan's pass content.
package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// Algorithm names a wipe algorithm.
type Algorithm string

const (
	AlgorithmZero              Algorithm = "ZERO"
	AlgorithmRandom            Algorithm = "RANDOM"
	AlgorithmDoD3Pass          Algorithm = "DOD_5220_22_M"
	AlgorithmGutmann35Pass     Algorithm = "GUTMANN_35"
	AlgorithmHardwareDelegated Algorithm = "HARDWARE_DELEGATED"
)

// HardwareMethod names the specific hardware-delegated command.
type HardwareMethod string

const (
	HardwareSecureErase         HardwareMethod = "SECURE_ERASE"
	HardwareEnhancedSecureErase HardwareMethod = "ENHANCED_SECURE_ERASE"
	HardwareNVMeFormat          HardwareMethod = "NVME_FORMAT"
	HardwareNVMeSanitize        HardwareMethod = "NVME_SANITIZE"
	HardwareCryptoErase         HardwareMethod = "CRYPTO_ERASE_SED"
	HardwareTRIMAllLBAs         HardwareMethod = "TRIM_ALL_LBAS"
)

// PassContent is one pass's content rule: either a fixed repeating byte
// sequence, or random (Fixed == nil) drawn from C1.
type PassContent struct {
	Index              int
	Fixed              []byte // nil means random content
	VerificationRequired bool
}

// VerificationLevel is the terminal verification depth required by a
// Plan: L1 Quick .. L4 Forensic.
type VerificationLevel int

const (
	VerifyL1Quick      VerificationLevel = 1
	VerifyL2Systematic VerificationLevel = 2
	VerifyL3Full       VerificationLevel = 3
	VerifyL4Forensic   VerificationLevel = 4
)

// Plan is an ordered sequence of passes for a drive, covering
// [0, EffectiveMaxLBA) on every pass — the "Effective" rule, including any
// temporarily-unhidden HPA — plus the terminal verification level and
// minimum confidence the plan requires.
type Plan struct {
	Algorithm      Algorithm
	HardwareMethod HardwareMethod // only set when Algorithm == AlgorithmHardwareDelegated
	Passes         []PassContent

	VerificationLevel VerificationLevel
	MinConfidence      int // required confidence in [0, 100]
}

// BuildPlan constructs the pass sequence for algorithm. d is consulted only
// to validate hardware-delegated capability; it does not affect pass
// content for the software algorithms. level and minConfidence populate the
// plan's terminal verification requirement.
func BuildPlan(algorithm Algorithm, hw HardwareMethod, d *drive.Descriptor, level VerificationLevel, minConfidence int) (*Plan, error) {
	switch algorithm {
	case AlgorithmZero:
		return &Plan{Algorithm: algorithm, Passes: []PassContent{{Index: 1, Fixed: []byte{0x00}}}, VerificationLevel: level, MinConfidence: minConfidence}, nil

	case AlgorithmRandom:
		return &Plan{Algorithm: algorithm, Passes: []PassContent{{Index: 1, Fixed: nil}}, VerificationLevel: level, MinConfidence: minConfidence}, nil

	case AlgorithmDoD3Pass:
		return &Plan{Algorithm: algorithm, Passes: []PassContent{
			{Index: 1, Fixed: []byte{0x00}},
			{Index: 2, Fixed: []byte{0xFF}},
			{Index: 3, Fixed: nil, VerificationRequired: true},
		}, VerificationLevel: level, MinConfidence: minConfidence}, nil

	case AlgorithmGutmann35Pass:
		if !gutmannValid() {
			return nil, errors.New(errors.GutmannTableInvalid, "gutmann pass table does not have 35 entries")
		}
		passes := make([]PassContent, 0, len(gutmannTable))
		for i, fixed := range gutmannTable {
			passes = append(passes, PassContent{Index: i + 1, Fixed: fixed})
		}
		return &Plan{Algorithm: algorithm, Passes: passes, VerificationLevel: level, MinConfidence: minConfidence}, nil

	case AlgorithmHardwareDelegated:
		if !hardwareCapable(d, hw) {
			return nil, errors.New(errors.HardwarePassUnsupported, "device does not support requested hardware-delegated method").
				WithMetadata("method", string(hw))
		}
		return &Plan{Algorithm: algorithm, HardwareMethod: hw, VerificationLevel: level, MinConfidence: minConfidence}, nil
	}

	return nil, errors.New(errors.PatternGenerationFailed, "unknown algorithm").WithMetadata("algorithm", string(algorithm))
}

// Hash derives a stable identifier for the plan, used as the checkpoint
// resume-compatibility key (: resume is refused if the plan hash
// differs from the one recorded at checkpoint time).
func (p *Plan) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "algorithm=%s|hardware=%s|level=%d|min_confidence=%d", p.Algorithm, p.HardwareMethod, p.VerificationLevel, p.MinConfidence)
	for _, pc := range p.Passes {
		if pc.Fixed != nil {
			fmt.Fprintf(h, "|pass%d=%x", pc.Index, pc.Fixed)
		} else {
			fmt.Fprintf(h, "|pass%d=random", pc.Index)
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func hardwareCapable(d *drive.Descriptor, hw HardwareMethod) bool {
	switch hw {
	case HardwareSecureErase:
		return d.HasCapability(drive.CapHardwareSecureErase)
	case HardwareEnhancedSecureErase:
		return d.HasCapability(drive.CapEnhancedSecureErase)
	case HardwareNVMeFormat:
		return d.HasCapability(drive.CapNVMeFormat)
	case HardwareNVMeSanitize:
		return d.HasCapability(drive.CapNVMeSanitize)
	case HardwareCryptoErase:
		return d.HasCapability(drive.CapCryptoErase) || d.HasCapability(drive.CapSEDPSIDRevert)
	case HardwareTRIMAllLBAs:
		return d.HasCapability(drive.CapTRIM)
	}
	return false
}
