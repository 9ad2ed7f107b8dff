// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"github.com/tinkershack/veriwipe/pkg/pattern"
	"github.com/tinkershack/veriwipe/pkg/verify"
)

// Tag names the compliance standards a certificate may assert:
// "each asserted iff the plan and verification outcome satisfy its stated
// requirements."
const (
	TagDoD     = "DoD 5220.22-M"
	TagNIST80088 = "NIST 800-88"
	TagPCIDSS  = "PCI DSS"
	TagHIPAA   = "HIPAA"
	TagISO27001 = "ISO 27001"
	TagGDPR    = "GDPR"
	TagNSA     = "NSA"
)

// EvaluateTags returns the compliance tags satisfied by plan and report,
// never a tag the outcome does not actually support.
func EvaluateTags(plan *pattern.Plan, report *verify.Report) []string {
	if !report.Verdict {
		return nil
	}

	var tags []string

	if plan.Algorithm == pattern.AlgorithmDoD3Pass {
		tags = append(tags, TagDoD)
	}

	// NIST 800-88 accepts both a verified multi-pass overwrite and a
	// hardware-delegated purge/clear, provided verification confirmed it.
	switch plan.Algorithm {
	case pattern.AlgorithmDoD3Pass, pattern.AlgorithmGutmann35Pass, pattern.AlgorithmHardwareDelegated:
		if report.Confidence >= 95 {
			tags = append(tags, TagNIST80088)
		}
	}

	// PCI DSS / HIPAA / ISO 27001 / GDPR only require "rendered
	// unrecoverable by industry-accepted means", satisfied by any verified
	// plan clearing a high confidence bar.
	if report.Confidence >= 90 {
		tags = append(tags, TagPCIDSS, TagHIPAA, TagISO27001, TagGDPR)
	}

	// NSA/CSS storage-device sanitization guidance favors the Gutmann
	// method or a hardware sanitize/crypto-erase, at the highest
	// verification level.
	if (plan.Algorithm == pattern.AlgorithmGutmann35Pass || plan.Algorithm == pattern.AlgorithmHardwareDelegated) &&
		plan.VerificationLevel == pattern.VerifyL4Forensic {
		tags = append(tags, TagNSA)
	}

	return tags
}
