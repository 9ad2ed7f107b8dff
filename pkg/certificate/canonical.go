// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"github.com/tidwall/sjson"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

const utcTimeFormat = "2006-01-02T15:04:05.000000000Z"

// canonicalFields builds the certificate's canonical bytes up to (but
// excluding) the signature block, one sjson.SetBytes call per field in
// fixed declaration order — deterministic and order-preserving. Arrays
// (compliance tags) are written in insertion order; sjson's array-append
// semantics preserve that.
func canonicalFields(c *Certificate) ([]byte, error) {
	var buf []byte
	var err error

	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		buf, err = sjson.SetBytes(buf, path, value)
	}

	set("certificate_version", c.CertificateVersion)
	set("certificate_uuid", c.CertificateUUID)

	set("drive.model", c.Drive.Model)
	set("drive.serial", c.Drive.Serial)
	set("drive.size", c.Drive.Size)
	set("drive.kind", c.Drive.Kind)

	set("plan.algorithm", c.Plan.Algorithm)
	set("plan.passes", c.Plan.Passes)
	set("plan.hidden_area_policy", c.Plan.HiddenAreaPolicy)
	set("plan.pre_wipe_hidden_area_state", c.Plan.PreWipeHiddenArea)

	set("timing.started", c.Timing.Started.UTC().Format(utcTimeFormat))
	set("timing.completed", c.Timing.Completed.UTC().Format(utcTimeFormat))
	set("timing.duration_seconds", c.Timing.DurationSeconds)

	set("verification.level", c.Verification.Level)
	set("verification.confidence", c.Verification.Confidence)
	set("verification.entropy", c.Verification.Entropy)
	set("verification.statistical_results.samples_checked", c.Verification.StatisticalResults.SamplesChecked)
	set("verification.statistical_results.pass_ratio", c.Verification.StatisticalResults.PassRatio)
	set("verification.recovery_result", c.Verification.RecoveryResult)
	set("verification.hidden_areas_checked", c.Verification.HiddenAreasChecked)

	for _, tag := range c.Compliance {
		if err != nil {
			break
		}
		buf, err = sjson.SetBytesOptions(buf, "compliance.-1", tag, &sjson.Options{Optimistic: true})
	}
	if len(c.Compliance) == 0 {
		set("compliance", []string{})
	}

	set("operator.id", c.Operator.ID)
	set("operator.organization", c.Operator.Organization)

	if err != nil {
		return nil, errors.Wrap(err, errors.CertificateCanonicalizationFailed)
	}
	return buf, nil
}

// Serialize produces the final text-serialized key/value document
// including the signature block, for storage/transmission.
func Serialize(c *Certificate) ([]byte, error) {
	buf, err := canonicalFields(c)
	if err != nil {
		return nil, err
	}
	buf, err = sjson.SetBytes(buf, "signature.algorithm", c.Signature.Algorithm)
	if err != nil {
		return nil, errors.Wrap(err, errors.CertificateCanonicalizationFailed)
	}
	buf, err = sjson.SetBytes(buf, "signature.key_fingerprint", c.Signature.KeyFingerprint)
	if err != nil {
		return nil, errors.Wrap(err, errors.CertificateCanonicalizationFailed)
	}
	buf, err = sjson.SetBytes(buf, "signature.value", c.Signature.Value)
	if err != nil {
		return nil, errors.Wrap(err, errors.CertificateCanonicalizationFailed)
	}
	return buf, nil
}
