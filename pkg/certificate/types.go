// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package certificate implements C10: assembling and signing the evidence
// document that binds drive identity, sanitization method, and
// verification outcome.
package certificate

import "time"

const SchemaVersion = "1"

// DriveInfo is the certificate's drive identity block.
type DriveInfo struct {
	Model  string `json:"model"`
	Serial string `json:"serial"`
	Size   uint64 `json:"size"`
	Kind   string `json:"kind"`
}

// PlanInfo is the certificate's plan summary.
type PlanInfo struct {
	Algorithm         string `json:"algorithm"`
	Passes            int    `json:"passes"`
	HiddenAreaPolicy  string `json:"hidden_area_policy"`
	PreWipeHiddenArea string `json:"pre_wipe_hidden_area_state"` // the state observed before any wipe pass began
}

// TimingInfo is the certificate's wipe timing block. Timestamps
// are fixed-format UTC so two independent signers canonicalize identically.
type TimingInfo struct {
	Started         time.Time `json:"started"`
	Completed       time.Time `json:"completed"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// StatisticalResultsInfo summarizes the statistical battery's pass ratio
// for the certificate's verification block.
type StatisticalResultsInfo struct {
	SamplesChecked int     `json:"samples_checked"`
	PassRatio      float64 `json:"pass_ratio"`
}

// VerificationInfo is the certificate's verification summary.
type VerificationInfo struct {
	Level              int                    `json:"level"`
	Confidence         int                    `json:"confidence"`
	Entropy            float64                `json:"entropy_mean"`
	StatisticalResults StatisticalResultsInfo `json:"statistical_results"`
	RecoveryResult     string                 `json:"recovery_result"` // "not_run" | "clean" | "files_recovered:N"
	HiddenAreasChecked bool                   `json:"hidden_areas_checked"`
}

// OperatorInfo identifies who ran the wipe.
type OperatorInfo struct {
	ID           string `json:"id"`
	Organization string `json:"organization"`
}

// SignatureInfo is the certificate's signature block.
type SignatureInfo struct {
	Algorithm      string `json:"algorithm"`
	KeyFingerprint string `json:"key_fingerprint"`
	Value          string `json:"value"`
}

// Certificate is the evidence document. Required top-level keys:
// certificate_version, certificate_uuid, drive, plan, timing,
// verification, compliance, operator, signature.
type Certificate struct {
	CertificateVersion string            `json:"certificate_version"`
	CertificateUUID    string            `json:"certificate_uuid"`
	Drive              DriveInfo         `json:"drive"`
	Plan               PlanInfo          `json:"plan"`
	Timing             TimingInfo        `json:"timing"`
	Verification       VerificationInfo  `json:"verification"`
	Compliance         []string          `json:"compliance"`
	Operator           OperatorInfo      `json:"operator"`
	Signature          SignatureInfo     `json:"signature"`
}
