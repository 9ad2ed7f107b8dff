// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import "github.com/tinkershack/veriwipe/pkg/pattern"

// Level is the verification depth. Aliased from the plan
// package's VerificationLevel so callers never need to import both for the
// same concept.
type Level = pattern.VerificationLevel

const (
	L1Quick      = pattern.VerifyL1Quick
	L2Systematic = pattern.VerifyL2Systematic
	L3Full       = pattern.VerifyL3Full
	L4Forensic   = pattern.VerifyL4Forensic
)

// RegionSample is one sampled extent's statistical readout
// Verification Report "per-region samples".
type RegionSample struct {
	LBA               uint64   `json:"lba"`
	Length            uint32   `json:"length"`
	Entropy           float64  `json:"entropy"`
	ChiSquarePoker    float64  `json:"chi_square_poker"`
	ChiSquareSerial   float64  `json:"chi_square_serial"`
	Monobit           float64  `json:"monobit_ratio"`
	Runs              float64  `json:"runs_statistic"`
	Autocorrelation   float64  `json:"autocorrelation"`
	DetectedPatterns  []string `json:"detected_patterns,omitempty"`
	ExactMatch        bool     `json:"exact_match"`
	StatisticalPass   bool     `json:"statistical_pass"`
}

// HiddenAreaCoverage records whether previously-hidden regions were
// actually read back during verification at L4.
type HiddenAreaCoverage struct {
	HPAChecked bool `json:"hpa_checked"`
	DCOChecked bool `json:"dco_checked"`
}

// OracleResult is the recovery-oracle's black-box outcome
// "files recovered: N" contract.
type OracleResult struct {
	Invoked        bool `json:"invoked"`
	FilesRecovered int  `json:"files_recovered"`
}

// SubScores is the weighted breakdown behind the aggregate confidence
// score table.
type SubScores struct {
	EntropyUniformity     float64 `json:"entropy_uniformity"`      // weight 30
	StatisticalPassRatio  float64 `json:"statistical_pass_ratio"`  // weight 25
	PatternSignatureClean float64 `json:"pattern_signature_clean"` // weight 15
	HiddenAreaCoverage    float64 `json:"hidden_area_coverage"`    // weight 15
	RecoveryOracleClean   float64 `json:"recovery_oracle_clean"`   // weight 15
}

// Report is the Verification Report.
type Report struct {
	Level              Level              `json:"level"`
	Samples            []RegionSample     `json:"samples"`
	HiddenAreaCoverage HiddenAreaCoverage `json:"hidden_area_coverage"`
	RecoveryOracle     OracleResult       `json:"recovery_oracle"`
	SubScores          SubScores          `json:"sub_scores"`
	Confidence         int                `json:"confidence"` // [0, 100]
	FatalPatternFound  bool               `json:"fatal_pattern_found"`
	Verdict            bool               `json:"verdict"` // pass iff three conditions hold
}
