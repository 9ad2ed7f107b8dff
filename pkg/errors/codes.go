// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import "net/http"

// Error code ranges, one block per wipe-engine component, continuing on
// from the disk-management range this numbering scheme grew out of:
//
//	2400-2419  C1 Secure RNG
//	2420-2449  C2 Device Probe
//	2450-2469  C3 Freeze Manager
//	2470-2489  C4 Hidden-Area Manager
//	2490-2529  C5 I/O Engine
//	2530-2549  C6 Pattern Pipeline
//	2550-2579  C7 Checkpoint Store
//	2580-2609  C8 Recovery Coordinator
//	2610-2649  C9 Verifier
//	2650-2669  C10 Certificate Issuer
//	2670-2689  Orchestrator / CLI glue

const (
	// C1 Secure RNG (2400-2419)
	EntropyFailure ErrorCode = 2400 + iota
	ReseedFailed
	HealthTestFailed
	SeedSourceUnavailable
)

const (
	// C2 Device Probe (2420-2449)
	DeviceUnavailable ErrorCode = 2420 + iota
	ProbeFailed
	IdentifyFailed
	CapabilityUnknown
	ClassificationAmbiguous
)

const (
	// C3 Freeze Manager (2450-2469)
	Frozen ErrorCode = 2450 + iota
	PermanentlyFrozen
	UnfreezeStrategyFailed
	FreezeConfirmFailed
)

const (
	// C4 Hidden-Area Manager (2470-2489)
	HiddenAreaPolicyViolation ErrorCode = 2470 + iota
	HPADetectFailed
	DCORemovalRefused
	HiddenAreaRestoreFailed
)

const (
	// C5 I/O Engine (2490-2529)
	ThermalCritical ErrorCode = 2490 + iota
	AlignmentViolation
	WriteFailed
	FlushFailed
	QueueBackpressure
	BadSectorWrite
)

const (
	// C6 Pattern Pipeline (2530-2549)
	PatternGenerationFailed ErrorCode = 2530 + iota
	GutmannTableInvalid
	HardwarePassUnsupported
)

const (
	// C7 Checkpoint Store (2550-2579)
	CheckpointCorrupted ErrorCode = 2550 + iota
	CheckpointWriteFailed
	ResumeIncompatible
	CheckpointNotFound
)

const (
	// C8 Recovery Coordinator (2580-2609)
	BadSectorsExceedTolerance ErrorCode = 2580 + iota
	CircuitOpen
	FatalBusError
	RecoveryExhausted
)

const (
	// C9 Verifier (2610-2649)
	VerificationFailed ErrorCode = 2610 + iota
	VerificationUnreliable
	RecoveryOracleFoundData
	PreWipeCapabilityTestFailed
)

const (
	// C10 Certificate Issuer (2650-2669)
	SignatureUnavailable ErrorCode = 2650 + iota
	CertificateCanonicalizationFailed
	ComplianceTagUnsatisfied
)

const (
	// Orchestrator / CLI glue (2670-2689). ConfigInvalid, ConfigLoadFailed,
	// and CommandExecution are declared in types.go, in the separate
	// 2690-2699 block.
	Interrupted ErrorCode = 2673 + iota
	UserAborted
)

func init() {
	registerErrors(map[ErrorCode]errorDef{
		EntropyFailure:        {"DRBG entropy health test failed", DomainRNG, http.StatusInternalServerError},
		ReseedFailed:          {"DRBG reseed failed", DomainRNG, http.StatusInternalServerError},
		HealthTestFailed:      {"continuous health test failed", DomainRNG, http.StatusInternalServerError},
		SeedSourceUnavailable: {"no entropy seed source available", DomainRNG, http.StatusInternalServerError},

		DeviceUnavailable:       {"device unavailable", DomainProbe, http.StatusServiceUnavailable},
		ProbeFailed:             {"device probe failed", DomainProbe, http.StatusInternalServerError},
		IdentifyFailed:          {"identify command failed", DomainProbe, http.StatusInternalServerError},
		CapabilityUnknown:       {"device capability could not be determined", DomainProbe, http.StatusInternalServerError},
		ClassificationAmbiguous: {"device classification ambiguous", DomainProbe, http.StatusInternalServerError},

		Frozen:                 {"device is ATA security frozen", DomainFreeze, http.StatusConflict},
		PermanentlyFrozen:      {"device remained frozen after all unfreeze strategies", DomainFreeze, http.StatusConflict},
		UnfreezeStrategyFailed: {"unfreeze strategy failed", DomainFreeze, http.StatusInternalServerError},
		FreezeConfirmFailed:    {"could not confirm freeze bit cleared", DomainFreeze, http.StatusInternalServerError},

		HiddenAreaPolicyViolation: {"hidden-area policy violated", DomainHiddenArea, http.StatusConflict},
		HPADetectFailed:           {"HPA detection failed", DomainHiddenArea, http.StatusInternalServerError},
		DCORemovalRefused:         {"DCO removal refused under RemoveTemp policy", DomainHiddenArea, http.StatusConflict},
		HiddenAreaRestoreFailed:   {"hidden-area restore failed", DomainHiddenArea, http.StatusInternalServerError},

		ThermalCritical:    {"drive temperature exceeded critical threshold", DomainIOEngine, http.StatusServiceUnavailable},
		AlignmentViolation: {"write not aligned to required boundary", DomainIOEngine, http.StatusInternalServerError},
		WriteFailed:        {"write command failed", DomainIOEngine, http.StatusInternalServerError},
		FlushFailed:        {"durability barrier flush failed", DomainIOEngine, http.StatusInternalServerError},
		QueueBackpressure:  {"submission queue backpressure", DomainIOEngine, http.StatusServiceUnavailable},
		BadSectorWrite:     {"uncorrectable write at LBA", DomainIOEngine, http.StatusInternalServerError},

		PatternGenerationFailed: {"pattern stream generation failed", DomainPattern, http.StatusInternalServerError},
		GutmannTableInvalid:     {"Gutmann pass table invalid", DomainPattern, http.StatusInternalServerError},
		HardwarePassUnsupported: {"hardware-delegated pass not supported by device", DomainPattern, http.StatusNotImplemented},

		CheckpointCorrupted:   {"checkpoint record corrupted", DomainCheckpoint, http.StatusInternalServerError},
		CheckpointWriteFailed: {"checkpoint commit failed", DomainCheckpoint, http.StatusInternalServerError},
		ResumeIncompatible:    {"checkpoint plan hash does not match requested plan", DomainCheckpoint, http.StatusConflict},
		CheckpointNotFound:    {"no checkpoint for drive fingerprint", DomainCheckpoint, http.StatusNotFound},

		BadSectorsExceedTolerance: {"bad-sector fraction exceeds configured tolerance", DomainRecovery, http.StatusUnprocessableEntity},
		CircuitOpen:               {"recovery circuit breaker open", DomainRecovery, http.StatusServiceUnavailable},
		FatalBusError:             {"fatal bus or protocol error", DomainRecovery, http.StatusInternalServerError},
		RecoveryExhausted:         {"recovery ladder exhausted", DomainRecovery, http.StatusInternalServerError},

		VerificationFailed:          {"verification did not meet plan minimum confidence", DomainVerify, http.StatusUnprocessableEntity},
		VerificationUnreliable:      {"verifier failed pre-wipe capability test", DomainVerify, http.StatusUnprocessableEntity},
		RecoveryOracleFoundData:     {"recovery oracle reported recoverable files", DomainVerify, http.StatusUnprocessableEntity},
		PreWipeCapabilityTestFailed: {"pre-wipe capability test failed to detect known data", DomainVerify, http.StatusUnprocessableEntity},

		SignatureUnavailable:               {"no signing key available", DomainCertificate, http.StatusInternalServerError},
		CertificateCanonicalizationFailed:  {"certificate canonicalization failed", DomainCertificate, http.StatusInternalServerError},
		ComplianceTagUnsatisfied:           {"compliance tag requirements not satisfied", DomainCertificate, http.StatusUnprocessableEntity},

		Interrupted: {"wipe interrupted, checkpoint saved", DomainOrchestrator, http.StatusAccepted},
		UserAborted: {"wipe aborted by user", DomainOrchestrator, http.StatusOK},
	})
}
