// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package cmdutil holds the bring-up and exit-code logic every
// device-touching CLI subcommand shares.
package cmdutil

import (
	"context"
	"errors"

	"github.com/tinkershack/veriwipe/config"
	"github.com/tinkershack/veriwipe/internal/constants"
	"github.com/tinkershack/veriwipe/internal/orchestrator"
	wipeerrors "github.com/tinkershack/veriwipe/pkg/errors"
)

// NewOrchestrator loads the active configuration and brings up every
// long-lived wipe-engine component. Callers must defer Close() on the
// returned Orchestrator.
func NewOrchestrator(ctx context.Context, configPath string) (*orchestrator.Orchestrator, error) {
	cfg := config.LoadConfig(configPath)
	return orchestrator.New(ctx, cfg)
}

// ExitCodeFor maps a returned error to the process exit code the CLI
// contract promises, by error code where one is attached and by a handful
// of sentinel cases otherwise.
func ExitCodeFor(err error) int {
	if err == nil {
		return constants.ExitSuccess
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return constants.ExitInterruptedCheckpoint
	}

	code, ok := wipeerrors.GetCode(err)
	if !ok {
		return constants.ExitFatal
	}

	switch code {
	case wipeerrors.Interrupted:
		return constants.ExitInterruptedCheckpoint

	case wipeerrors.ConfigInvalid, wipeerrors.ConfigLoadFailed, wipeerrors.CommandInvalidInput,
		wipeerrors.PermissionDenied, wipeerrors.UserAborted, wipeerrors.CheckpointNotFound,
		wipeerrors.ResumeIncompatible:
		return constants.ExitUserError

	case wipeerrors.VerificationFailed, wipeerrors.VerificationUnreliable,
		wipeerrors.RecoveryOracleFoundData, wipeerrors.PreWipeCapabilityTestFailed:
		return constants.ExitVerificationFailed

	case wipeerrors.DeviceUnavailable, wipeerrors.ProbeFailed, wipeerrors.IdentifyFailed,
		wipeerrors.CapabilityUnknown, wipeerrors.ClassificationAmbiguous,
		wipeerrors.Frozen, wipeerrors.PermanentlyFrozen, wipeerrors.UnfreezeStrategyFailed,
		wipeerrors.FreezeConfirmFailed,
		wipeerrors.HiddenAreaPolicyViolation, wipeerrors.HPADetectFailed,
		wipeerrors.DCORemovalRefused, wipeerrors.HiddenAreaRestoreFailed,
		wipeerrors.ThermalCritical, wipeerrors.AlignmentViolation, wipeerrors.WriteFailed,
		wipeerrors.FlushFailed, wipeerrors.QueueBackpressure, wipeerrors.BadSectorWrite,
		wipeerrors.HardwarePassUnsupported,
		wipeerrors.BadSectorsExceedTolerance, wipeerrors.CircuitOpen, wipeerrors.FatalBusError,
		wipeerrors.RecoveryExhausted:
		return constants.ExitHardwareError

	default:
		return constants.ExitFatal
	}
}
