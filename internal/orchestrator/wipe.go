// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"time"

	"github.com/tinkershack/veriwipe/pkg/certificate"
	"github.com/tinkershack/veriwipe/pkg/checkpoint"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/drive/tools"
	"github.com/tinkershack/veriwipe/pkg/errors"
	"github.com/tinkershack/veriwipe/pkg/hiddenarea"
	"github.com/tinkershack/veriwipe/pkg/ioengine"
	"github.com/tinkershack/veriwipe/pkg/pattern"
	"github.com/tinkershack/veriwipe/pkg/recovery"
	"github.com/tinkershack/veriwipe/pkg/verify"
)

// WipeOptions collects one drive's wipe request.
type WipeOptions struct {
	DevicePath        string
	Algorithm         pattern.Algorithm
	HardwareMethod    pattern.HardwareMethod
	HiddenAreaPolicy  hiddenarea.Policy
	VerificationLevel pattern.VerificationLevel
	MinConfidence     int
	OperatorID        string
	OperatorOrg       string
	PSID              string // SED PSID revert credential; Wipe does not read it (SEDRevert takes the PSID as an argument)
}

// WipeResult is everything the CLI layer needs to render and exit-code a
// completed or interrupted wipe.
type WipeResult struct {
	Drive       *drive.Descriptor
	Plan        *pattern.Plan
	Report      *verify.Report
	Certificate *certificate.Certificate
	Interrupted bool
}

// testMarker is the deliberately-known pattern the pre-wipe capability test
// writes to LBA 0 before any destructive pass: "verifier is run
// against a small region deliberately containing known data."
var testMarker = []byte("VERIWIPE-PRE-WIPE-CAPABILITY-TEST-MARKER-0123456789")

// Wipe drives one device through probe, freeze, hidden-area, pattern
// execution, verification, and certificate issuance. Every exit path —
// success, refusal, or context cancellation — runs the hidden-area cleanup
// barrier before returning.
func (o *Orchestrator) Wipe(ctx context.Context, opts WipeOptions) (*WipeResult, error) {
	desc, _, err := o.prober.Probe(ctx, opts.DevicePath)
	if err != nil {
		return nil, err
	}

	fm := o.newFreezeManager()
	if err := fm.Ensure(ctx, desc); err != nil {
		return nil, err
	}

	ham := o.newHiddenAreaManager()
	preWipeHidden, err := ham.Prepare(ctx, desc, opts.HiddenAreaPolicy)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ham.Cleanup(ctx, desc); cerr != nil {
			o.logger.Error("hidden-area cleanup barrier failed", "device_path", desc.DevicePath, "error", cerr)
		}
	}()

	plan, err := pattern.BuildPlan(opts.Algorithm, opts.HardwareMethod, desc, opts.VerificationLevel, opts.MinConfidence)
	if err != nil {
		return nil, err
	}

	fp := desc.Fingerprint()
	rec, resumeErr := o.checkpointStore.Resume(fp, plan.Hash())
	if resumeErr != nil {
		rec = checkpoint.NewRecord(fp, plan.Hash(), desc.EffectiveMaxLBA()*uint64(desc.LogicalBlockSize))
		o.logger.Info("starting fresh wipe progress record", "device_path", desc.DevicePath, "reason", resumeErr)
	} else {
		o.logger.Info("resuming wipe from checkpoint", "device_path", desc.DevicePath, "pass", rec.CurrentPass, "bytes_confirmed", rec.BytesConfirmedDurable)
	}

	device, err := ioengine.OpenDirect(desc.DevicePath)
	if err != nil {
		return nil, err
	}
	defer device.Close()

	started := time.Now()

	oracle := verify.RecoveryOracle(nil)
	if plan.VerificationLevel == verify.L4Forensic {
		oracle = verify.NewCommandOracle(o.logger, o.cfg.Verify.OracleBinary, nil, o.cfg.Verify.OracleUseSudo)
	}
	hiddenReader := tools.NewHiddenAreaReader(o.logger, device, o.smartctl)
	verifier := o.newVerifier(device, hiddenReader, oracle)

	// The marker overwrites LBA 0, so the test runs only ahead of a fresh
	// wipe's first pass, never on resume.
	freshStart := rec.CurrentPass == 0 && rec.BytesConfirmedDurable == 0
	if freshStart && (plan.VerificationLevel == verify.L3Full || plan.VerificationLevel == verify.L4Forensic) {
		if err := o.preWipeCapabilityTest(ctx, verifier, device, desc); err != nil {
			return nil, err
		}
	}

	if plan.Algorithm == pattern.AlgorithmHardwareDelegated {
		if err := o.runHardwareDelegatedPass(ctx, desc, plan); err != nil {
			return o.interruptedResult(ctx, desc, plan, err)
		}
	} else {
		if err := o.runSoftwarePasses(ctx, desc, device, plan, rec); err != nil {
			return o.interruptedResult(ctx, desc, plan, err)
		}
	}

	report, err := verifier.Run(ctx, desc, plan, desc.EffectiveMaxLBA(), desc.LogicalBlockSize)
	if err != nil {
		return nil, err
	}

	if err := o.checkpointStore.Clear(fp); err != nil {
		o.logger.Warn("checkpoint clear after completed wipe failed", "device_path", desc.DevicePath, "error", err)
	}

	result := &WipeResult{Drive: desc, Plan: plan, Report: report}

	if !report.Verdict {
		return result, errors.New(errors.VerificationFailed, "wipe completed but verification did not meet plan minimum confidence").
			WithMetadata("device_path", desc.DevicePath).WithMetadata("confidence", itoa(report.Confidence))
	}

	if o.issuer != nil {
		recoverySummary := "not_run"
		if report.RecoveryOracle.Invoked {
			if report.RecoveryOracle.FilesRecovered == 0 {
				recoverySummary = "clean"
			} else {
				recoverySummary = "files_recovered:" + itoa(report.RecoveryOracle.FilesRecovered)
			}
		}
		cert, err := o.issuer.Issue(certificate.IssueInput{
			Drive:             desc,
			Plan:              plan,
			HiddenAreaPolicy:  string(opts.HiddenAreaPolicy),
			PreWipeHiddenArea: hiddenAreaSummary(preWipeHidden),
			Started:           started,
			Completed:         time.Now(),
			Report:            report,
			RecoverySummary:   recoverySummary,
			OperatorID:        opts.OperatorID,
			OperatorOrg:       opts.OperatorOrg,
		})
		if err != nil {
			return result, err
		}
		result.Certificate = cert
	}

	return result, nil
}

// VerifyResult is everything the CLI layer needs to render and exit-code a
// standalone verification run with no accompanying wipe.
type VerifyResult struct {
	Drive  *drive.Descriptor
	Report *verify.Report
}

// VerifyOnly inspects devicePath at the requested level without performing
// any wipe pass, for the `verify` CLI subcommand: a drive wiped earlier (by
// this tool or another) can be re-checked on its own. Since no plan record
// is available, the final pass is treated as unknown content rather than a
// specific fixed byte, so scoring falls back to entropy/statistical
// evidence instead of exact-match detection.
func (o *Orchestrator) VerifyOnly(ctx context.Context, devicePath string, level pattern.VerificationLevel, minConfidence int) (*VerifyResult, error) {
	desc, _, err := o.prober.Probe(ctx, devicePath)
	if err != nil {
		return nil, err
	}

	device, err := ioengine.OpenDirect(devicePath)
	if err != nil {
		return nil, err
	}
	defer device.Close()

	plan := &pattern.Plan{
		Algorithm:         pattern.AlgorithmRandom,
		Passes:            []pattern.PassContent{{Index: 1, Fixed: nil, VerificationRequired: true}},
		VerificationLevel: level,
		MinConfidence:     minConfidence,
	}

	oracle := verify.RecoveryOracle(nil)
	if level == verify.L4Forensic {
		oracle = verify.NewCommandOracle(o.logger, o.cfg.Verify.OracleBinary, nil, o.cfg.Verify.OracleUseSudo)
	}
	hiddenReader := tools.NewHiddenAreaReader(o.logger, device, o.smartctl)
	verifier := o.newVerifier(device, hiddenReader, oracle)

	report, err := verifier.Run(ctx, desc, plan, desc.EffectiveMaxLBA(), desc.LogicalBlockSize)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Drive: desc, Report: report}
	if !report.Verdict {
		return result, errors.New(errors.VerificationFailed, "verification did not meet the requested minimum confidence").
			WithMetadata("device_path", devicePath).WithMetadata("confidence", itoa(report.Confidence))
	}
	return result, nil
}

// interruptedResult distinguishes a context cancellation mid-pass — the
// checkpoint store already holds whatever progress MaybeCommit last
// flushed, so the caller can resume later — from a genuine pass failure.
func (o *Orchestrator) interruptedResult(ctx context.Context, desc *drive.Descriptor, plan *pattern.Plan, passErr error) (*WipeResult, error) {
	if ctx.Err() == nil {
		return nil, passErr
	}
	return &WipeResult{Drive: desc, Plan: plan, Interrupted: true},
		errors.New(errors.Interrupted, "wipe interrupted, checkpoint saved").
			WithMetadata("device_path", desc.DevicePath)
}

func (o *Orchestrator) preWipeCapabilityTest(ctx context.Context, verifier *verify.Verifier, device *ioengine.DirectDevice, desc *drive.Descriptor) error {
	if _, err := device.WriteAt(ctx, testMarker, 0); err != nil {
		return errors.Wrap(err, errors.PreWipeCapabilityTestFailed).WithMetadata("device_path", desc.DevicePath)
	}
	if err := device.Flush(ctx); err != nil {
		return errors.Wrap(err, errors.PreWipeCapabilityTestFailed).WithMetadata("device_path", desc.DevicePath)
	}
	return verifier.PreWipeCapabilityTest(ctx, desc, 0, testMarker)
}

// runHardwareDelegatedPass dispatches to the firmware command matching
// plan.HardwareMethod. No pattern chunking applies; the drive's own
// controller performs the erase.
func (o *Orchestrator) runHardwareDelegatedPass(ctx context.Context, desc *drive.Descriptor, plan *pattern.Plan) error {
	switch plan.HardwareMethod {
	case pattern.HardwareSecureErase:
		return o.erase.SecureEraseATA(ctx, desc.DevicePath, false)
	case pattern.HardwareEnhancedSecureErase:
		return o.erase.SecureEraseATA(ctx, desc.DevicePath, true)
	case pattern.HardwareNVMeFormat:
		return o.erase.NVMeFormat(ctx, desc.DevicePath)
	case pattern.HardwareNVMeSanitize:
		return o.erase.NVMeSanitize(ctx, desc.DevicePath)
	case pattern.HardwareCryptoErase:
		return o.erase.CryptoEraseSED(ctx, desc.DevicePath)
	case pattern.HardwareTRIMAllLBAs:
		return o.erase.TrimAllLBAs(ctx, desc.DevicePath)
	default:
		return errors.New(errors.HardwarePassUnsupported, "unrecognized hardware-delegated method").
			WithMetadata("method", string(plan.HardwareMethod))
	}
}

// runSoftwarePasses executes every software pass of plan against device,
// resuming mid-pass from rec's checkpointed byte offset and committing
// progress at a ~1%-amortized cadence.
func (o *Orchestrator) runSoftwarePasses(ctx context.Context, desc *drive.Descriptor, device *ioengine.DirectDevice, plan *pattern.Plan, rec *checkpoint.Record) error {
	thermal := tools.NewSmartThermal(o.logger, o.smartctl, desc.DevicePath)
	engine := ioengine.New(o.logger, device, thermal, desc)
	gen := o.newGenerator()

	selfHealer := tools.NewUdevSelfHealer(o.logger, o.udevadm)
	coord := recovery.New(o.logger, recovery.DefaultConfig(), selfHealer, desc.DevicePath)

	totalBytes := rec.TotalBytesPerPass
	chunkBytes := chunkSizeFor(uint64(o.cfg.IOEngine.BufferSizeBytes), desc.LogicalBlockSize)
	batchBytes := batchSizeFor(totalBytes, chunkBytes, desc.LogicalBlockSize)

	for _, pc := range plan.Passes {
		if pc.Index <= rec.CurrentPass {
			continue
		}

		startByte := uint64(0)
		if pc.Index == rec.CurrentPass+1 {
			startByte = rec.BytesConfirmedDurable
		}

		for off := startByte; off < totalBytes; off += batchBytes {
			end := off + batchBytes
			if end > totalBytes {
				end = totalBytes
			}

			chunks, err := buildChunkBatch(gen, pc, desc.LogicalBlockSize, off, end, chunkBytes)
			if err != nil {
				return err
			}

			batchEnd := end
			op := func(opCtx context.Context) error {
				return engine.WritePass(opCtx, chunks, desc.LogicalBlockSize, desc.PhysicalBlockSize, func(bytesWritten uint64) {
					rec.Advance(batchEnd)
				})
			}

			if err := coord.Attempt(ctx, op, classifyIOError, rec, chunks[0].LBA, uint32(batchEnd-off)); err != nil {
				return err
			}

			if err := o.checkpointStore.MaybeCommit(rec); err != nil {
				o.logger.Warn("checkpoint commit failed", "device_path", desc.DevicePath, "error", err)
			}
		}

		if frac := rec.BadByteFraction(); frac > o.cfg.Recovery.BadSectorTolerancePercent/100 {
			return errors.New(errors.BadSectorsExceedTolerance, "bad-sector fraction exceeds configured tolerance").
				WithMetadata("device_path", desc.DevicePath).
				WithMetadata("pass", itoa(pc.Index)).
				WithMetadata("bad_fraction_permille", itoa(int(frac*1000)))
		}

		rec.AdvancePass()
		if err := o.checkpointStore.Commit(rec); err != nil {
			o.logger.Warn("pass-boundary checkpoint commit failed", "device_path", desc.DevicePath, "error", err)
		}
	}

	return nil
}

// chunkSizeFor rounds the configured I/O buffer size down to a multiple of
// logicalBlockSize, never below one block.
func chunkSizeFor(configured uint64, logicalBlockSize uint32) uint64 {
	if logicalBlockSize == 0 {
		logicalBlockSize = 512
	}
	block := uint64(logicalBlockSize)
	if configured < block {
		return block
	}
	return configured - (configured % block)
}

// batchSizeFor bounds a checkpoint-commit batch to roughly 1% of the pass
// total so commit overhead is amortized, never smaller than one chunk. A
// pass shorter than one chunk is therefore a single batch.
func batchSizeFor(totalBytes, chunkBytes uint64, logicalBlockSize uint32) uint64 {
	if totalBytes == 0 {
		return chunkBytes
	}
	onePercent := totalBytes / 100
	if onePercent < chunkBytes {
		return chunkBytes
	}
	return chunkSizeFor(onePercent, logicalBlockSize)
}

// buildChunkBatch generates the pass content for [startByte, endByte) as a
// sequence of chunkBytes-sized, LBA-aligned chunks.
func buildChunkBatch(gen *pattern.Generator, pc pattern.PassContent, logicalBlockSize uint32, startByte, endByte, chunkBytes uint64) ([]ioengine.Chunk, error) {
	if logicalBlockSize == 0 {
		logicalBlockSize = 512
	}
	var chunks []ioengine.Chunk
	for off := startByte; off < endByte; off += chunkBytes {
		length := chunkBytes
		if off+length > endByte {
			length = endByte - off
		}
		buf := make([]byte, length)
		if err := gen.Fill(pc, buf); err != nil {
			return nil, err
		}
		chunks = append(chunks, ioengine.Chunk{LBA: off / uint64(logicalBlockSize), Content: buf})
	}
	return chunks, nil
}

func hiddenAreaSummary(s drive.HiddenAreaState) string {
	if s.HPAPresent == drive.TriYes {
		return "hpa_present"
	}
	if s.HPAPresent == drive.TriUnknown {
		return "unknown"
	}
	return "none"
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var b [20]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
