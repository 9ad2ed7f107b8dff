// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator wires C1-C10 together into the per-drive wipe
// lifecycle and the CLI-facing batch/health/checkpoint operations. It owns
// the Drive Descriptor and Wipe Progress Record for the lifetime of a wipe;
// every component below it holds, at most, a non-owning borrow.
package orchestrator

import (
	"context"
	"time"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/config"
	"github.com/tinkershack/veriwipe/internal/command"
	"github.com/tinkershack/veriwipe/internal/system/privilege"
	"github.com/tinkershack/veriwipe/pkg/certificate"
	"github.com/tinkershack/veriwipe/pkg/checkpoint"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/drive/tools"
	"github.com/tinkershack/veriwipe/pkg/errors"
	"github.com/tinkershack/veriwipe/pkg/freeze"
	"github.com/tinkershack/veriwipe/pkg/hiddenarea"
	"github.com/tinkershack/veriwipe/pkg/pattern"
	"github.com/tinkershack/veriwipe/pkg/rng"
	"github.com/tinkershack/veriwipe/pkg/verify"
)

// Orchestrator holds every long-lived component the wipe lifecycle drives.
// Per-drive handles (the DRBG is the one exception — makes it the
// only process-wide long-lived object) are constructed fresh for each
// Wipe/VerifyOnly call in wipe.go.
type Orchestrator struct {
	logger logger.Logger
	cfg    *config.Config

	files privilege.FileOperations

	toolChecker *tools.Checker
	smartctl    *tools.SmartctlExecutor
	lsblk       *tools.LsblkExecutor
	udevadm     *tools.UdevadmExecutor
	erase       *tools.EraseExecutor
	hdparmHPA   *tools.HDParmHPA
	linkCtl     *tools.LinkController
	prober      *drive.Prober

	drbg *rng.DRBG

	checkpointStore *checkpoint.Store
	pruneScheduler  *checkpoint.PruneScheduler

	signer *certificate.Signer
	issuer *certificate.Issuer
}

// New constructs every long-lived component from cfg. It resolves external
// tool paths once (failing fast if any required tool is missing), seeds the
// process-wide DRBG, loads the checkpoint store from disk, and loads the
// certificate signing key through the privileged file-operations path.
func New(ctx context.Context, cfg *config.Config) (*Orchestrator, error) {
	l, err := logger.NewTag(config.NewLoggerConfig(cfg), "orchestrator")
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigInvalid).WithMetadata("operation", "new_logger")
	}

	privCfg := privilege.DefaultConfig()
	executor := command.NewCommandExecutor(cfg.Tools.UseSudo)
	files := privilege.NewOperationsFactory(l, executor, privCfg).Create()

	toolChecker := tools.NewChecker(l, tools.Paths{
		SmartctlPath: cfg.Tools.SmartctlPath,
		LsblkPath:    cfg.Tools.LsblkPath,
		UdevadmPath:  cfg.Tools.UdevadmPath,
		HdparmPath:   cfg.Tools.HdparmPath,
		NVMePath:     cfg.Tools.NVMePath,
		SGUtilsPath:  cfg.Tools.SGUtilsPath,
	})
	statuses := toolChecker.CheckAll()
	if err := toolChecker.ValidateRequired([]string{"smartctl", "lsblk", "udevadm"}); err != nil {
		return nil, err
	}

	smartctlPath := resolvedPath(statuses, "smartctl", cfg.Tools.SmartctlPath)
	lsblkPath := resolvedPath(statuses, "lsblk", cfg.Tools.LsblkPath)
	udevadmPath := resolvedPath(statuses, "udevadm", cfg.Tools.UdevadmPath)
	hdparmPath := resolvedPath(statuses, "hdparm", cfg.Tools.HdparmPath)
	nvmePath := resolvedPath(statuses, "nvme", cfg.Tools.NVMePath)
	sgPath := resolvedPath(statuses, "sg_sanitize", cfg.Tools.SGUtilsPath)

	smartctl := tools.NewSmartctlExecutor(l, smartctlPath, cfg.Tools.UseSudo)
	lsblk := tools.NewLsblkExecutor(l, lsblkPath, cfg.Tools.UseSudo)
	udevadm := tools.NewUdevadmExecutor(l, udevadmPath, cfg.Tools.UseSudo)
	erase := tools.NewEraseExecutor(l, hdparmPath, nvmePath, sgPath, cfg.Tools.UseSudo)
	hdparmHPA := tools.NewHDParmHPA(l, hdparmPath, cfg.Tools.UseSudo)
	linkCtl := tools.NewLinkController(l, files, udevadm)

	prober := drive.NewProber(l, smartctl, lsblk)

	drbg, err := rng.New(l, rng.Config{
		ByteBudget:         cfg.RNG.ReseedIntervalBytes,
		RepetitionWindow:   cfg.RNG.RepetitionCutoff,
		AdaptiveWindowSize: rng.DefaultConfig().AdaptiveWindowSize,
		AdaptiveMaxCount:   rng.DefaultConfig().AdaptiveMaxCount,
	})
	if err != nil {
		return nil, err
	}

	store := checkpoint.NewStore(l, cfg.Checkpoint.StorePath)
	if err := store.Load(); err != nil {
		l.Warn("checkpoint store failed to load, starting empty", "error", err)
	}

	pruneOlderThan, err := time.ParseDuration(cfg.Checkpoint.PruneOlderThan)
	if err != nil {
		pruneOlderThan = 720 * time.Hour
	}
	pruneInterval := cfg.Checkpoint.PruneInterval
	if pruneInterval == "" {
		pruneInterval = "24h"
	}
	scheduler, err := checkpoint.NewPruneScheduler(l, store, pruneCron(pruneInterval), pruneOlderThan)
	if err != nil {
		l.Warn("prune scheduler could not be constructed, checkpoint pruning disabled", "error", err)
	}

	var signer *certificate.Signer
	var issuer *certificate.Issuer
	if signer, err = certificate.NewSigner(ctx, l, files, cfg.Certificate.SigningKeyPath); err != nil {
		l.Warn("signing key unavailable, certificate issuance disabled until one is provisioned", "error", err)
	} else {
		issuer = certificate.NewIssuer(signer)
	}

	o := &Orchestrator{
		logger:          l,
		cfg:             cfg,
		files:           files,
		toolChecker:     toolChecker,
		smartctl:        smartctl,
		lsblk:           lsblk,
		udevadm:         udevadm,
		erase:           erase,
		hdparmHPA:       hdparmHPA,
		linkCtl:         linkCtl,
		prober:          prober,
		drbg:            drbg,
		checkpointStore: store,
		pruneScheduler:  scheduler,
		signer:          signer,
		issuer:          issuer,
	}

	if scheduler != nil {
		scheduler.Start()
	}

	return o, nil
}

// Close releases the process-wide DRBG and stops the prune scheduler.
func (o *Orchestrator) Close() {
	if o.pruneScheduler != nil {
		if err := o.pruneScheduler.Stop(); err != nil {
			o.logger.Warn("prune scheduler shutdown failed", "error", err)
		}
	}
	o.drbg.Close()
}

func resolvedPath(statuses map[string]*tools.ToolStatus, name, configured string) string {
	if configured != "" {
		return configured
	}
	if st, ok := statuses[name]; ok && st.Available {
		return st.Path
	}
	return name
}

// pruneCron turns a Go duration string into the every-interval cron
// expression gocron expects; the scheduler only ever needs "run roughly
// this often", not wall-clock alignment.
func pruneCron(interval string) string {
	d, err := time.ParseDuration(interval)
	if err != nil || d <= 0 {
		return "@every 24h"
	}
	return "@every " + d.String()
}

// freezeBinders binds the unfreeze ladder's lower-severity rungs to
// LinkController, the only rungs this process can execute without an
// opaque kernel-module backend or platform ACPI control it does not own;
// the kernel module itself is treated as an external collaborator.
func (o *Orchestrator) freezeBinders() map[string]freeze.ApplyFunc {
	return map[string]freeze.ApplyFunc{
		"link_layer_reset": func(ctx context.Context, d *drive.Descriptor) error {
			return o.linkCtl.LinkLayerReset(ctx, d.DevicePath)
		},
		"pcie_hot_reset": func(ctx context.Context, d *drive.Descriptor) error {
			return o.linkCtl.PCIeHotReset(ctx, d.DevicePath)
		},
	}
}

func (o *Orchestrator) freezeIdentify(ctx context.Context, d *drive.Descriptor) (bool, error) {
	return o.hdparmHPA.IsFrozen(ctx, d)
}

func (o *Orchestrator) newFreezeManager() *freeze.Manager {
	return freeze.NewManager(o.logger, o.freezeIdentify, o.freezeBinders())
}

func (o *Orchestrator) newHiddenAreaManager() *hiddenarea.Manager {
	return hiddenarea.NewManager(o.logger, o.hdparmHPA, o.hdparmHPA)
}

func (o *Orchestrator) newGenerator() *pattern.Generator {
	return pattern.NewGenerator(o.drbg)
}

func (o *Orchestrator) newVerifier(reader verify.Reader, hiddenReader verify.HiddenAreaReader, oracle verify.RecoveryOracle) *verify.Verifier {
	return verify.New(o.logger, verify.Config{
		SamplePercent: o.cfg.Verify.SamplePercent,
		RegionLength:  uint32(o.cfg.Verify.RegionLengthBytes),
	}, reader, hiddenReader, oracle)
}
