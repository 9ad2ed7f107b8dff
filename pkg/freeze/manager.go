// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package freeze

import (
	"context"
	"sync"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/pkg/drive"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// transitions is the Freeze Manager's state machine:
// Unknown -> {Frozen, Unfrozen}; Frozen -> {Unfrozen, PermanentlyFrozen};
// Unfrozen is absorbing for the session.
var transitions = map[drive.FreezeState][]drive.FreezeState{
	drive.FreezeUnknown:           {drive.FreezeFrozen, drive.FreezeUnfrozen},
	drive.FreezeFrozen:            {drive.FreezeUnfrozen, drive.FreezePermanentlyFrozen},
	drive.FreezeUnfrozen:          {},
	drive.FreezePermanentlyFrozen: {},
}

func canTransition(from, to drive.FreezeState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IdentifyFunc re-runs the ATA/NVMe IDENTIFY command and reports whether
// the device currently reports itself frozen.
type IdentifyFunc func(ctx context.Context, d *drive.Descriptor) (frozen bool, err error)

// Manager drives a single drive's freeze state through the ladder of
// unfreeze strategies until it reaches Unfrozen or PermanentlyFrozen.
// ApplyFunc is a ladder strategy's actual execution, bound by name since
// DefaultLadder's strategies otherwise carry a nil Apply, leaving
// the hardware backend to the caller.
type ApplyFunc func(ctx context.Context, d *drive.Descriptor) error

type Manager struct {
	logger   logger.Logger
	identify IdentifyFunc
	binders  map[string]ApplyFunc

	mu    sync.Mutex
	state map[string]drive.FreezeState // keyed by drive fingerprint
}

// NewManager builds a Manager. identify is called after each strategy
// attempt to confirm the freeze bit actually cleared — the manager never
// trusts a strategy's self-reported success. binders supplies
// the real hardware action for each named ladder rung the caller can
// actually execute; a rung with no binder is skipped (treated as
// inapplicable) rather than attempted as a no-op.
func NewManager(l logger.Logger, identify IdentifyFunc, binders map[string]ApplyFunc) *Manager {
	return &Manager{logger: l, identify: identify, binders: binders, state: make(map[string]drive.FreezeState)}
}

func (m *Manager) stateFor(fp string) drive.FreezeState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.state[fp]; ok {
		return s
	}
	return drive.FreezeUnknown
}

func (m *Manager) setState(fp string, s drive.FreezeState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[fp] = s
}

// Ensure drives d to Unfrozen, running the unfreeze ladder if it is
// currently Frozen. Returns PermanentlyFrozen as an error once every
// applicable strategy has been exhausted without the IDENTIFY confirming
// the freeze bit cleared.
func (m *Manager) Ensure(ctx context.Context, d *drive.Descriptor) error {
	fp := d.Fingerprint()

	frozen, err := m.identify(ctx, d)
	if err != nil {
		return errors.Wrap(err, errors.FreezeConfirmFailed).WithMetadata("device_path", d.DevicePath)
	}

	if !frozen {
		m.transition(fp, drive.FreezeUnfrozen)
		d.Freeze = drive.FreezeUnfrozen
		return nil
	}

	m.transition(fp, drive.FreezeFrozen)
	d.Freeze = drive.FreezeFrozen

	ladder := selectLadder(d.Protocol)
	for _, strat := range ladder {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		apply := strat.Apply
		if apply == nil {
			apply = m.binders[strat.Name]
		}
		if apply == nil {
			m.logger.Debug("no binder registered for unfreeze strategy, skipping", "strategy", strat.Name)
			continue
		}

		m.logger.Info("attempting unfreeze strategy", "drive", fp, "strategy", strat.Name, "severity", strat.Severity)
		if applyErr := apply(ctx, d); applyErr != nil {
			m.logger.Warn("unfreeze strategy failed to execute", "strategy", strat.Name, "error", applyErr)
			continue
		}

		stillFrozen, identErr := m.identify(ctx, d)
		if identErr != nil {
			m.logger.Warn("IDENTIFY confirmation failed after unfreeze attempt", "strategy", strat.Name, "error", identErr)
			continue
		}
		if !stillFrozen {
			m.transition(fp, drive.FreezeUnfrozen)
			d.Freeze = drive.FreezeUnfrozen
			return nil
		}
	}

	m.transition(fp, drive.FreezePermanentlyFrozen)
	d.Freeze = drive.FreezePermanentlyFrozen
	return errors.New(errors.PermanentlyFrozen, "no applicable unfreeze strategy cleared the freeze bit").
		WithMetadata("device_path", d.DevicePath).
		WithMetadata("protocol", string(d.Protocol))
}

func (m *Manager) transition(fp string, to drive.FreezeState) {
	from := m.stateFor(fp)
	if from == to {
		return
	}
	if !canTransition(from, to) {
		m.logger.Warn("freeze state transition rejected", "drive", fp, "from", from, "to", to)
		return
	}
	m.setState(fp, to)
}
