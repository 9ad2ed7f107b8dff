// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"context"
	"regexp"
	"strconv"

	"github.com/kballard/go-shellquote"
	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/internal/command"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// recoveredFilesPattern matches the black-box oracle's "files recovered: N"
// contract, tolerating surrounding text from whichever
// PhotoRec/TestDisk wrapper script is configured.
var recoveredFilesPattern = regexp.MustCompile(`files recovered:\s*(\d+)`)

// CommandOracle invokes an external recovery-simulation binary (PhotoRec,
// TestDisk, or a site-specific wrapper script around either) as an opaque
// black-box oracle: this package never reimplements file-carving logic,
// only parses the oracle's reported file count.
type CommandOracle struct {
	logger   logger.Logger
	executor *command.CommandExecutor
	binary   string
	extraArgs []string
}

// NewCommandOracle builds a CommandOracle invoking binary with extraArgs
// appended after the device path. useSudo gates execution the same way
// smartctl/lsblk invocations do, since recovery-simulation tools need raw
// device access too.
func NewCommandOracle(l logger.Logger, binary string, extraArgs []string, useSudo bool) *CommandOracle {
	return &CommandOracle{logger: l, executor: command.NewCommandExecutor(useSudo), binary: binary, extraArgs: extraArgs}
}

// Scan runs the configured oracle binary against devicePath and parses its
// reported recovered-file count.
func (o *CommandOracle) Scan(ctx context.Context, devicePath string) (int, error) {
	args := append(append([]string{}, o.extraArgs...), devicePath)

	cmdLine := shellquote.Join(append([]string{o.binary}, args...)...)
	o.logger.Info("invoking recovery oracle", "command", cmdLine)

	out, err := o.executor.ExecuteWithCombinedOutput(ctx, o.binary, args...)
	if err != nil {
		return 0, errors.Wrap(err, errors.VerificationFailed).
			WithMetadata("operation", "recovery_oracle").
			WithMetadata("command", cmdLine)
	}

	n, err := parseRecoveredCount(out)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// parseRecoveredCount extracts the "files recovered: N" count from an
// oracle binary's combined output, split out from Scan so the parsing rule
// is testable without invoking an external process.
func parseRecoveredCount(out []byte) (int, error) {
	m := recoveredFilesPattern.FindSubmatch(out)
	if m == nil {
		return 0, errors.New(errors.VerificationUnreliable, "recovery oracle output did not report a recovered-file count")
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, errors.Wrap(err, errors.VerificationUnreliable).WithMetadata("operation", "parse_oracle_output")
	}
	return n, nil
}
