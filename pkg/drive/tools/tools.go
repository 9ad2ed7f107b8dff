// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package tools wraps the external command-line tools the probe and I/O
// engine depend on (smartctl, lsblk, udevadm), one executor per tool.
package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/internal/command"
	"github.com/tinkershack/veriwipe/pkg/errors"
)

// Paths configures the external binaries this package shells out to. An
// empty path means "resolve with exec.LookPath at startup".
type Paths struct {
	SmartctlPath string
	LsblkPath    string
	UdevadmPath  string
	HdparmPath   string
	NVMePath     string
	SGUtilsPath  string
}

// ToolStatus is the availability result of one external tool.
type ToolStatus struct {
	Name      string
	Path      string
	Available bool
	Version   string
	Error     string
}

// Checker verifies that the required external tools are present and
// resolves their paths once at startup, caching the result.
type Checker struct {
	logger    logger.Logger
	executor  *command.CommandExecutor
	toolPaths map[string]string
	cache     map[string]*ToolStatus
	mu        sync.RWMutex
}

// NewChecker creates a tool availability checker seeded with configured
// paths.
func NewChecker(l logger.Logger, paths Paths) *Checker {
	tc := &Checker{
		logger:    l,
		executor:  command.NewCommandExecutor(false),
		toolPaths: make(map[string]string),
		cache:     make(map[string]*ToolStatus),
	}
	tc.executor.Timeout = 5 * time.Second

	tc.toolPaths["smartctl"] = paths.SmartctlPath
	tc.toolPaths["lsblk"] = paths.LsblkPath
	tc.toolPaths["udevadm"] = paths.UdevadmPath
	tc.toolPaths["hdparm"] = paths.HdparmPath
	tc.toolPaths["nvme"] = paths.NVMePath
	tc.toolPaths["sg_sanitize"] = paths.SGUtilsPath

	return tc
}

// CheckAll resolves and verifies every configured tool.
func (tc *Checker) CheckAll() map[string]*ToolStatus {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	results := make(map[string]*ToolStatus)
	for tool, path := range tc.toolPaths {
		status := tc.checkTool(tool, path)
		tc.cache[tool] = status
		results[tool] = status
	}
	return results
}

func (tc *Checker) checkTool(toolName, configuredPath string) *ToolStatus {
	status := &ToolStatus{Name: toolName, Path: configuredPath}

	if configuredPath != "" {
		if version, err := tc.getToolVersion(configuredPath, toolName); err == nil {
			status.Available = true
			status.Version = version
			return status
		}
	}

	path, err := exec.LookPath(toolName)
	if err != nil {
		status.Available = false
		status.Error = fmt.Sprintf("not found in PATH or configured location: %v", err)
		return status
	}

	version, err := tc.getToolVersion(path, toolName)
	if err != nil {
		status.Available = false
		status.Error = fmt.Sprintf("found but version check failed: %v", err)
		status.Path = path
		return status
	}

	status.Available = true
	status.Version = version
	status.Path = path
	return status
}

func (tc *Checker) getToolVersion(path, toolName string) (string, error) {
	ctx := context.Background()
	output, err := tc.executor.ExecuteWithCombinedOutput(ctx, path, "--version")
	if err != nil && len(output) == 0 {
		return "", err
	}
	return tc.parseVersion(string(output)), nil
}

func (tc *Checker) parseVersion(output string) string {
	lines := strings.Split(output, "\n")
	if len(lines) == 0 {
		return "unknown"
	}
	firstLine := strings.TrimSpace(lines[0])
	if len(firstLine) > 50 {
		return firstLine[:50] + "..."
	}
	return firstLine
}

// GetPath returns the resolved path to toolName, after CheckAll has run.
func (tc *Checker) GetPath(toolName string) (string, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	status, exists := tc.cache[toolName]
	if !exists || !status.Available {
		return "", errors.New(errors.DeviceUnavailable, "required tool not available").
			WithMetadata("tool", toolName)
	}
	return status.Path, nil
}

// ValidateRequired returns an error naming every tool in required that is
// unavailable.
func (tc *Checker) ValidateRequired(required []string) error {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	var missing []string
	for _, tool := range required {
		status, exists := tc.cache[tool]
		if !exists || !status.Available {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.DeviceUnavailable,
			fmt.Sprintf("required tools not available: %s", strings.Join(missing, ", "))).
			WithMetadata("missing_tools", strings.Join(missing, ", "))
	}
	return nil
}
