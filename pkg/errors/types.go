// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import "net/http"

// Domain represents the subsystem where the error originated.
type Domain string

const (
	DomainRNG         Domain = "RNG"
	DomainProbe       Domain = "PROBE"
	DomainFreeze      Domain = "FREEZE"
	DomainHiddenArea  Domain = "HIDDENAREA"
	DomainIOEngine    Domain = "IOENGINE"
	DomainPattern     Domain = "PATTERN"
	DomainCheckpoint  Domain = "CHECKPOINT"
	DomainRecovery    Domain = "RECOVERY"
	DomainVerify      Domain = "VERIFY"
	DomainCertificate Domain = "CERTIFICATE"
	DomainOrchestrator Domain = "ORCHESTRATOR"
	DomainConfig      Domain = "CONFIG"
	DomainCommand     Domain = "CMD"
)

// ErrorCode represents a unique error identifier within a Domain.
type ErrorCode int

// WipeError is the structured error type carried across every component:
// code/domain/message plus free-form metadata for drive fingerprint, pass
// index, and byte offset. Every terminal error in this system carries one.
type WipeError struct {
	Code       ErrorCode `json:"code"`
	Domain     Domain    `json:"domain"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// errorDef is the registered shape of one error code, populated via init()
// by each component's code-range file.
type errorDef struct {
	message    string
	domain     Domain
	httpStatus int
}

var errorDefinitions = map[ErrorCode]errorDef{}

// registerErrors merges a component's error code table into the global
// registry. Called from each component's init().
func registerErrors(defs map[ErrorCode]errorDef) {
	for code, def := range defs {
		errorDefinitions[code] = def
	}
}

func init() {
	registerErrors(map[ErrorCode]errorDef{
		ConfigInvalid:        {"invalid configuration", DomainConfig, http.StatusInternalServerError},
		ConfigLoadFailed:     {"failed to load configuration", DomainConfig, http.StatusInternalServerError},
		CommandExecution:     {"command execution failed", DomainCommand, http.StatusInternalServerError},
		CommandInvalidInput:  {"command rejected invalid input", DomainCommand, http.StatusBadRequest},
		PermissionDenied:     {"path not allowed for privileged access", DomainCommand, http.StatusForbidden},
		OperationFailed:      {"privileged file operation failed", DomainCommand, http.StatusInternalServerError},
	})
}

// Config, command, and privilege-boundary errors sit outside the
// per-component C1-C10 ranges (2670-2689, Orchestrator/CLI glue) since
// they are cross-cutting; 2690-2699 is reserved for them.
const (
	ConfigInvalid       ErrorCode = 2690 + iota // Invalid configuration value
	ConfigLoadFailed                            // Failed to load configuration file
	CommandExecution                            // External command invocation failed
	CommandInvalidInput                         // External command construction rejected
	PermissionDenied                            // Privileged operation attempted outside the allowed-path set
	OperationFailed                             // A privileged file operation failed
)
