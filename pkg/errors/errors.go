/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

func (e *WipeError) Error() string {
	// Metadata is left out of Error() on purpose: it's for structured
	// consumption (certificates, logs), not for a one-line message.
	msg := fmt.Sprintf("[%s-%d] %s", e.Domain, e.Code, e.Message)
	if e.Details != "" {
		msg += " - " + e.Details
	}
	if e.Metadata != nil {
		if stderr, ok := e.Metadata["stderr"]; ok && stderr != "" {
			msg += "\nCommand output: " + stderr
		}
	}
	return msg
}

// WithMetadata attaches structured context — drive fingerprint, pass index,
// byte offset, LBA range — to an error. Every terminal error surfaced to a
// caller is expected to carry at least fingerprint/pass/offset.
func (e *WipeError) WithMetadata(key, value string) *WipeError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// MarshalJSON customizes JSON serialization to include a timestamp.
func (e *WipeError) MarshalJSON() ([]byte, error) {
	type Alias WipeError
	return json.Marshal(&struct {
		*Alias
		Timestamp string `json:"timestamp"`
	}{
		Alias:     (*Alias)(e),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// New creates a WipeError from a registered code.
func New(code ErrorCode, details string) *WipeError {
	def, ok := errorDefinitions[code]
	if !ok {
		return &WipeError{
			Code:       code,
			Domain:     "UNKNOWN",
			Message:    "unknown error",
			Details:    details,
			HTTPStatus: http.StatusInternalServerError,
		}
	}

	return &WipeError{
		Code:       code,
		Domain:     def.domain,
		Message:    def.message,
		Details:    details,
		HTTPStatus: def.httpStatus,
	}
}

// Is implements the errors.Is interface, matching by code within domain.
func (e *WipeError) Is(target error) bool {
	if t, ok := target.(*WipeError); ok {
		return e.Code == t.Code && e.Domain == t.Domain
	}
	return false
}

// Is checks whether err matches the sentinel target by code and domain.
func Is(err, target error) bool {
	re, ok := err.(*WipeError)
	if !ok {
		return false
	}
	if t, ok := target.(*WipeError); ok {
		return re.Code == t.Code && re.Domain == t.Domain
	}
	return false
}

// Wrap re-codes an existing error, preserving its metadata and recording
// the original code/domain/message under wrapped_* keys.
func Wrap(err error, code ErrorCode) *WipeError {
	if re, ok := err.(*WipeError); ok {
		newErr := New(code, re.Details)
		if re.Metadata != nil {
			for k, v := range re.Metadata {
				newErr.WithMetadata(k, v)
			}
		}
		newErr.WithMetadata("wrapped_code", fmt.Sprintf("%d", re.Code))
		newErr.WithMetadata("wrapped_domain", string(re.Domain))
		newErr.WithMetadata("wrapped_message", re.Message)
		return newErr
	}
	return New(code, err.Error())
}

func (e *WipeError) Unwrap() error {
	if e.Metadata != nil {
		if originalErr, ok := e.Metadata["wrapped_error"]; ok {
			return fmt.Errorf("%s", originalErr)
		}
	}
	return nil
}

// IsWipeError reports whether err is (or wraps) a WipeError.
func IsWipeError(err error) bool {
	var we *WipeError
	return errors.As(err, &we)
}

// NewCommandError builds a WipeError for a failed external command
// invocation (smartctl, nvme-cli, hdparm, the recovery-oracle binary).
func NewCommandError(cmd string, exitCode int, stderr string) *WipeError {
	return New(CommandExecution, "command execution failed").
		WithMetadata("command", cmd).
		WithMetadata("exit_code", fmt.Sprintf("%d", exitCode)).
		WithMetadata("stderr", stderr)
}

// GetCode extracts the ErrorCode from err if it is, or wraps, a WipeError.
func GetCode(err error) (ErrorCode, bool) {
	if err == nil {
		return 0, false
	}
	if re, ok := err.(*WipeError); ok {
		return re.Code, true
	}
	var wipeErr *WipeError
	if errors.As(err, &wipeErr) {
		return wipeErr.Code, true
	}
	return 0, false
}

// GetErrorWithCode returns the first WipeError in err's chain with the
// given code, or nil.
func GetErrorWithCode(err error, code ErrorCode) *WipeError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*WipeError); ok && re.Code == code {
		return re
	}
	var wipeErr *WipeError
	if errors.As(err, &wipeErr) && wipeErr.Code == code {
		return wipeErr
	}
	return nil
}
