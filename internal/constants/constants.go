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

package constants

// CommitSHA and BuildTime are set at build time via -ldflags.
var (
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

const (
	Version = "v0.1.0"

	// config
	SystemConfigDir = "/etc/veriwipe"
	UserConfigDir   = "~/.veriwipe"
	ConfigFileName  = "veriwipe.yml"

	// checkpoint / state
	CheckpointFileName = "checkpoints.json"
)

// Exit codes: every CLI subcommand returns one of these.
const (
	ExitSuccess               = 0
	ExitUserError             = 2
	ExitHardwareError         = 3
	ExitVerificationFailed    = 4
	ExitInterruptedCheckpoint = 5
	ExitFatal                 = 6
)
