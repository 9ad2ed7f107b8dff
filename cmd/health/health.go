/*
 * Copyright 2024 Raamsri Kumar <raam@tinkershack.in> and The StrataSTOR Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package health

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinkershack/veriwipe/cmd/cmdutil"
)

func NewHealthCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the system can safely perform a wipe right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			report := o.Health(ctx)
			out := cmd.OutOrStdout()

			for name, status := range report.Tools {
				state := "available"
				if !status.Available {
					state = "unavailable: " + status.Error
				}
				fmt.Fprintf(out, "tool %-10s %s\n", name, state)
			}
			fmt.Fprintf(out, "drbg healthy: %v\n", report.DRBGHealthy)
			fmt.Fprintf(out, "resident checkpoints: %d\n", report.CheckpointRecords)

			if report.Degraded {
				fmt.Fprintln(out, "status: degraded")
				return fmt.Errorf("system is degraded, see above")
			}
			fmt.Fprintln(out, "status: ok")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	return cmd
}
