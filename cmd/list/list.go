// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package list

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinkershack/veriwipe/cmd/cmdutil"
)

func NewListCmd() *cobra.Command {
	var configPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Enumerate block devices eligible for sanitization",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			drives, err := o.List(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(drives)
			}

			if len(drives) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no eligible devices found")
				return nil
			}
			for _, d := range drives {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-8s %-24s %-12s %-22s %12d bytes\n",
					d.DevicePath, d.Protocol, d.Model, d.MediaKind, d.Serial, d.SizeBytes())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}
