// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package sed

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinkershack/veriwipe/cmd/cmdutil"
)

// NewSEDCmd issues a TCG Opal PSID-revert: the vendor-reset path for a
// self-encrypting drive whose data encryption key is otherwise
// unrecoverable. It bypasses the wipe lifecycle entirely and never
// produces a certificate.
func NewSEDCmd() *cobra.Command {
	var configPath string
	var psid string

	cmd := &cobra.Command{
		Use:   "sed <device>",
		Short: "Revert a self-encrypting drive with its PSID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if psid == "" {
				return fmt.Errorf("--psid is required")
			}
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			if err := o.SEDRevert(ctx, args[0], psid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: PSID revert complete\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&psid, "psid", "", "Physical Security ID printed on the drive label")
	return cmd
}
