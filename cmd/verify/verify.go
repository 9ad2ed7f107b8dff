// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinkershack/veriwipe/cmd/cmdutil"
	"github.com/tinkershack/veriwipe/pkg/pattern"
)

// NewVerifyCmd re-checks a device that was already sanitized, independent
// of any wipe, for the case where the original wipe's result was lost or
// where an operator wants a second opinion before accepting a drive as
// sanitized.
func NewVerifyCmd() *cobra.Command {
	var configPath string
	var level int
	var minConfidence int

	cmd := &cobra.Command{
		Use:   "verify <device>",
		Short: "Verify a device's sanitization state without performing a wipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			result, err := o.VerifyOnly(ctx, args[0], pattern.VerificationLevel(level), minConfidence)
			if result != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: confidence %d%%, verdict %v\n", args[0], result.Report.Confidence, result.Report.Verdict)
				if result.Report.FatalPatternFound {
					fmt.Fprintf(out, "%s: a known signature was detected in a sampled region\n", args[0])
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().IntVar(&level, "level", int(pattern.VerifyL2Systematic), "Verification depth: 1 (quick) .. 4 (forensic)")
	cmd.Flags().IntVar(&minConfidence, "min-confidence", 90, "Minimum verification confidence required, 0-100")
	return cmd
}
