// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinkershack/veriwipe/cmd/cmdutil"
	"github.com/tinkershack/veriwipe/internal/orchestrator"
	"github.com/tinkershack/veriwipe/pkg/hiddenarea"
	"github.com/tinkershack/veriwipe/pkg/pattern"
)

func NewCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect and manage in-progress wipe checkpoints",
	}

	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newResumeCmd())
	cmd.AddCommand(newClearCmd())
	return cmd
}

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status [device]",
		Short: "Show checkpoint status for one device, or list all resident checkpoints",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fingerprints := o.CheckpointList()
				if len(fingerprints) == 0 {
					fmt.Fprintln(out, "no resident checkpoints")
					return nil
				}
				for _, fp := range fingerprints {
					fmt.Fprintln(out, fp)
				}
				return nil
			}

			rec, ok, err := o.CheckpointStatus(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "%s: no checkpoint\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "%s: pass %d, %d/%d bytes confirmed durable, last updated %s\n",
				args[0], rec.CurrentPass, rec.BytesConfirmedDurable, rec.TotalBytesPerPass, rec.LastUpdated.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	return cmd
}

func newResumeCmd() *cobra.Command {
	var configPath string
	var algorithm string
	var hardwareMethod string
	var hiddenAreaPolicy string
	var verificationLevel int
	var minConfidence int
	var operatorID string
	var operatorOrg string

	cmd := &cobra.Command{
		Use:   "resume <device>",
		Short: "Resume a wipe from its checkpoint, re-deriving the plan from the same options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			opts := orchestrator.WipeOptions{
				DevicePath:        args[0],
				Algorithm:         pattern.Algorithm(algorithm),
				HardwareMethod:    pattern.HardwareMethod(hardwareMethod),
				HiddenAreaPolicy:  hiddenarea.Policy(hiddenAreaPolicy),
				VerificationLevel: pattern.VerificationLevel(verificationLevel),
				MinConfidence:     minConfidence,
				OperatorID:        operatorID,
				OperatorOrg:       operatorOrg,
			}

			result, err := o.CheckpointResume(ctx, opts)
			if result != nil {
				out := cmd.OutOrStdout()
				if result.Interrupted {
					fmt.Fprintf(out, "%s: wipe interrupted again, checkpoint saved\n", args[0])
				} else if err == nil {
					fmt.Fprintf(out, "%s: wipe complete, verification confidence %d%%\n", args[0], result.Report.Confidence)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&algorithm, "algorithm", string(pattern.AlgorithmDoD3Pass), "Wipe algorithm, must match the plan the checkpoint was created under")
	cmd.Flags().StringVar(&hardwareMethod, "hardware-method", "", "Hardware-delegated method, only when --algorithm=HARDWARE_DELEGATED")
	cmd.Flags().StringVar(&hiddenAreaPolicy, "hidden-area-policy", string(hiddenarea.PolicyDetect), "Hidden-area handling: IGNORE, DETECT, REMOVE_TEMP, REMOVE_PERM")
	cmd.Flags().IntVar(&verificationLevel, "verification-level", int(pattern.VerifyL2Systematic), "Verification depth: 1 (quick) .. 4 (forensic)")
	cmd.Flags().IntVar(&minConfidence, "min-confidence", 90, "Minimum verification confidence required, 0-100")
	cmd.Flags().StringVar(&operatorID, "operator-id", "", "Operator identity recorded on the certificate")
	cmd.Flags().StringVar(&operatorOrg, "operator-org", "", "Operator organization recorded on the certificate")
	return cmd
}

func newClearCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear <device>",
		Short: "Discard a device's checkpoint, forcing the next wipe to start fresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			if err := o.CheckpointClear(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: checkpoint cleared\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	return cmd
}
