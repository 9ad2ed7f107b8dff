// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package wipe

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tinkershack/veriwipe/cmd/cmdutil"
	"github.com/tinkershack/veriwipe/internal/orchestrator"
	"github.com/tinkershack/veriwipe/pkg/hiddenarea"
	"github.com/tinkershack/veriwipe/pkg/pattern"
)

type flags struct {
	configPath        string
	algorithm         string
	hardwareMethod    string
	hiddenAreaPolicy  string
	verificationLevel int
	minConfidence     int
	operatorID        string
	operatorOrg       string
}

func (f *flags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVar(&f.algorithm, "algorithm", string(pattern.AlgorithmDoD3Pass), "Wipe algorithm: ZERO, RANDOM, DOD_5220_22_M, GUTMANN_35, HARDWARE_DELEGATED")
	cmd.Flags().StringVar(&f.hardwareMethod, "hardware-method", "", "Hardware-delegated method, required when --algorithm=HARDWARE_DELEGATED: SECURE_ERASE, ENHANCED_SECURE_ERASE, NVME_FORMAT, NVME_SANITIZE, CRYPTO_ERASE_SED, TRIM_ALL_LBAS")
	cmd.Flags().StringVar(&f.hiddenAreaPolicy, "hidden-area-policy", string(hiddenarea.PolicyDetect), "Hidden-area handling: IGNORE, DETECT, REMOVE_TEMP, REMOVE_PERM")
	cmd.Flags().IntVar(&f.verificationLevel, "verification-level", int(pattern.VerifyL2Systematic), "Verification depth: 1 (quick) .. 4 (forensic)")
	cmd.Flags().IntVar(&f.minConfidence, "min-confidence", 90, "Minimum verification confidence required, 0-100")
	cmd.Flags().StringVar(&f.operatorID, "operator-id", "", "Operator identity recorded on the certificate")
	cmd.Flags().StringVar(&f.operatorOrg, "operator-org", "", "Operator organization recorded on the certificate")
}

func (f *flags) toOptions(devicePath string) orchestrator.WipeOptions {
	return orchestrator.WipeOptions{
		DevicePath:        devicePath,
		Algorithm:         pattern.Algorithm(f.algorithm),
		HardwareMethod:    pattern.HardwareMethod(f.hardwareMethod),
		HiddenAreaPolicy:  hiddenarea.Policy(f.hiddenAreaPolicy),
		VerificationLevel: pattern.VerificationLevel(f.verificationLevel),
		MinConfidence:     f.minConfidence,
		OperatorID:        f.operatorID,
		OperatorOrg:       f.operatorOrg,
	}
}

// NewWipeCmd sanitizes a single device, resuming from any existing
// checkpoint whose plan hash matches the requested options.
func NewWipeCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "wipe <device>",
		Short: "Sanitize a single device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, f.configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			result, err := o.Wipe(ctx, f.toOptions(args[0]))
			if result != nil {
				printResult(cmd, args[0], result, err)
			}
			return err
		},
	}

	f.register(cmd)
	return cmd
}

// NewWipeAllCmd fans a shared set of options out across every device path
// given, one goroutine per drive; one drive's failure never aborts the
// others.
func NewWipeAllCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "wipe-all <device> [device...]",
		Short: "Sanitize multiple devices concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			o, err := cmdutil.NewOrchestrator(ctx, f.configPath)
			if err != nil {
				return err
			}
			defer o.Close()

			results := o.WipeAll(ctx, args, f.toOptions(""))

			var firstErr error
			for _, r := range results {
				if r.Result != nil {
					printResult(cmd, r.DevicePath, r.Result, r.Err)
				} else if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.DevicePath, r.Err)
				}
				if r.Err != nil && firstErr == nil {
					firstErr = r.Err
				}
			}
			return firstErr
		},
	}

	f.register(cmd)
	return cmd
}

func printResult(cmd *cobra.Command, devicePath string, result *orchestrator.WipeResult, err error) {
	out := cmd.OutOrStdout()
	if result.Interrupted {
		fmt.Fprintf(out, "%s: wipe interrupted, checkpoint saved\n", devicePath)
		return
	}
	if err != nil {
		fmt.Fprintf(out, "%s: wipe failed: %v\n", devicePath, err)
		return
	}
	fmt.Fprintf(out, "%s: wipe complete, verification confidence %d%%\n", devicePath, result.Report.Confidence)
	if result.Certificate != nil {
		fmt.Fprintf(out, "%s: certificate %s issued\n", devicePath, result.Certificate.CertificateUUID)
	}
}
