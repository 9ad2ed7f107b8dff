package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tinkershack/veriwipe/cmd/checkpoint"
	"github.com/tinkershack/veriwipe/cmd/config"
	"github.com/tinkershack/veriwipe/cmd/health"
	"github.com/tinkershack/veriwipe/cmd/list"
	"github.com/tinkershack/veriwipe/cmd/sed"
	"github.com/tinkershack/veriwipe/cmd/verify"
	"github.com/tinkershack/veriwipe/cmd/version"
	"github.com/tinkershack/veriwipe/cmd/wipe"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "veriwipe",
		Short:         "veriwipe: verified drive sanitization",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(list.NewListCmd())
	rootCmd.AddCommand(wipe.NewWipeCmd())
	rootCmd.AddCommand(wipe.NewWipeAllCmd())
	rootCmd.AddCommand(verify.NewVerifyCmd())
	rootCmd.AddCommand(health.NewHealthCmd())
	rootCmd.AddCommand(sed.NewSEDCmd())
	rootCmd.AddCommand(checkpoint.NewCheckpointCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(config.NewConfigCmd())

	return rootCmd
}
