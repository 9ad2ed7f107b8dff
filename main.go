package main

import (
	"fmt"
	"os"

	"github.com/tinkershack/veriwipe/cmd"
	"github.com/tinkershack/veriwipe/cmd/cmdutil"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cmdutil.ExitCodeFor(err))
}
