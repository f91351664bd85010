// Command hostagent runs the dispatching host: it discovers the configured
// specialist agents and serves chat and protocol endpoints over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "hostagent",
		Short:         "Host agent that delegates requests to specialist agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newCardsCmd(&cfgPath))
	return root
}
