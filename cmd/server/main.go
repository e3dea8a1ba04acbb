package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "barfer-analytics",
		Short:         "Order analytics service over the Barfer MongoDB orders collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the barfer-analytics version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	envFile string
	version = "dev" // Gán qua -ldflags "-X main.version=..."
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", "path to env file (default config/env/$GO_ENV.env)")
	rootCmd.AddCommand(
		versionCmd,
		newServeCmd(),
		newBackfillCmd(),
		newEnsureIndexesCmd(),
		newReportCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "barfer-analytics: %v\n", err)
		os.Exit(1)
	}
}
