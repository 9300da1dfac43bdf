// Package cmd implements the external CLI surface (spec.md §6): parsing
// argv into a request.Request and handing it to the Namespace Launcher.
// Parsing itself never enters the core; only the resulting Request does.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"launcher/internal/diag"
	"launcher/internal/launcher"
	"launcher/internal/request"
)

const usageLine = "usage: launcher [-h] [-v] [-r <rootdir>] <cmd> [<arg>...]"

var (
	verbose bool
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:                   "launcher [-h] [-v] [-r <rootdir>] <cmd> [<arg>...]",
	Short:                 "launcher runs a command inside a freshly namespaced, pivoted root",
	Args:                  cobra.ArbitraryArgs,
	SilenceUsage:          true,
	SilenceErrors:         true,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return usageError("No command provided")
		}

		req := request.New(args, rootDir, "", verbose, true)
		sink := diag.New(req.Verbose)
		os.Exit(launcher.Run(req, sink))
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostics")
	rootCmd.Flags().StringVarP(&rootDir, "root", "r", "", "path to the new root tree (default \"rootfs\")")
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stderr, usageLine)
		fmt.Fprintln(os.Stderr, cmd.Flags().FlagUsages())
		os.Exit(1)
	})

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(os.Stderr, "launcher: %s\n", err)
		fmt.Fprintln(os.Stderr, "see `-h`")
		os.Exit(1)
		return nil
	})
}

func usageError(reason string) error {
	fmt.Fprintf(os.Stderr, "launcher: %s\n", reason)
	fmt.Fprintln(os.Stderr, usageLine)
	os.Exit(1)
	return nil
}

// Execute runs the root command. It is the sole entry point cmd exposes
// to main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "launcher: %s\n", err)
		fmt.Fprintln(os.Stderr, "see `-h`")
		os.Exit(1)
	}
}
