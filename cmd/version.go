package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information set at compile time via ldflags
var (
	Commit = "none"
	Date   = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display the version of backlog-import. With --verbose the commit hash and build date are shown too.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "backlog-import version %s\n", Version)
		if verbose {
			fmt.Fprintf(out, "  commit: %s\n", Commit)
			fmt.Fprintf(out, "  built:  %s\n", Date)
		}
	},
}

var verbose bool

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show commit and build date")
}
