package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "chromez",
	Short: "Record and check Chrome trace files",
	Long: `chromez runs an instrumented workload into a Chrome Trace Event Format file
and checks that trace files are well formed.`,
	SilenceUsage: true,
}

// main registers the subcommands and persistent flags, then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(checkCmd)

	rootCmd.PersistentFlags().Bool("verbose", false, "log tracer lifecycle to stderr")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the logger selected by --verbose.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}
