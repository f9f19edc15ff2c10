// Package cli implements the stagehand command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Harness for external coding-agent CLIs",
	Long: `stagehand launches, resumes, and supervises external coding-agent
command-line tools as managed subprocesses, normalizing their raw terminal
output into an ordered stream of structured log entries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(logsCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to stagehand.yaml (default: ./stagehand.yaml, generated if absent)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
