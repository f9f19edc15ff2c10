package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwhitford/stagehand/internal/entrylog"
	"github.com/mwhitford/stagehand/internal/transcript"
)

var logsCmd = &cobra.Command{
	Use:   "logs [execution-process-id]",
	Short: "Show the recorded log of a past run",
	Long: `Print the normalized entries recorded for an execution process. Without
an argument, list the processes that have logs in the working directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workdir, err := workdirFlag(cmd)
		if err != nil {
			return err
		}
		logDir := filepath.Join(workdir, ".stagehand", "logs")

		if len(args) == 0 {
			return listLogs(cmd, logDir)
		}
		return showLog(cmd, filepath.Join(logDir, args[0]+".ndjson"))
	},
}

func init() {
	logsCmd.Flags().StringP("dir", "d", "", "Task working directory (default: current directory)")
}

func listLogs(cmd *cobra.Command, logDir string) error {
	names, err := filepath.Glob(filepath.Join(logDir, "*.ndjson"))
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recorded logs")
		return nil
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(filepath.Base(name), ".ndjson"))
	}
	return nil
}

func showLog(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("no log recorded at %s", path)
	}

	entries, err := entrylog.Read(path)
	if err != nil {
		return err
	}

	formatter := transcript.NewFormatter()
	out := cmd.OutOrStdout()
	for _, entry := range entries {
		fmt.Fprintln(out, formatter.FormatEntry(entry))
	}
	fmt.Fprintln(out, formatter.Summary(entries))
	return nil
}
