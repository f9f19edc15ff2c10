package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwhitford/stagehand/internal/executor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report availability of the configured coding-agent CLIs",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadOrCreateConfig(cmd, logger)
	if err != nil {
		return err
	}

	registry := executor.NewRegistry(cfg, logger)
	out := cmd.OutOrStdout()

	for _, name := range registry.Names() {
		exe, err := registry.Get(name)
		if err != nil {
			return err
		}

		status := "not found"
		if exe.Availability() == executor.AvailabilityFound {
			status = "installed"
		}
		fmt.Fprintf(out, "%-12s %s", name, status)
		if path := exe.DefaultConfigPath(); path != "" {
			fmt.Fprintf(out, " (config: %s)", path)
		}
		fmt.Fprintln(out)
	}
	return nil
}
