package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mwhitford/stagehand/internal/executor"
	"github.com/mwhitford/stagehand/internal/msgstore"
	"github.com/mwhitford/stagehand/internal/runner"
	"github.com/mwhitford/stagehand/internal/task"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Schedule (and optionally run) tool setup for a workspace",
	Long: `Compose the setup action for a profile: its idempotent install script,
chained ahead of any previously scheduled work so retries never discard or
reorder history. With --apply the resulting chain runs immediately.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringP("profile", "p", "", "Executor profile to set up (default: config default_profile)")
	setupCmd.Flags().StringP("dir", "d", "", "Task working directory (default: current directory)")
	setupCmd.Flags().Bool("apply", false, "Run the composed action chain after scheduling it")
}

func runSetup(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadOrCreateConfig(cmd, logger)
	if err != nil {
		return err
	}

	profileName, _ := cmd.Flags().GetString("profile")
	profile, err := cfg.Profile(profileName)
	if err != nil {
		return err
	}

	workdir, err := workdirFlag(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskStore := task.NewMemoryStore()
	workspaceID := uuid.New()

	process, err := task.ScheduleSetup(ctx, taskStore, workspaceID, profile, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scheduled setup for %s (execution process %s):\n", profile.Name, process.ID)
	for i, act := range process.Action.Chain() {
		fmt.Fprintf(out, "  %d. %s\n", i+1, act.Describe())
	}

	apply, _ := cmd.Flags().GetBool("apply")
	if !apply {
		return nil
	}

	registry := executor.NewRegistry(cfg, logger)
	stores := msgstore.NewRegistry(logger)
	r := runner.New(registry, stores, buildEnv(cfg), logger)
	if err := r.RunProcess(ctx, process, workdir); err != nil {
		return err
	}
	fmt.Fprintln(out, "Setup completed.")
	return nil
}
