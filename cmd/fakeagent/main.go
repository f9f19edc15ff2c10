// fakeagent is a scripted stand-in for a coding-agent CLI, used by the
// integration tests. Real agent CLIs receive harness-chosen flags such as
// --no-interactive or --trust-all-tools, so argument parsing is permissive:
// unknown flags are ignored rather than rejected.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mwhitford/stagehand/internal/fakeagent"
)

func main() {
	scriptPath := strings.TrimSpace(os.Getenv("FAKEAGENT_SCRIPT"))
	logLevel := "info"
	resumed := false

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--resume":
			resumed = true
		case arg == "--script" && i+1 < len(args):
			scriptPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--script="):
			scriptPath = strings.TrimPrefix(arg, "--script=")
		case arg == "--log-level" && i+1 < len(args):
			logLevel = args[i+1]
			i++
		case strings.HasPrefix(arg, "--log-level="):
			logLevel = strings.TrimPrefix(arg, "--log-level=")
		}
	}

	if scriptPath == "" {
		fmt.Fprintln(os.Stderr, "script path must be provided via --script or FAKEAGENT_SCRIPT environment variable")
		os.Exit(2)
	}

	script, err := fakeagent.Load(scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load script: %v\n", err)
		os.Exit(1)
	}

	level, _, err := fakeagent.ParseLogLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	agent, err := fakeagent.New(script, logger)
	if err != nil {
		logger.Error("failed to create fake agent", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := agent.Run(ctx, os.Stdin, os.Stdout, os.Stderr, resumed); err != nil {
		var exitErr *fakeagent.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		logger.Error("fake agent failed", "error", err)
		os.Exit(1)
	}
}
